package dial

import (
	"strconv"
	"time"

	"github.com/libp2p/go-libp2p-core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// Persisted peer-store metadata keys. Values are UTF-8 decimal
// millisecond timestamps, so downstream consumers can read them without a
// schema.
const (
	LastDialSuccessKey = "last-dial-success"
	LastDialFailureKey = "last-dial-failure"
)

func nowMillis() []byte {
	return []byte(strconv.FormatInt(time.Now().UnixMilli(), 10))
}

// writeSuccessFeedback persists a successful dial outcome. Failures are
// logged and swallowed: they must never mask the real dial result.
func writeSuccessFeedback(c *Components, conn Connection) {
	if c.PeerStore == nil {
		return
	}
	err := c.PeerStore.Merge(conn.RemotePeer(), MergeUpdate{
		Multiaddrs: []ma.Multiaddr{conn.RemoteAddr()},
		Metadata:   map[string][]byte{LastDialSuccessKey: nowMillis()},
	})
	if err != nil {
		log.Debugf("peerstore merge on dial success failed for %s: %s", conn.RemotePeer(), err)
	}
}

// writeFailureFeedback persists a failed per-address dial attempt for a
// known peer.
func writeFailureFeedback(c *Components, p peer.ID) {
	if c.PeerStore == nil {
		return
	}
	err := c.PeerStore.Merge(p, MergeUpdate{
		Metadata: map[string][]byte{LastDialFailureKey: nowMillis()},
	})
	if err != nil {
		log.Debugf("peerstore merge on dial failure failed for %s: %s", p, err)
	}
}
