package dialqueue

import (
	"github.com/libp2p/go-libp2p-core/peer"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/libp2p/go-libp2p-dial-queue/dial"
)

// Connections is the externally owned PeerId -> open connections map the
// Dial Queue reads for the existing-connection short-circuit. The dial
// queue never mutates it; the connection lifecycle is owned by the caller.
type Connections interface {
	All() map[peer.ID][]dial.Connection
}

// findOpenConnection implements the existing-connection short-circuit: a
// connection whose remote peer or remote address matches the target, and
// whose status is open.
func findOpenConnection(conns Connections, p peer.ID, addrs []ma.Multiaddr) dial.Connection {
	if conns == nil {
		return nil
	}
	all := conns.All()

	if p != "" {
		for _, c := range all[p] {
			if c.ConnStatus() == dial.StatusOpen {
				return c
			}
		}
	}
	for _, cs := range all {
		for _, c := range cs {
			if c.ConnStatus() != dial.StatusOpen {
				continue
			}
			for _, a := range addrs {
				if c.RemoteAddr().Equal(a) {
					return c
				}
			}
		}
	}
	return nil
}
