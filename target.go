package dialqueue

import (
	"github.com/libp2p/go-libp2p-core/peer"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/libp2p/go-libp2p-dial-queue/dial"
)

// Target describes what to dial: a PeerId, a single Multiaddr, or a
// non-empty list of Multiaddrs. If multiple Multiaddrs carry a PeerId,
// they must all carry the same one.
type Target struct {
	PeerID     peer.ID
	Multiaddrs []ma.Multiaddr
}

// NewTargetFromPeer builds a Target that dials p using only its known or
// discoverable addresses.
func NewTargetFromPeer(p peer.ID) Target {
	return Target{PeerID: p}
}

// NewTargetFromMultiaddr builds a Target for a single address.
func NewTargetFromMultiaddr(m ma.Multiaddr) Target {
	return Target{Multiaddrs: []ma.Multiaddr{m}}
}

// NewTargetFromMultiaddrs builds a Target for a non-empty address list.
func NewTargetFromMultiaddrs(addrs []ma.Multiaddr) Target {
	return Target{Multiaddrs: addrs}
}

// resolve validates the target and returns its effective PeerId (possibly
// empty) and address-string set.
func (t Target) resolve() (peer.ID, map[string]struct{}, error) {
	if t.PeerID == "" && len(t.Multiaddrs) == 0 {
		return "", nil, &dial.InvalidParametersError{Reason: "target must carry a PeerId or at least one multiaddr"}
	}

	id := t.PeerID
	addrs := make(map[string]struct{}, len(t.Multiaddrs))
	for _, m := range t.Multiaddrs {
		addrs[m.String()] = struct{}{}

		v, err := m.ValueForProtocol(ma.P_P2P)
		if err != nil {
			continue
		}
		pid, err := peer.Decode(v)
		if err != nil {
			continue
		}
		switch {
		case id == "":
			id = pid
		case id != pid:
			return "", nil, &dial.InvalidParametersError{Reason: "multiaddrs carry conflicting PeerIds"}
		}
	}
	return id, addrs, nil
}
