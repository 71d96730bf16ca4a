package dial

import (
	"sort"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/whyrusleeping/mafmt"
)

// p_circuit is the multicodec for /p2p-circuit. go-libp2p-core doesn't
// export it as a constant usable by mafmt.Base, so it's inlined here, as
// the teacher's sorter does.
const p_circuit = 290

var relayPattern = mafmt.Or(mafmt.Base(p_circuit), mafmt.And(mafmt.IPFS, mafmt.Base(p_circuit)))

func isRelay(addr ma.Multiaddr) bool {
	return relayPattern.Matches(addr)
}

// transportTier ranks an address by the desirability of its outermost
// transport: secure websocket, then websocket, then plain TCP, then
// everything else.
func transportTier(addr ma.Multiaddr) int {
	names := make(map[string]bool)
	for _, p := range addr.Protocols() {
		names[p.Name] = true
	}
	switch {
	case names["wss"]:
		return 0
	case names["ws"]:
		return 1
	case names["tcp"]:
		return 2
	default:
		return 3
	}
}

// DefaultAddressSorter stably sorts addresses preferring: certified
// addresses first, public addresses before relay/circuit addresses, and
// wss over ws over tcp over other transports. Ties keep input order.
func DefaultAddressSorter(addrs []Address) []Address {
	out := make([]Address, len(addrs))
	copy(out, addrs)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsCertified != b.IsCertified {
			return a.IsCertified
		}
		ra, rb := isRelay(a.Multiaddr), isRelay(b.Multiaddr)
		if ra != rb {
			return !ra
		}
		return transportTier(a.Multiaddr) < transportTier(b.Multiaddr)
	})
	return out
}
