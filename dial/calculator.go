package dial

import (
	"context"
	"errors"
	"sort"

	"github.com/libp2p/go-libp2p-core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// Components bundles the external collaborators the Address Calculator and
// Attempt Loop consult.
type Components struct {
	LocalPeerID      peer.ID
	TransportManager TransportManager
	PeerStore        PeerStore
	PeerRouting      PeerRouting
	Gater            ConnectionGater
	Resolvers        ResolverRegistry
	AddressSorter    func([]Address) []Address
	Metrics          MetricsTracer
}

func (c *Components) sorter() func([]Address) []Address {
	if c.AddressSorter != nil {
		return c.AddressSorter
	}
	return DefaultAddressSorter
}

func (c *Components) metrics() MetricsTracer {
	if c.Metrics != nil {
		return c.Metrics
	}
	return NoopMetricsTracer{}
}

// CalculateMultiaddrs runs the address-calculation pipeline and returns the
// final, sorted dial list for p (which may be empty) given the seed
// address strings supplied by the caller.
//
// Each stage below monotonically reduces or expands the candidate set; all
// are deterministic given their inputs.
func CalculateMultiaddrs(ctx context.Context, c *Components, p peer.ID, addrStrings map[string]struct{}) ([]Address, error) {
	// 1. seed, in sorted string order so the result does not depend on map
	// iteration order.
	seeds := make([]string, 0, len(addrStrings))
	for s := range addrStrings {
		seeds = append(seeds, s)
	}
	sort.Strings(seeds)
	addrs := make([]Address, 0, len(seeds))
	for _, s := range seeds {
		m, err := ma.NewMultiaddr(s)
		if err != nil {
			continue
		}
		addrs = append(addrs, Address{Multiaddr: m})
	}

	// 2. identity check
	if p != "" && c.LocalPeerID != "" && p == c.LocalPeerID {
		return nil, &DialError{Peer: p, Reason: "tried to dial self"}
	}

	// 3. peer gate
	if p != "" && c.Gater != nil && c.Gater.DenyDialPeer(p) {
		return nil, &DialDeniedError{Reason: "the connection gater denied dialing this peer"}
	}

	// 4. address discovery
	if p != "" && len(addrs) == 0 {
		if c.PeerStore != nil {
			rec, err := c.PeerStore.Get(p)
			switch {
			case err == nil:
				addrs = append(addrs, rec.Addresses...)
			case errors.Is(err, ErrNotFound):
				// no stored record for this peer: fall through to routing.
			default:
				return nil, err
			}
		}
		if len(addrs) == 0 && c.PeerRouting != nil {
			info, err := c.PeerRouting.FindPeer(ctx, p)
			switch {
			case err == nil:
				for _, m := range info.Multiaddrs {
					addrs = append(addrs, Address{Multiaddr: m})
				}
			case errors.Is(err, ErrNoPeerRouters):
				// no routers configured: treated as "no addresses found".
			default:
				return nil, err
			}
		}
	}

	// 5. resolution
	resolved := make([]Address, 0, len(addrs))
	for _, a := range addrs {
		rs, err := ResolveAddress(ctx, a.Multiaddr, c.Resolvers)
		if err != nil {
			return nil, err
		}
		if len(rs) == 1 && rs[0].Equal(a.Multiaddr) {
			resolved = append(resolved, a)
			continue
		}
		for _, r := range rs {
			resolved = append(resolved, Address{Multiaddr: r})
		}
	}
	addrs = resolved

	// 6. PeerId encapsulation
	if p != "" {
		for i, a := range addrs {
			if hasP2PComponent(a.Multiaddr) || isPathAddress(a.Multiaddr) {
				continue
			}
			enc, err := ma.NewMultiaddr(a.Multiaddr.String() + "/p2p/" + p.String())
			if err != nil {
				continue
			}
			addrs[i].Multiaddr = enc
		}
	}

	// 7. transport filter
	addrs = filterAddrs(addrs, func(a Address) bool {
		return c.TransportManager == nil || c.TransportManager.DialTransportForMultiaddr(a.Multiaddr) != nil
	})

	// 8. PeerId consistency filter
	if p != "" {
		addrs = filterAddrs(addrs, func(a Address) bool {
			embedded, err := embeddedPeerID(a.Multiaddr)
			if err != nil || embedded == "" {
				return true
			}
			return embedded == p
		})
	}

	// 9. deduplicate
	addrs = DedupAddresses(addrs)

	// 10. empty check
	if len(addrs) == 0 {
		return nil, NoValidAddressesError
	}

	// 11. multiaddr gate
	if c.Gater != nil {
		addrs = filterAddrs(addrs, func(a Address) bool {
			return !c.Gater.DenyDialMultiaddr(a.Multiaddr)
		})
	}

	// 12. empty check
	if len(addrs) == 0 {
		return nil, &DialDeniedError{Reason: "the connection gater denied all addresses in the dial request"}
	}

	// 13. sort
	sorted := c.sorter()(addrs)
	c.metrics().AddressesCalculated(len(sorted))
	return sorted, nil
}

func filterAddrs(addrs []Address, keep func(Address) bool) []Address {
	out := addrs[:0]
	for _, a := range addrs {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func hasP2PComponent(m ma.Multiaddr) bool {
	_, err := m.ValueForProtocol(ma.P_P2P)
	return err == nil
}

// isPathAddress reports whether m's terminal protocol is a path-type
// protocol (e.g. /unix), which can't be followed by a /p2p/ component.
func isPathAddress(m ma.Multiaddr) bool {
	protos := m.Protocols()
	if len(protos) == 0 {
		return false
	}
	return protos[len(protos)-1].Path
}

func embeddedPeerID(m ma.Multiaddr) (peer.ID, error) {
	v, err := m.ValueForProtocol(ma.P_P2P)
	if err != nil {
		return "", err
	}
	return peer.Decode(v)
}
