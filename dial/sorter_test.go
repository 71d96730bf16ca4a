package dial_test

import (
	"testing"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/require"

	"github.com/libp2p/go-libp2p-dial-queue/dial"
)

func addr(t *testing.T, s string) ma.Multiaddr {
	m, err := ma.NewMultiaddr(s)
	require.NoError(t, err)
	return m
}

func TestDefaultAddressSorterPrefersCertified(t *testing.T) {
	a := dial.Address{Multiaddr: addr(t, "/ip4/1.2.3.4/tcp/4001")}
	b := dial.Address{Multiaddr: addr(t, "/ip4/1.2.3.5/tcp/4001"), IsCertified: true}

	out := dial.DefaultAddressSorter([]dial.Address{a, b})
	require.True(t, out[0].IsCertified)
}

func TestDefaultAddressSorterPrefersPublicOverRelay(t *testing.T) {
	direct := dial.Address{Multiaddr: addr(t, "/ip4/127.0.0.1/tcp/4001")}
	relay := dial.Address{Multiaddr: addr(t, "/p2p-circuit/ipfs/QmSoLSafTMBsPKadTEgaXctDQVcqN88CNLHXMkTNwMKPnu")}

	out := dial.DefaultAddressSorter([]dial.Address{relay, direct})
	require.Equal(t, direct.Multiaddr, out[0].Multiaddr)
}

func TestDefaultAddressSorterPrefersWSSOverTCP(t *testing.T) {
	tcp := dial.Address{Multiaddr: addr(t, "/ip4/1.2.3.4/tcp/4001")}
	wss := dial.Address{Multiaddr: addr(t, "/dns4/example.com/tcp/443/wss")}

	out := dial.DefaultAddressSorter([]dial.Address{tcp, wss})
	require.Equal(t, wss.Multiaddr, out[0].Multiaddr)
}

func TestDefaultAddressSorterIsStable(t *testing.T) {
	a := dial.Address{Multiaddr: addr(t, "/ip4/1.2.3.4/tcp/4001")}
	b := dial.Address{Multiaddr: addr(t, "/ip4/1.2.3.5/tcp/4001")}

	out := dial.DefaultAddressSorter([]dial.Address{a, b})
	require.Equal(t, a.Multiaddr, out[0].Multiaddr)
	require.Equal(t, b.Multiaddr, out[1].Multiaddr)
}
