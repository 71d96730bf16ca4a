package testing

import (
	"context"
	"testing"

	"github.com/libp2p/go-libp2p-core/peer"
	testutil "github.com/libp2p/go-libp2p-core/test"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/require"

	"github.com/libp2p/go-libp2p-dial-queue/dial"
)

func TestFakeTransportManagerDefaultSuccess(t *testing.T) {
	tm := NewFakeTransportManager()
	addr := ma.StringCast("/ip4/1.2.3.4/tcp/4001")
	p, err := testutil.RandPeerID()
	require.NoError(t, err)

	conn, err := tm.Dial(context.Background(), addr, p, nil)
	require.NoError(t, err)
	require.Equal(t, p, conn.RemotePeer())
	require.Equal(t, []ma.Multiaddr{addr}, tm.Dialed())
}

func TestFakeTransportManagerScriptedFailure(t *testing.T) {
	tm := NewFakeTransportManager()
	addr := ma.StringCast("/ip4/1.2.3.4/tcp/4001")
	boom := require.New(t)

	tm.SetDial(addr, func(ctx context.Context, addr ma.Multiaddr, p peer.ID) (dial.Connection, error) {
		return nil, context.DeadlineExceeded
	})

	_, err := tm.Dial(context.Background(), addr, "", nil)
	boom.ErrorIs(err, context.DeadlineExceeded)
}

func TestFakePeerStoreMergeDedup(t *testing.T) {
	ps := NewFakePeerStore()
	p, err := testutil.RandPeerID()
	require.NoError(t, err)

	addr := ma.StringCast("/ip4/1.2.3.4/tcp/4001")
	require.NoError(t, ps.Merge(p, dial.MergeUpdate{Multiaddrs: []ma.Multiaddr{addr, addr}}))

	rec, err := ps.Get(p)
	require.NoError(t, err)
	require.Len(t, rec.Addresses, 1)
}

func TestMockConnectionGaterDefaultAllows(t *testing.T) {
	g := DefaultMockConnectionGater()
	p, err := testutil.RandPeerID()
	require.NoError(t, err)

	require.False(t, g.DenyDialPeer(p))
	require.False(t, g.DenyDialMultiaddr(ma.StringCast("/ip4/1.2.3.4/tcp/4001")))
}
