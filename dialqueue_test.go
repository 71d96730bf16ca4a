package dialqueue_test

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p-core/peer"
	testutil "github.com/libp2p/go-libp2p-core/test"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/require"

	dialqueue "github.com/libp2p/go-libp2p-dial-queue"
	"github.com/libp2p/go-libp2p-dial-queue/dial"
	dialtesting "github.com/libp2p/go-libp2p-dial-queue/testing"
)

func mustAddr(t *testing.T, s string) ma.Multiaddr {
	m, err := ma.NewMultiaddr(s)
	require.NoError(t, err)
	return m
}

func TestDialHappyPath(t *testing.T) {
	tm := dialtesting.NewFakeTransportManager()
	dq, err := dialqueue.New(dialqueue.WithTransportManager(tm))
	require.NoError(t, err)

	addr := mustAddr(t, "/ip4/1.2.3.4/tcp/4001")
	conn, err := dq.Dial(context.Background(), dialqueue.NewTargetFromMultiaddr(addr))
	require.NoError(t, err)
	require.NotNil(t, conn)
}

func TestDialQueueFullRejectsNewJobs(t *testing.T) {
	tm := dialtesting.NewFakeTransportManager()
	block := make(chan struct{})
	defer close(block)

	a1 := mustAddr(t, "/ip4/1.2.3.4/tcp/4001")
	tm.SetDial(a1, func(ctx context.Context, addr ma.Multiaddr, p peer.ID) (dial.Connection, error) {
		<-block
		return &dialtesting.FakeConn{Peer: p, Addr: addr, Status: dial.StatusOpen}, nil
	})

	dq, err := dialqueue.New(
		dialqueue.WithTransportManager(tm),
		dialqueue.WithMaxDialQueueLength(1),
		dialqueue.WithMaxParallelDials(1),
	)
	require.NoError(t, err)

	go dq.Dial(context.Background(), dialqueue.NewTargetFromMultiaddr(a1))
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, 1, dq.Size())

	_, err = dq.Dial(context.Background(), dialqueue.NewTargetFromMultiaddr(mustAddr(t, "/ip4/5.6.7.8/tcp/4001")))
	var dialErr *dialqueue.DialError
	require.ErrorAs(t, err, &dialErr)
}

func TestDialJoinsInFlightJobForSamePeer(t *testing.T) {
	tm := dialtesting.NewFakeTransportManager()
	p, err := testutil.RandPeerID()
	require.NoError(t, err)

	a1 := mustAddr(t, "/ip4/1.2.3.4/tcp/4001")
	release := make(chan struct{})
	tm.SetDial(a1, func(ctx context.Context, addr ma.Multiaddr, pid peer.ID) (dial.Connection, error) {
		<-release
		return &dialtesting.FakeConn{Peer: pid, Addr: addr, Status: dial.StatusOpen}, nil
	})

	dq, err := dialqueue.New(dialqueue.WithTransportManager(tm))
	require.NoError(t, err)

	results := make(chan error, 2)
	go func() {
		_, err := dq.Dial(context.Background(), dialqueue.NewTargetFromMultiaddrs([]ma.Multiaddr{a1}))
		results <- err
	}()
	time.Sleep(20 * time.Millisecond)
	go func() {
		_, err := dq.Dial(context.Background(), dialqueue.Target{PeerID: p, Multiaddrs: []ma.Multiaddr{a1}})
		results <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, len(tm.Dialed()))

	close(release)
	require.NoError(t, <-results)
	require.NoError(t, <-results)
}

func TestDialFirstAddressFailsSecondSucceeds(t *testing.T) {
	tm := dialtesting.NewFakeTransportManager()
	bad := mustAddr(t, "/ip4/1.2.3.4/tcp/4001")
	good := mustAddr(t, "/ip4/1.2.3.5/tcp/4001")

	tm.SetDial(bad, func(ctx context.Context, addr ma.Multiaddr, p peer.ID) (dial.Connection, error) {
		return nil, context.DeadlineExceeded
	})

	dq, err := dialqueue.New(dialqueue.WithTransportManager(tm))
	require.NoError(t, err)

	conn, err := dq.Dial(context.Background(), dialqueue.NewTargetFromMultiaddrs([]ma.Multiaddr{bad, good}))
	require.NoError(t, err)
	require.Equal(t, good, conn.RemoteAddr())
}

func TestDialDeniedByGaterForAllAddresses(t *testing.T) {
	tm := dialtesting.NewFakeTransportManager()
	gater := dialtesting.DefaultMockConnectionGater()
	gater.Multiaddr = func(ma.Multiaddr) bool { return false }

	dq, err := dialqueue.New(dialqueue.WithTransportManager(tm), dialqueue.WithConnectionGater(gater))
	require.NoError(t, err)

	_, err = dq.Dial(context.Background(), dialqueue.NewTargetFromMultiaddr(mustAddr(t, "/ip4/1.2.3.4/tcp/4001")))
	var denied *dialqueue.DialDeniedError
	require.ErrorAs(t, err, &denied)
}

func TestDialTimesOutPerAttempt(t *testing.T) {
	tm := dialtesting.NewFakeTransportManager()
	addr := mustAddr(t, "/ip4/1.2.3.4/tcp/4001")
	tm.SetDial(addr, func(ctx context.Context, addr ma.Multiaddr, p peer.ID) (dial.Connection, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	dq, err := dialqueue.New(
		dialqueue.WithTransportManager(tm),
		dialqueue.WithDialTimeout(20*time.Millisecond),
	)
	require.NoError(t, err)

	_, err = dq.Dial(context.Background(), dialqueue.NewTargetFromMultiaddr(addr))
	var timeout *dialqueue.TimeoutError
	require.ErrorAs(t, err, &timeout)
}
