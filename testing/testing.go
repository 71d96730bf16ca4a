// Package testing provides fixtures for exercising a DialQueue without a
// real network: a fake TransportManager whose dials are scripted per
// address, a fake PeerStore, and a mock ConnectionGater, in the style of
// the teacher's own GenSwarm test fixtures.
package testing

import (
	"context"
	"sync"

	"github.com/libp2p/go-libp2p-core/peer"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/libp2p/go-libp2p-dial-queue/dial"
)

// FakeConn is a minimal dial.Connection for use in tests.
type FakeConn struct {
	Peer   peer.ID
	Addr   ma.Multiaddr
	Status dial.ConnStatus
}

func (c *FakeConn) RemotePeer() peer.ID { return c.Peer }
func (c *FakeConn) RemoteAddr() ma.Multiaddr { return c.Addr }
func (c *FakeConn) ConnStatus() dial.ConnStatus { return c.Status }

// DialFunc scripts the outcome of dialing a single address.
type DialFunc func(ctx context.Context, addr ma.Multiaddr, p peer.ID) (dial.Connection, error)

// FakeTransportManager is a dial.TransportManager whose behavior per
// address is supplied by the caller. Addresses with no registered DialFunc
// succeed immediately with a FakeConn.
type FakeTransportManager struct {
	mu    sync.Mutex
	dials map[string]DialFunc
	log   []ma.Multiaddr
}

func NewFakeTransportManager() *FakeTransportManager {
	return &FakeTransportManager{dials: make(map[string]DialFunc)}
}

// SetDial scripts the outcome of dialing addr.
func (f *FakeTransportManager) SetDial(addr ma.Multiaddr, fn DialFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dials[addr.String()] = fn
}

// Dialed returns every address this manager was asked to dial, in order.
func (f *FakeTransportManager) Dialed() []ma.Multiaddr {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ma.Multiaddr, len(f.log))
	copy(out, f.log)
	return out
}

func (f *FakeTransportManager) Dial(ctx context.Context, addr ma.Multiaddr, p peer.ID, onProgress dial.ProgressFunc) (dial.Connection, error) {
	f.mu.Lock()
	f.log = append(f.log, addr)
	fn := f.dials[addr.String()]
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, addr, p)
	}
	return &FakeConn{Peer: p, Addr: addr, Status: dial.StatusOpen}, nil
}

func (f *FakeTransportManager) DialTransportForMultiaddr(addr ma.Multiaddr) interface{} {
	return "fake-transport"
}

// FakePeerStore is an in-memory dial.PeerStore.
type FakePeerStore struct {
	mu       sync.Mutex
	records  map[peer.ID]dial.PeerRecord
	metadata map[peer.ID]map[string][]byte
}

func NewFakePeerStore() *FakePeerStore {
	return &FakePeerStore{
		records:  make(map[peer.ID]dial.PeerRecord),
		metadata: make(map[peer.ID]map[string][]byte),
	}
}

// SetAddrs seeds the addresses returned for p by Get.
func (s *FakePeerStore) SetAddrs(p peer.ID, addrs []ma.Multiaddr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	as := make([]dial.Address, len(addrs))
	for i, a := range addrs {
		as[i] = dial.Address{Multiaddr: a}
	}
	s.records[p] = dial.PeerRecord{Addresses: as}
}

func (s *FakePeerStore) Get(p peer.ID) (dial.PeerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[p]
	if !ok {
		return dial.PeerRecord{}, dial.ErrNotFound
	}
	return rec, nil
}

func (s *FakePeerStore) Merge(p peer.ID, update dial.MergeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[p]
	for _, m := range update.Multiaddrs {
		rec.Addresses = append(rec.Addresses, dial.Address{Multiaddr: m})
	}
	rec.Addresses = dial.DedupAddresses(rec.Addresses)
	s.records[p] = rec

	if len(update.Metadata) > 0 {
		md := s.metadata[p]
		if md == nil {
			md = make(map[string][]byte)
			s.metadata[p] = md
		}
		for k, v := range update.Metadata {
			md[k] = v
		}
	}
	return nil
}

// Metadata returns the last-written metadata value for p and key.
func (s *FakePeerStore) Metadata(p peer.ID, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.metadata[p][key]
	return v, ok
}

// MockConnectionGater is a scriptable dial.ConnectionGater, in the style
// of the teacher's MockConnectionGater for the full Swarm.
type MockConnectionGater struct {
	Peer      func(p peer.ID) bool
	Multiaddr func(addr ma.Multiaddr) bool
}

// DefaultMockConnectionGater allows everything.
func DefaultMockConnectionGater() *MockConnectionGater {
	return &MockConnectionGater{
		Peer:      func(peer.ID) bool { return true },
		Multiaddr: func(ma.Multiaddr) bool { return true },
	}
}

func (g *MockConnectionGater) DenyDialPeer(p peer.ID) bool {
	return !g.Peer(p)
}

func (g *MockConnectionGater) DenyDialMultiaddr(addr ma.Multiaddr) bool {
	return !g.Multiaddr(addr)
}

var _ dial.ConnectionGater = &MockConnectionGater{}
var _ dial.TransportManager = &FakeTransportManager{}
var _ dial.PeerStore = &FakePeerStore{}
var _ dial.Connection = &FakeConn{}
