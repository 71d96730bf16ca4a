package dial

import (
	"context"

	"github.com/libp2p/go-libp2p-core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// ConnStatus describes the lifecycle state of a Connection.
type ConnStatus int

const (
	StatusOpen ConnStatus = iota
	StatusClosing
	StatusClosed
)

// Connection is the opaque handle returned by a transport dial once it has
// been upgraded (encrypted and muxed). The dial queue never looks inside it;
// it only reads the three fields below.
type Connection interface {
	RemotePeer() peer.ID
	RemoteAddr() ma.Multiaddr
	ConnStatus() ConnStatus
}

// ProgressKind tags the catalogue of progress notifications the dial queue
// emits along a dial's lifetime.
type ProgressKind int

const (
	KindAlreadyConnected ProgressKind = iota
	KindAlreadyInDialQueue
	KindAddToDialQueue
	KindStartDial
	KindCalculatedAddresses
)

// EmitProgress delivers evt to fn if fn is non-nil. Exported so callers
// outside this package (the root dialqueue package) can raise progress
// events for stages that happen before a DialJob exists, such as the
// existing-connection short-circuit.
func EmitProgress(fn ProgressFunc, evt ProgressEvent) {
	emitProgress(fn, evt)
}

func (k ProgressKind) String() string {
	switch k {
	case KindAlreadyConnected:
		return "dial-queue:already-connected"
	case KindAlreadyInDialQueue:
		return "dial-queue:already-in-dial-queue"
	case KindAddToDialQueue:
		return "dial-queue:add-to-dial-queue"
	case KindStartDial:
		return "dial-queue:start-dial"
	case KindCalculatedAddresses:
		return "dial-queue:calculated-addresses"
	default:
		return "dial-queue:unknown"
	}
}

// ProgressEvent is the tagged variant of a single progress notification.
// Addresses is only populated for KindCalculatedAddresses.
type ProgressEvent struct {
	Kind      ProgressKind
	Addresses []Address
}

// ProgressFunc receives best-effort progress notifications for a single
// dial. A nil ProgressFunc is always safe to call through emitProgress.
type ProgressFunc func(ProgressEvent)

func emitProgress(fn ProgressFunc, evt ProgressEvent) {
	if fn == nil {
		return
	}
	fn(evt)
}

// TransportManager resolves multiaddrs to transports and performs the
// actual network dial. It is the only component in this package that is
// expected to touch the network.
type TransportManager interface {
	// Dial dials addr, returning an upgraded Connection. The dial must
	// respect ctx cancellation. onProgress, if non-nil, is invoked with
	// KindStartDial before the attempt begins.
	Dial(ctx context.Context, addr ma.Multiaddr, p peer.ID, onProgress ProgressFunc) (Connection, error)

	// DialTransportForMultiaddr returns a non-nil value if a transport is
	// registered for addr, or nil otherwise.
	DialTransportForMultiaddr(addr ma.Multiaddr) interface{}
}

// PeerRecord is the subset of stored peer information the dial queue reads.
type PeerRecord struct {
	Addresses []Address
}

// ErrNotFound is returned by PeerStore.Get when no record exists for a peer.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "peer record not found" }

// MergeUpdate describes the fields the dial queue wants to merge into a
// peer's store record. Either field may be empty.
type MergeUpdate struct {
	Multiaddrs []ma.Multiaddr
	Metadata   map[string][]byte
}

// PeerStore is the capability set the core needs from the peer store:
// looking up known addresses, and merging dial feedback into a record.
type PeerStore interface {
	Get(p peer.ID) (PeerRecord, error)
	Merge(p peer.ID, update MergeUpdate) error
}

// PeerInfo is the result of a peer-routing lookup.
type PeerInfo struct {
	Multiaddrs []ma.Multiaddr
}

// ErrNoPeerRouters is returned by PeerRouting.FindPeer when no routers are
// configured; the dial queue treats it as "no additional addresses found",
// not as a hard failure.
var ErrNoPeerRouters = errNoPeerRouters{}

type errNoPeerRouters struct{}

func (errNoPeerRouters) Error() string { return "no peer routers configured" }

// PeerRouting discovers addresses for a peer via a backend such as a DHT.
type PeerRouting interface {
	FindPeer(ctx context.Context, p peer.ID) (PeerInfo, error)
}

// ConnectionGater vetoes dial attempts by peer or by address. A nil gater
// is always treated as fully permissive.
type ConnectionGater interface {
	DenyDialPeer(p peer.ID) bool
	DenyDialMultiaddr(addr ma.Multiaddr) bool
}

// Resolver performs protocol-specific address resolution, e.g. expanding a
// dnsaddr multiaddr into its constituent addresses.
type Resolver interface {
	Resolve(ctx context.Context, addr ma.Multiaddr) ([]ma.Multiaddr, error)
}

// ResolverRegistry maps a multiaddr protocol name (e.g. "dnsaddr") to the
// Resolver responsible for it. It is passed in explicitly at construction
// time; this package never consults global mutable state to find resolvers.
type ResolverRegistry map[string]Resolver

// MetricsTracer is an optional hook the Queue and Calculator report into.
// NewQueue and Components substitute NoopMetricsTracer (metrics.go) for a
// nil tracer.
type MetricsTracer interface {
	QueueLength(n int)
	JobStarted()
	JobCompleted(success bool)
	AddressesCalculated(n int)
}
