package dialqueue

import (
	"time"

	"github.com/libp2p/go-libp2p-core/peer"

	"github.com/libp2p/go-libp2p-dial-queue/dial"
)

const (
	DefaultMaxParallelDials   = 100
	DefaultMaxDialQueueLength = 500
	DefaultMaxPeerAddrsToDial = 25
)

// DefaultDialTimeout is the per-dial timeout applied when WithDialTimeout
// is not used.
var DefaultDialTimeout = 30 * time.Second

type config struct {
	localPeerID peer.ID

	addressSorter      func([]dial.Address) []dial.Address
	maxParallelDials   int
	maxDialQueueLength int
	maxPeerAddrsToDial int
	dialTimeout        time.Duration
	resolvers          dial.ResolverRegistry
	connections        Connections
	gater              dial.ConnectionGater
	peerStore          dial.PeerStore
	peerRouting        dial.PeerRouting
	transportManager   dial.TransportManager
	metrics            dial.MetricsTracer
	backoff            *dial.Backoff
}

func defaultConfig() *config {
	return &config{
		maxParallelDials:   DefaultMaxParallelDials,
		maxDialQueueLength: DefaultMaxDialQueueLength,
		maxPeerAddrsToDial: DefaultMaxPeerAddrsToDial,
		dialTimeout:        DefaultDialTimeout,
		resolvers:          dial.ResolverRegistry{},
		metrics:            dial.NoopMetricsTracer{},
	}
}

func (c *config) apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Option configures a DialQueue at construction time.
type Option func(*config) error

// WithLocalPeerID tells the queue its own identity, so it can reject
// self-dials.
func WithLocalPeerID(p peer.ID) Option {
	return func(c *config) error { c.localPeerID = p; return nil }
}

// WithTransportManager supplies the collaborator that resolves multiaddrs
// to transports and performs the actual dial.
func WithTransportManager(tm dial.TransportManager) Option {
	return func(c *config) error { c.transportManager = tm; return nil }
}

// WithPeerStore supplies the peer store used for address discovery and
// dial feedback.
func WithPeerStore(ps dial.PeerStore) Option {
	return func(c *config) error { c.peerStore = ps; return nil }
}

// WithPeerRouting supplies the peer-routing backend consulted when the
// peer store has no addresses for a peer.
func WithPeerRouting(pr dial.PeerRouting) Option {
	return func(c *config) error { c.peerRouting = pr; return nil }
}

// WithConnectionGater installs a policy object that can veto dial attempts
// by peer or by address.
func WithConnectionGater(g dial.ConnectionGater) Option {
	return func(c *config) error { c.gater = g; return nil }
}

// WithConnections supplies the externally owned PeerId->Connection map
// used for the existing-connection short-circuit.
func WithConnections(conns Connections) Option {
	return func(c *config) error { c.connections = conns; return nil }
}

// WithAddressSorter overrides the default address sorter.
func WithAddressSorter(fn func([]dial.Address) []dial.Address) Option {
	return func(c *config) error { c.addressSorter = fn; return nil }
}

// WithMaxParallelDials bounds how many jobs run concurrently (default 100).
func WithMaxParallelDials(n int) Option {
	return func(c *config) error { c.maxParallelDials = n; return nil }
}

// WithMaxDialQueueLength bounds the pending queue length (default 500).
func WithMaxDialQueueLength(n int) Option {
	return func(c *config) error { c.maxDialQueueLength = n; return nil }
}

// WithMaxPeerAddrsToDial bounds how many addresses are attempted per job
// (default 25).
func WithMaxPeerAddrsToDial(n int) Option {
	return func(c *config) error { c.maxPeerAddrsToDial = n; return nil }
}

// WithDialTimeout sets the fresh per-dial timeout (default 30s).
func WithDialTimeout(d time.Duration) Option {
	return func(c *config) error { c.dialTimeout = d; return nil }
}

// WithResolvers installs the protocol-name -> Resolver registry used
// during address resolution.
func WithResolvers(r dial.ResolverRegistry) Option {
	return func(c *config) error { c.resolvers = r; return nil }
}

// WithMetricsTracer installs a MetricsTracer; passing nil is a no-op.
func WithMetricsTracer(m dial.MetricsTracer) Option {
	return func(c *config) error {
		if m != nil {
			c.metrics = m
		}
		return nil
	}
}

// WithBackoff enables the additive dial-backoff admission layer: the
// queue consults b before enqueuing a job for a peer that recently
// exhausted all of its addresses.
func WithBackoff(b *dial.Backoff) Option {
	return func(c *config) error { c.backoff = b; return nil }
}
