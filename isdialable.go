package dialqueue

import (
	"context"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/libp2p/go-libp2p-dial-queue/dial"
)

// IsDialableOption configures IsDialable.
type IsDialableOption func(*dial.IsDialableOptions)

// WithRunOnLimitedConnection allows IsDialable to consider relay/circuit
// addresses dialable. Defaults to true.
func WithRunOnLimitedConnection(v bool) IsDialableOption {
	return func(o *dial.IsDialableOptions) { o.RunOnLimitedConnection = v }
}

// IsDialable reports whether addrs would resolve to at least one usable
// address under this queue's configuration, without dialing anything.
func (dq *DialQueue) IsDialable(ctx context.Context, addrs []ma.Multiaddr, opts ...IsDialableOption) bool {
	o := dial.IsDialableOptions{RunOnLimitedConnection: true}
	for _, opt := range opts {
		opt(&o)
	}
	return dial.IsDialable(ctx, dq.comps, addrs, o)
}
