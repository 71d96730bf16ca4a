package dial

import (
	"context"

	ma "github.com/multiformats/go-multiaddr"
)

// IsDialableOptions configures IsDialable.
type IsDialableOptions struct {
	RunOnLimitedConnection bool
}

// IsDialable is a side-effect-free probe: it runs the Address Calculator
// with no PeerId and reports whether the result would be usable, without
// ever touching the network. On any error it returns false.
func IsDialable(ctx context.Context, c *Components, addrs []ma.Multiaddr, opts IsDialableOptions) bool {
	set := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		set[a.String()] = struct{}{}
	}

	resolved, err := CalculateMultiaddrs(ctx, c, "", set)
	if err != nil {
		log.Debugf("isDialable: %s", err)
		return false
	}
	if opts.RunOnLimitedConnection {
		return true
	}
	for _, a := range resolved {
		if !isRelay(a.Multiaddr) {
			return true
		}
	}
	return false
}
