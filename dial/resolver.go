package dial

import (
	"context"

	ma "github.com/multiformats/go-multiaddr"
)

// ResolveAddress performs protocol-specific resolution for a single
// multiaddr, e.g. expanding a dnsaddr into its constituent addresses. It
// consults registry for a resolver matching any protocol present in addr;
// if none matches, addr is returned unchanged.
func ResolveAddress(ctx context.Context, addr ma.Multiaddr, registry ResolverRegistry) ([]ma.Multiaddr, error) {
	for _, p := range addr.Protocols() {
		if r, ok := registry[p.Name]; ok {
			return r.Resolve(ctx, addr)
		}
	}
	return []ma.Multiaddr{addr}, nil
}
