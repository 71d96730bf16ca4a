package dial

import (
	"context"
	"net"
	"time"

	ma "github.com/multiformats/go-multiaddr"
)

// DefaultDialTimeout is applied when a job is not configured with one.
var DefaultDialTimeout = 30 * time.Second

// LocalDialTimeout is the shorter timeout applied to addresses classified
// as local by IsLocalAddress.
var LocalDialTimeout = 5 * time.Second

// ComposeAbort builds the per-attempt member of the three-way abort
// signal. parent already carries the other two sources: it is a child of
// the dial queue's shutdown context, and it is fired early if every waiter
// on the job gives up (see DialJob.decref) -- which is how a caller's own
// cancellation reaches the attempt loop. ComposeAbort only has to add the
// fresh per-dial timeout, shortened for addresses classified as local.
//
// The returned cancel func must be called once the attempt completes, to
// release the timer deterministically rather than waiting for it to fire.
func ComposeAbort(parent context.Context, addr ma.Multiaddr, dialTimeout time.Duration) (context.Context, context.CancelFunc) {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	if addr != nil && IsLocalAddress(addr) && dialTimeout > LocalDialTimeout {
		dialTimeout = LocalDialTimeout
	}
	return context.WithTimeout(parent, dialTimeout)
}

// privateBlocks mirrors the RFC1918 / CGNAT / link-local ranges the
// teacher's timeout filter matched against, minus the bootstrapping filter
// library: the sorter/abort composer's notion of "local" is decided with
// net.IP directly rather than pulling in a second CIDR-mask package.
var privateBlocks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"10.0.0.0/8",
		"100.64.0.0/10",
		"169.254.0.0/16",
		"172.16.0.0/12",
		"192.0.0.0/24",
		"192.0.2.0/24",
		"192.168.0.0/16",
		"198.18.0.0/15",
		"198.51.100.0/24",
		"203.0.113.0/24",
		"240.0.0.0/4",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	} {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("error parsing private block cidr: " + err.Error())
		}
		privateBlocks = append(privateBlocks, block)
	}
}

// IsLocalAddress reports whether addr's IP component falls within a
// private, loopback, link-local or CGNAT range, or one of the reserved
// documentation, benchmarking or 240.0.0.0/4 ranges in privateBlocks.
func IsLocalAddress(addr ma.Multiaddr) bool {
	var ipStr string
	var err error
	if ipStr, err = addr.ValueForProtocol(ma.P_IP4); err != nil {
		if ipStr, err = addr.ValueForProtocol(ma.P_IP6); err != nil {
			return false
		}
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}
