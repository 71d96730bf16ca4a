package dial

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/libp2p/go-libp2p-core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// InvalidParametersError is returned when a dial target's multiaddrs carry
// conflicting PeerIds.
type InvalidParametersError struct {
	Reason string
}

func (e *InvalidParametersError) Error() string { return "invalid dial parameters: " + e.Reason }

// DialError is a dial-queue-level failure not tied to a specific address:
// self-dial, queue full, or the per-peer address cap being hit.
type DialError struct {
	Peer   peer.ID
	Reason string
	Cause  error
}

func (e *DialError) Error() string {
	if e.Peer == "" {
		return "dial error: " + e.Reason
	}
	return fmt.Sprintf("dial error for peer %s: %s", e.Peer, e.Reason)
}

func (e *DialError) Unwrap() error { return e.Cause }

// TransportError is the error recorded for a single failed address
// attempt.
type TransportError struct {
	Address ma.Multiaddr
	Cause   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to dial %s: %s", e.Address, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// DialDeniedError is returned when a ConnectionGater rejects a peer or all
// of its candidate addresses.
type DialDeniedError struct {
	Reason string
}

func (e *DialDeniedError) Error() string { return "dial denied: " + e.Reason }

// NoValidAddressesError is returned when address calculation ends up with
// zero candidate addresses after resolution and filtering.
var NoValidAddressesError = errors.New("no valid addresses to dial")

// TimeoutError is returned when the composite abort signal fires during an
// in-flight attempt, whether from a fresh per-dial timeout, queue
// shutdown, or the caller's own cancellation.
type TimeoutError struct {
	Cause error
}

func (e *TimeoutError) Error() string {
	if e.Cause == nil {
		return "dial timed out"
	}
	return "dial timed out: " + e.Cause.Error()
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// AbortError marks pending jobs cancelled by Queue.Abort during shutdown.
var AbortError = errors.New("dial aborted")

// NewAggregateError combines two or more per-address failures into a
// single error, as produced when every attempted address failed.
func NewAggregateError(errs []error, msg string) error {
	merr := &multierror.Error{Errors: errs}
	merr.ErrorFormat = func(es []error) string {
		lines := make([]string, len(es))
		for i, e := range es {
			lines[i] = fmt.Sprintf("* %s", e)
		}
		body := ""
		for i, l := range lines {
			if i > 0 {
				body += "\n\t"
			}
			body += l
		}
		return fmt.Sprintf("%s: %d errors occurred:\n\t%s\n", msg, len(es), body)
	}
	return merr
}
