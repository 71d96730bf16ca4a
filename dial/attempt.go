package dial

import (
	"time"
)

// NewAttemptTask builds the TaskFunc the Queue dispatches for each
// DialJob: it runs the Address Calculator, then the Attempt Loop, under a
// signal composed from the job's own context (already cancelled by
// shutdown or by every waiter giving up) and a fresh per-dial timeout.
func NewAttemptTask(c *Components, maxPeerAddrsToDial int, dialTimeout time.Duration) TaskFunc {
	return func(job *DialJob) {
		addrSet := job.Addrs()
		addrs, err := CalculateMultiaddrs(job.Context(), c, job.PeerID(), addrSet)
		if err != nil {
			job.complete(nil, err)
			return
		}
		job.emitProgress(ProgressEvent{Kind: KindCalculatedAddresses, Addresses: addrs})

		conn, err := runAttemptLoop(job, c, addrs, maxPeerAddrsToDial, dialTimeout)
		job.complete(conn, err)
	}
}

// runAttemptLoop walks addrs serially, returning on the first dial that
// succeeds. Subsequent addresses are never tried once one has succeeded:
// first-success-wins means "first address in sorted order whose dial
// completes without error", preserving the calculator's ordering
// preference and keeping cancellation simple.
func runAttemptLoop(job *DialJob, c *Components, addrs []Address, maxPeerAddrsToDial int, dialTimeout time.Duration) (Connection, error) {
	p := job.PeerID()

	var dialed int
	var errs []error
	for _, addr := range addrs {
		if dialed == maxPeerAddrsToDial {
			return nil, &DialError{Peer: p, Reason: "peer had more than maxPeerAddrsToDial addresses"}
		}
		dialed++

		ctx, cancel := ComposeAbort(job.Context(), addr.Multiaddr, dialTimeout)
		job.emitProgress(ProgressEvent{Kind: KindStartDial})
		conn, err := c.TransportManager.Dial(ctx, addr.Multiaddr, p, nil)
		aborted := ctx.Err() != nil
		cancel()

		if err == nil {
			writeSuccessFeedback(c, conn)
			return conn, nil
		}

		if p != "" {
			writeFailureFeedback(c, p)
		}
		if aborted {
			return nil, &TimeoutError{Cause: err}
		}
		errs = append(errs, &TransportError{Address: addr.Multiaddr, Cause: err})
	}

	if len(errs) == 1 {
		return nil, errs[0]
	}
	return nil, NewAggregateError(errs, "all multiaddr dials failed")
}
