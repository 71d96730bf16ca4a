package dial

import (
	"context"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p-core/peer"
)

// DialJob is a single entry in the priority job queue: a peer and/or a
// growing set of candidate address strings, shared by every caller that
// joined it (ref. the Dial Queue's join step).
type DialJob struct {
	*contextHolder

	peerID   peer.ID
	priority int
	seq      int
	queuedAt time.Time

	mu      sync.Mutex
	status  Status
	addrs   map[string]struct{}
	waiters int

	progress []ProgressFunc

	done   chan struct{}
	result Connection
	err    error
}

// NewDialJob creates a job for p (which may be empty) seeded with addrs.
// ctx is normally the dial queue's shutdown context; the job's own context
// is a child of it, so it is cancelled either by shutdown or once every
// waiter has given up on it (see decref).
func NewDialJob(ctx context.Context, p peer.ID, addrs map[string]struct{}, priority int) *DialJob {
	jctx, cancel := context.WithCancel(ctx)
	if addrs == nil {
		addrs = make(map[string]struct{})
	}
	return &DialJob{
		contextHolder: newContextHolder(jctx, cancel),
		peerID:        p,
		priority:      priority,
		queuedAt:      time.Now(),
		status:        StatusQueued,
		addrs:         addrs,
		done:          make(chan struct{}),
	}
}

// PeerID returns the peer this job is dialing; it may be empty if the
// caller dialed bare multiaddrs.
func (j *DialJob) PeerID() peer.ID { return j.peerID }

// Overlaps reports whether this job matches a target per the dial queue's
// join rule: matching PeerId (when both are defined), or any shared
// address string when the PeerIds aren't both defined and unequal.
//
// Two distinct, defined PeerIds are never a compatible join, even if their
// address sets intersect (e.g. a resolved bootstrap hostname shared by two
// peers): the new call proceeds as an independent job in that case.
func (j *DialJob) Overlaps(p peer.ID, addrs map[string]struct{}) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.peerID != "" && p != "" {
		return j.peerID == p
	}
	for a := range addrs {
		if _, ok := j.addrs[a]; ok {
			return true
		}
	}
	return false
}

// Addrs returns a snapshot of the job's current address set.
func (j *DialJob) Addrs() map[string]struct{} {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make(map[string]struct{}, len(j.addrs))
	for a := range j.addrs {
		out[a] = struct{}{}
	}
	return out
}

// Join merges addrs into the job and registers the caller as a waiter,
// then awaits the job's shared result. ctx governs only this caller's
// wait: if ctx is cancelled, only this call returns early. Other waiters
// are unaffected, unless this was the last one standing, in which case the
// job itself is abandoned (see decref).
func (j *DialJob) Join(ctx context.Context, addrs map[string]struct{}, onProgress ProgressFunc) (Connection, error) {
	j.mu.Lock()
	for a := range addrs {
		j.addrs[a] = struct{}{}
	}
	j.waiters++
	if onProgress != nil {
		j.progress = append(j.progress, onProgress)
	}
	j.mu.Unlock()

	defer j.decref()

	select {
	case <-j.done:
		return j.result, j.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (j *DialJob) decref() {
	j.mu.Lock()
	j.waiters--
	empty := j.waiters == 0
	j.mu.Unlock()

	if !empty {
		return
	}
	select {
	case <-j.done:
	default:
		// every waiter gave up before we completed: nobody is left to
		// deliver a result to, so abandon the attempt loop.
		j.FireCancels()
	}
}

func (j *DialJob) emitProgress(evt ProgressEvent) {
	j.mu.Lock()
	fns := make([]ProgressFunc, len(j.progress))
	copy(fns, j.progress)
	j.mu.Unlock()

	for _, fn := range fns {
		emitProgress(fn, evt)
	}
}

// complete records the job's outcome and wakes every waiter. It may only
// be called once.
func (j *DialJob) complete(conn Connection, err error) {
	j.mu.Lock()
	j.status.Assert(StatusQueued | StatusRunning)
	j.status = StatusComplete
	j.result, j.err = conn, err
	j.mu.Unlock()

	close(j.done)
	j.FireCancels()
}

// Err returns the job's recorded error, or nil if the job has not
// completed yet or completed successfully.
func (j *DialJob) Err() error {
	select {
	case <-j.done:
		return j.err
	default:
		return nil
	}
}

func (j *DialJob) markRunning() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.status.Assert(StatusQueued)
	j.status = StatusRunning
}
