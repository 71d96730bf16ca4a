package dialqueue

import (
	"context"
	"sync"

	"github.com/libp2p/go-libp2p-core/peer"

	"github.com/libp2p/go-libp2p-dial-queue/dial"
)

// DialOptions configures a single Dial call.
type DialOptions struct {
	// Force skips the existing-connection short-circuit.
	Force bool

	// Priority controls the job's place in the pending queue: higher
	// values are dispatched first. DefaultDialOptions sets it to 50; a
	// caller-supplied DialOptions is used as is, zero included.
	Priority int

	// Signal, if set, lets the caller abandon its own wait on the result
	// without affecting other callers joined on the same job.
	Signal context.Context

	// OnProgress, if set, receives lifecycle events for this call.
	OnProgress dial.ProgressFunc

	// RunOnLimitedConnection is reserved for relay/limited-connection
	// policy; DefaultDialOptions sets it to true.
	RunOnLimitedConnection bool
}

// DefaultDialOptions returns the options applied when Dial is called with
// none supplied.
func DefaultDialOptions() DialOptions {
	return DialOptions{
		Priority:               50,
		RunOnLimitedConnection: true,
	}
}

// DialQueue schedules connection attempts: at most one in-flight job per
// overlapping peer/address set, bounded total concurrency, and a bounded
// pending queue.
type DialQueue struct {
	cfg *config

	shutdownMu sync.RWMutex
	shutdown   context.Context
	cancel     context.CancelFunc

	queue   *dial.Queue
	comps   *dial.Components
	backoff *dial.Backoff

	mu   sync.Mutex
	jobs []*dial.DialJob
}

// New constructs a DialQueue. WithTransportManager is required; every
// other collaborator is optional and defaults to a no-op.
func New(opts ...Option) (*DialQueue, error) {
	cfg := defaultConfig()
	if err := cfg.apply(opts...); err != nil {
		return nil, err
	}
	if cfg.transportManager == nil {
		return nil, &dial.InvalidParametersError{Reason: "a TransportManager is required"}
	}

	shutdown, cancel := context.WithCancel(context.Background())

	comps := &dial.Components{
		LocalPeerID:      cfg.localPeerID,
		TransportManager: cfg.transportManager,
		PeerStore:        cfg.peerStore,
		PeerRouting:      cfg.peerRouting,
		Gater:            cfg.gater,
		Resolvers:        cfg.resolvers,
		AddressSorter:    cfg.addressSorter,
		Metrics:          cfg.metrics,
	}

	return &DialQueue{
		cfg:      cfg,
		shutdown: shutdown,
		cancel:   cancel,
		queue:    dial.NewQueue(cfg.maxParallelDials, cfg.metrics),
		comps:    comps,
		backoff:  cfg.backoff,
	}, nil
}

// Size returns the number of jobs currently admitted to the queue,
// whether queued or running. It never exceeds maxDialQueueLength.
func (dq *DialQueue) Size() int { return dq.jobCount() }

func (dq *DialQueue) jobCount() int {
	dq.mu.Lock()
	defer dq.mu.Unlock()
	return len(dq.jobs)
}

// Stop aborts every pending job with AbortError and prevents new jobs
// from being admitted until Start is called. Running jobs observe
// shutdown through their own context and unwind on their own. Aborted
// pending jobs are dropped from the join table so a subsequent Start
// begins clean, rather than leaving dead jobs that findJoinable would
// still match and Size would still count.
func (dq *DialQueue) Stop() {
	for _, job := range dq.queue.Abort() {
		dq.removeJob(job)
	}

	dq.shutdownMu.Lock()
	dq.cancel()
	dq.shutdownMu.Unlock()
}

// Start reopens the queue after Stop. A fresh shutdown context is
// installed so subsequently admitted jobs are governed by it.
func (dq *DialQueue) Start() {
	dq.shutdownMu.Lock()
	dq.shutdown, dq.cancel = context.WithCancel(context.Background())
	dq.shutdownMu.Unlock()

	dq.queue.Reopen()
}

func (dq *DialQueue) shutdownCtx() context.Context {
	dq.shutdownMu.RLock()
	defer dq.shutdownMu.RUnlock()
	return dq.shutdown
}

// Dial resolves target to a single open connection, or an error if none
// could be established. It implements the dial queue's four-step
// algorithm: check for an existing open connection, join an in-flight job
// targeting an overlapping peer/address set, or admit a new job and wait
// for it.
func (dq *DialQueue) Dial(ctx context.Context, target Target, opts ...DialOptions) (dial.Connection, error) {
	opt := DefaultDialOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	p, addrs, err := target.resolve()
	if err != nil {
		return nil, err
	}

	// step 1: existing open connection.
	if !opt.Force && dq.cfg.connections != nil {
		if c := findOpenConnection(dq.cfg.connections, p, target.Multiaddrs); c != nil {
			dial.EmitProgress(opt.OnProgress, dial.ProgressEvent{Kind: dial.KindAlreadyConnected})
			return c, nil
		}
	}

	if p != "" && dq.backoff != nil && dq.backoff.Backoff(p) {
		return nil, &dial.DialError{Peer: p, Reason: "peer is in dial backoff"}
	}

	waitCtx := ctx
	if opt.Signal != nil {
		waitCtx = opt.Signal
	}

	// step 2: join an in-flight job with an overlapping target.
	if job := dq.findJoinable(p, addrs); job != nil {
		dial.EmitProgress(opt.OnProgress, dial.ProgressEvent{Kind: dial.KindAlreadyInDialQueue})
		return job.Join(waitCtx, addrs, opt.OnProgress)
	}

	// step 3: admit a new job, subject to the cap on jobs in flight
	// (queued or running), matching the queue's size invariant. Nothing is
	// admitted between Stop and Start.
	if dq.shutdownCtx().Err() != nil {
		return nil, dial.AbortError
	}
	if dq.jobCount() >= dq.cfg.maxDialQueueLength {
		return nil, &dial.DialError{Peer: p, Reason: "dial queue is full"}
	}

	job := dial.NewDialJob(dq.shutdownCtx(), p, addrs, opt.Priority)
	dq.addJob(job)
	dial.EmitProgress(opt.OnProgress, dial.ProgressEvent{Kind: dial.KindAddToDialQueue})

	task := dial.NewAttemptTask(dq.comps, dq.cfg.maxPeerAddrsToDial, dq.cfg.dialTimeout)
	dq.queue.Add(job, func(j *dial.DialJob) {
		task(j)
		dq.removeJob(j)
		dq.applyBackoff(j)
	})

	// step 4: await the job's shared result.
	return job.Join(waitCtx, addrs, opt.OnProgress)
}

func (dq *DialQueue) applyBackoff(job *dial.DialJob) {
	if dq.backoff == nil {
		return
	}
	p := job.PeerID()
	if p == "" {
		return
	}
	if job.Err() == nil {
		dq.backoff.ClearBackoff(p)
	} else {
		dq.backoff.AddBackoff(p)
	}
}

func (dq *DialQueue) findJoinable(p peer.ID, addrs map[string]struct{}) *dial.DialJob {
	dq.mu.Lock()
	defer dq.mu.Unlock()

	for _, job := range dq.jobs {
		if job.Overlaps(p, addrs) {
			return job
		}
	}
	return nil
}

func (dq *DialQueue) addJob(job *dial.DialJob) {
	dq.mu.Lock()
	dq.jobs = append(dq.jobs, job)
	dq.mu.Unlock()
}

func (dq *DialQueue) removeJob(job *dial.DialJob) {
	dq.mu.Lock()
	defer dq.mu.Unlock()
	for i, j := range dq.jobs {
		if j == job {
			dq.jobs = append(dq.jobs[:i], dq.jobs[i+1:]...)
			return
		}
	}
}
