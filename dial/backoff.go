package dial

import (
	"sync"
	"time"

	"github.com/libp2p/go-libp2p-core/peer"
)

// BackoffBase is the base amount of time to backoff (default: 5s).
var BackoffBase = 5 * time.Second

// BackoffCoef is the backoff coefficient (default: 1s).
var BackoffCoef = time.Second

// BackoffMax is the maximum backoff time (default: 5m).
var BackoffMax = 5 * time.Minute

type backoffPeer struct {
	tries int
	until time.Time
}

// Backoff tracks peers that have recently exhausted every candidate
// address, so the Dial Queue can skip admitting a new job for them until
// the backoff window elapses. It is an additive admission-control layer in
// front of the queue-full check; a nil *Backoff is simply never consulted.
//
// It's safe to use its zero value and it's thread-safe; it's not safe to
// copy after first use.
type Backoff struct {
	mu      sync.Mutex
	entries map[peer.ID]*backoffPeer
}

func NewBackoff() *Backoff {
	return &Backoff{entries: make(map[peer.ID]*backoffPeer)}
}

// Backoff reports whether p should currently be skipped.
func (b *Backoff) Backoff(p peer.ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	bp, ok := b.entries[p]
	return ok && time.Now().Before(bp.until)
}

// AddBackoff records a failed dial attempt for p. Backoff is not
// exponential, it's quadratic and computed as:
//
//	BackoffBase + BackoffCoef * tries^2
//
// capped at BackoffMax.
func (b *Backoff) AddBackoff(p peer.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bp, ok := b.entries[p]
	if !ok {
		b.entries[p] = &backoffPeer{tries: 1, until: time.Now().Add(BackoffBase)}
		return
	}

	d := BackoffBase + BackoffCoef*time.Duration(bp.tries*bp.tries)
	if d > BackoffMax {
		d = BackoffMax
	}
	bp.until = time.Now().Add(d)
	bp.tries++
}

// ClearBackoff removes any backoff record for p. Callers should invoke
// this after a successful dial.
func (b *Backoff) ClearBackoff(p peer.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, p)
}
