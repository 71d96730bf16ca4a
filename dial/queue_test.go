package dial_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/libp2p/go-libp2p-dial-queue/dial"
)

func TestQueueRespectsConcurrencyBound(t *testing.T) {
	q := dial.NewQueue(2, nil)

	var running, maxRunning int32
	release := make(chan struct{})
	var wg sync.WaitGroup

	task := func(job *dial.DialJob) {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&maxRunning)
			if n <= old || atomic.CompareAndSwapInt32(&maxRunning, old, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&running, -1)
		wg.Done()
	}

	for i := 0; i < 5; i++ {
		wg.Add(1)
		q.Add(dial.NewDialJob(context.Background(), "", nil, 0), task)
	}

	time.Sleep(50 * time.Millisecond)
	require.LessOrEqual(t, atomic.LoadInt32(&maxRunning), int32(2))

	close(release)
	wg.Wait()
}

func TestQueueDispatchesHigherPriorityFirst(t *testing.T) {
	q := dial.NewQueue(1, nil)

	started := make(chan int, 3)
	release := make(chan struct{})

	// occupy the single slot so the rest queue up before being released.
	q.Add(dial.NewDialJob(context.Background(), "", nil, 0), func(job *dial.DialJob) {
		<-release
	})
	time.Sleep(10 * time.Millisecond)

	q.Add(dial.NewDialJob(context.Background(), "", nil, 1), func(job *dial.DialJob) { started <- 1 })
	q.Add(dial.NewDialJob(context.Background(), "", nil, 5), func(job *dial.DialJob) { started <- 5 })
	q.Add(dial.NewDialJob(context.Background(), "", nil, 5), func(job *dial.DialJob) { started <- 5 })

	require.Equal(t, 3, q.Size())
	close(release)

	require.Equal(t, 5, <-started)
	require.Equal(t, 5, <-started)
	require.Equal(t, 1, <-started)
}

func TestQueueAbortCompletesPendingJobsWithAbortError(t *testing.T) {
	q := dial.NewQueue(1, nil)

	release := make(chan struct{})
	q.Add(dial.NewDialJob(context.Background(), "", nil, 0), func(job *dial.DialJob) {
		<-release
	})
	time.Sleep(10 * time.Millisecond)

	job := dial.NewDialJob(context.Background(), "", nil, 0)
	q.Add(job, func(job *dial.DialJob) {})

	q.Abort()

	_, err := job.Join(context.Background(), nil, nil)
	require.ErrorIs(t, err, dial.AbortError)

	close(release)
}
