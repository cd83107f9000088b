package core

import (
	"golang.org/x/sys/unix"

	"github.com/fengstream/rtsp-core/internal/logger"
)

// workerPool bounds the number of concurrently-running per-client
// goroutines using a semaphore over a buffered channel. Slots are held
// for the lifetime of a connection rather than a single callback, so
// admission beyond the limit must reject rather than block — blocking
// the accept loop on a full pool would itself become a denial-of-service
// surface.
type workerPool struct {
	slots chan struct{}
	size  int
}

// newWorkerPool builds a pool with the configured capacity, or one derived
// from RLIMIT_NOFILE when max is zero: each Client holds open one socket
// fd plus occasional scratch fds, so reserving a quarter of the descriptor
// limit for other uses (listener sockets, log files, hook subprocesses)
// leaves a safe worker ceiling.
func newWorkerPool(max int) (*workerPool, error) {
	if max <= 0 {
		derived, err := deriveMaxFromRlimit()
		if err != nil {
			return nil, err
		}
		max = derived
	}
	return &workerPool{slots: make(chan struct{}, max), size: max}, nil
}

func deriveMaxFromRlimit() (int, error) {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return 0, err
	}
	cur := int(rlim.Cur)
	derived := cur - cur/4
	if derived < 16 {
		derived = 16
	}
	logger.Debug().Int("rlimit_nofile", cur).Int("worker_pool_max", derived).Msg("derived worker pool size")
	return derived, nil
}

// tryAcquire attempts to reserve a slot without blocking. Returns false
// when the pool is saturated, the signal for the Admitter to reject the
// connection.
func (p *workerPool) tryAcquire() bool {
	select {
	case p.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// release returns a slot to the pool. Safe to call at most once per
// successful tryAcquire.
func (p *workerPool) release() {
	<-p.slots
}

func (p *workerPool) inUse() int { return len(p.slots) }
func (p *workerPool) Size() int  { return p.size }
