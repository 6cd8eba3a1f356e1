package lstore

import (
	"sync"
	"time"
)

// sweeper calls sweep every interval until it is stopped
type sweeper struct {
	stopCh chan struct{}
	done   chan struct{}
	once   sync.Once
}

func startSweeper(interval time.Duration, sweep func()) *sweeper {
	sw := &sweeper{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sw.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-sw.stopCh:
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()

	return sw
}

// stop signals the loop to end and waits for a running sweep to finish.
// Calling stop more than once is a no-op.
func (sw *sweeper) stop() {
	sw.once.Do(func() {
		close(sw.stopCh)
	})
	<-sw.done
}
