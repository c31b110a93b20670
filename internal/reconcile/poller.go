package reconcile

import (
	"context"
	"time"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

type poller struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// StartPolling refreshes the cache every interval until StopPolling or Close.
// Consecutive refresh failures stretch the delay up to maxBackoff. Calling it
// while polling is already running, or after Close, does nothing.
func (e *Engine) StartPolling(interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.poll != nil {
		return
	}
	p := &poller{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	e.poll = p
	e.log.Debug().Dur("interval", interval).Msg("polling started")
	go e.runPoller(p)
}

// StopPolling stops the polling loop. A refresh already in flight completes
// and is applied.
func (e *Engine) StopPolling() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopPollingLocked()
}

// Polling reports whether the polling loop is running.
func (e *Engine) Polling() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.poll != nil
}

func (e *Engine) stopPollingLocked() {
	if e.poll == nil {
		return
	}
	close(e.poll.stop)
	e.poll = nil
	e.log.Debug().Msg("polling stopped")
}

func (e *Engine) runPoller(p *poller) {
	defer close(p.done)

	failures := 0
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-timer.C:
		}

		if err := e.refresh(context.Background(), triggerPoll); err != nil {
			failures++
		} else {
			failures = 0
		}
		timer.Reset(calculateBackoff(failures, p.interval))
	}
}

// calculateBackoff doubles base once per consecutive failure, capped at
// maxBackoff. A base already above the cap is returned unchanged.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
