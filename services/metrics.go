package services

import (
	"sync"
	"time"
)

// metricsWindow bounds how far back performance samples are kept. Older
// entries are pruned on every write so memory stays flat across warm
// execution environments.
const metricsWindow = 5 * time.Minute

type operationSample struct {
	at       time.Time
	duration time.Duration
	success  bool
}

// PerformanceTracker keeps a rolling window of external-call samples. It is
// constructed once at composition time and shared by reference; it is the
// only mutable state that outlives a pass, and every update is a short
// append-or-prune under one mutex.
type PerformanceTracker struct {
	mu      sync.Mutex
	samples []operationSample
	now     func() time.Time
}

func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{now: time.Now}
}

// RecordOperation appends one external-call sample and prunes the window.
func (t *PerformanceTracker) RecordOperation(duration time.Duration, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.samples = append(t.samples, operationSample{at: now, duration: duration, success: success})
	t.pruneLocked(now)
}

// AverageLatency returns the mean duration over the trailing window, or zero
// when no samples exist.
func (t *PerformanceTracker) AverageLatency() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(t.now())
	if len(t.samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range t.samples {
		total += s.duration
	}
	return total / time.Duration(len(t.samples))
}

// SuccessRate returns the fraction of successful calls over the trailing
// window. With no samples it reports 1.0 so an idle tracker never looks
// unhealthy.
func (t *PerformanceTracker) SuccessRate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(t.now())
	if len(t.samples) == 0 {
		return 1.0
	}
	succeeded := 0
	for _, s := range t.samples {
		if s.success {
			succeeded++
		}
	}
	return float64(succeeded) / float64(len(t.samples))
}

// CallsPerMinute reports the trailing call volume normalized to one minute.
// The denominator is the span actually covered by the retained samples,
// floored at one minute, so a freshly warmed instance does not underreport
// its rate by dividing a short burst over the whole window.
func (t *PerformanceTracker) CallsPerMinute() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.pruneLocked(now)
	if len(t.samples) == 0 {
		return 0
	}
	span := now.Sub(t.samples[0].at)
	if span < time.Minute {
		span = time.Minute
	}
	return float64(len(t.samples)) / span.Minutes()
}

func (t *PerformanceTracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-metricsWindow)
	kept := t.samples[:0]
	for _, s := range t.samples {
		if s.at.After(cutoff) {
			kept = append(kept, s)
		}
	}
	t.samples = kept
}
