// ABOUTME: Loop timing statistics over a rolling window
// ABOUTME: Tracks min/max/average interval between loop iterations
package control

import "time"

// DefaultJitterWindow is the length of each statistics window
const DefaultJitterWindow = time.Second

// JitterInfo summarizes loop iteration intervals for one window
type JitterInfo struct {
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
	Count int
}

// JitterSampler collects iteration intervals and publishes a summary each
// time a window closes. The zero value is not usable; use NewJitterSampler.
type JitterSampler struct {
	window time.Duration

	started  time.Time
	last     time.Time
	haveLast bool

	min, max, total time.Duration
	count           int

	latest JitterInfo
}

// NewJitterSampler creates a sampler with the given window length
func NewJitterSampler(window time.Duration) *JitterSampler {
	if window <= 0 {
		window = DefaultJitterWindow
	}
	return &JitterSampler{window: window}
}

// Mark records an iteration at now. It returns true when a window closed
// and Latest changed.
func (j *JitterSampler) Mark(now time.Time) bool {
	if !j.haveLast {
		j.last = now
		j.started = now
		j.haveLast = true
		return false
	}

	interval := now.Sub(j.last)
	j.last = now
	if interval < 0 {
		interval = 0
	}

	if j.count == 0 || interval < j.min {
		j.min = interval
	}
	if interval > j.max {
		j.max = interval
	}
	j.total += interval
	j.count++

	if now.Sub(j.started) < j.window {
		return false
	}

	j.latest = JitterInfo{
		Min:   j.min,
		Max:   j.max,
		Avg:   j.total / time.Duration(j.count),
		Count: j.count,
	}
	j.started = now
	j.min, j.max, j.total, j.count = 0, 0, 0, 0
	return true
}

// Latest returns the summary of the last completed window
func (j *JitterSampler) Latest() JitterInfo {
	return j.latest
}
