package metrics

import "time"

// Window accumulates throughput stats between progress reports.
type Window struct {
	examples int
	elapsed  time.Duration
	lastLoss float64
}

// Record adds a measurement covering count examples processed in elapsed,
// along with the loss observed at the end of the interval.
func (w *Window) Record(count int, elapsed time.Duration, loss float64) {
	w.examples += count
	w.elapsed += elapsed
	w.lastLoss = loss
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Examples: w.examples, LastLoss: w.lastLoss}
	if w.elapsed > 0 {
		snap.ExamplesPerSec = float64(w.examples) / w.elapsed.Seconds()
	}
	if w.examples > 0 {
		snap.AvgExampleUS = float64(w.elapsed.Microseconds()) / float64(w.examples)
	}

	w.examples = 0
	w.elapsed = 0
	w.lastLoss = 0
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Examples       int
	ExamplesPerSec float64
	AvgExampleUS   float64
	LastLoss       float64
}

// Meter turns cumulative progress counts into Window records.
type Meter struct {
	window Window
	last   int
	at     time.Time
	now    func() time.Time
}

// NewMeter returns a Meter that starts timing immediately.
func NewMeter() *Meter {
	return newMeter(time.Now)
}

func newMeter(now func() time.Time) *Meter {
	return &Meter{at: now(), now: now}
}

// Mark records progress up to the cumulative count done and returns the
// snapshot for the interval since the previous Mark.
func (m *Meter) Mark(done int, loss float64) Snapshot {
	t := m.now()
	if done < m.last {
		m.last = 0
	}
	m.window.Record(done-m.last, t.Sub(m.at), loss)
	m.last, m.at = done, t
	return m.window.Snapshot()
}
