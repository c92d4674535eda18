package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowSnapshot(t *testing.T) {
	var w Window
	w.Record(500, 200*time.Millisecond, 0.4)
	w.Record(500, 300*time.Millisecond, 0.2)
	snap := w.Snapshot()

	assert.Equal(t, 1000, snap.Examples)
	assert.InDelta(t, 2000.0, snap.ExamplesPerSec, 1e-9)
	assert.InDelta(t, 500.0, snap.AvgExampleUS, 1e-9)
	assert.Equal(t, 0.2, snap.LastLoss)

	assert.Zero(t, w.examples, "window was not reset")
	assert.Zero(t, w.lastLoss)
}

func TestWindowSnapshot_Empty(t *testing.T) {
	var w Window
	assert.Equal(t, Snapshot{}, w.Snapshot())
}

func TestMeterMark(t *testing.T) {
	clock := time.Unix(0, 0)
	m := newMeter(func() time.Time { return clock })

	clock = clock.Add(time.Second)
	snap := m.Mark(1000, 0)
	assert.Equal(t, 1000, snap.Examples)
	assert.InDelta(t, 1000.0, snap.ExamplesPerSec, 1e-9)

	clock = clock.Add(500 * time.Millisecond)
	snap = m.Mark(3000, 0.125)
	assert.Equal(t, 2000, snap.Examples)
	assert.Equal(t, 0.125, snap.LastLoss)
	assert.InDelta(t, 4000.0, snap.ExamplesPerSec, 1e-9)

	// A new epoch restarts the cumulative count.
	clock = clock.Add(time.Second)
	snap = m.Mark(100, 0)
	assert.Equal(t, 100, snap.Examples)
}
