// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress runs the simulated progress indicator shown while a
// submission is in flight. It is a timer, not a measurement: the percentage
// climbs on a fixed cadence whatever the network is doing.
package progress

import (
	"sync"
	"time"

	"github.com/pdiddy/pdfbuddy/pkg/types"
)

// Phase is the cosmetic stage shown to the user.
type Phase string

const (
	PhaseUploading  Phase = "uploading"
	PhaseProcessing Phase = "processing"
	PhaseDone       Phase = "done"
)

const (
	DefaultInterval = 50 * time.Millisecond
	DefaultStep     = 2
)

// Snapshot is the indicator state at one tick.
type Snapshot struct {
	Phase   Phase
	Percent int
}

// Next advances s by step. At 100 the uploading phase becomes processing
// and the percentage restarts; processing keeps cycling.
func (s Snapshot) Next(step int) Snapshot {
	switch s.Phase {
	case PhaseDone:
		return s
	case PhaseUploading:
		if s.Percent >= 100 {
			return Snapshot{Phase: PhaseProcessing}
		}
	case PhaseProcessing:
		if s.Percent >= 100 {
			return Snapshot{Phase: PhaseProcessing}
		}
	}
	p := s.Percent + step
	if p > 100 {
		p = 100
	}
	return Snapshot{Phase: s.Phase, Percent: p}
}

// Task is a running indicator. The zero value is not usable; call Start.
type Task struct {
	interval time.Duration
	step     int
	onTick   func(Snapshot)

	mu   sync.Mutex
	snap Snapshot

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Start launches the indicator. onTick, if non-nil, is called from the
// task's goroutine after every tick and never after Stop returns.
func Start(cfg types.ProgressConfig, onTick func(Snapshot)) *Task {
	t := &Task{
		interval: cfg.Interval,
		step:     cfg.Step,
		onTick:   onTick,
		snap:     Snapshot{Phase: PhaseUploading},
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if t.interval <= 0 {
		t.interval = DefaultInterval
	}
	if t.step <= 0 {
		t.step = DefaultStep
	}
	go t.run()
	return t
}

func (t *Task) run() {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			t.snap = t.snap.Next(t.step)
			snap := t.snap
			t.mu.Unlock()

			// Stop may have raced with the tick.
			select {
			case <-t.stop:
				return
			default:
			}
			if t.onTick != nil {
				t.onTick(snap)
			}
		}
	}
}

// Snapshot returns the current state.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Stop cancels the timer and waits for the goroutine to exit. It is safe
// to call more than once. It must not be called from onTick.
func (t *Task) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
}

// Finish stops the timer and jumps to the done phase at 100%.
func (t *Task) Finish() Snapshot {
	t.Stop()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = Snapshot{Phase: PhaseDone, Percent: 100}
	return t.snap
}
