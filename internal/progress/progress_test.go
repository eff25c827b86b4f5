// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/pdiddy/pdfbuddy/pkg/types"
)

func TestSnapshotNext(t *testing.T) {
	tests := []struct {
		name string
		in   Snapshot
		step int
		want Snapshot
	}{
		{"climbs", Snapshot{PhaseUploading, 10}, 2, Snapshot{PhaseUploading, 12}},
		{"caps at 100", Snapshot{PhaseUploading, 99}, 2, Snapshot{PhaseUploading, 100}},
		{"uploading flips to processing", Snapshot{PhaseUploading, 100}, 2, Snapshot{PhaseProcessing, 0}},
		{"processing cycles", Snapshot{PhaseProcessing, 100}, 2, Snapshot{PhaseProcessing, 0}},
		{"done is sticky", Snapshot{PhaseDone, 100}, 2, Snapshot{PhaseDone, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Next(tt.step))
		})
	}
}

func TestTask_ReachesProcessing(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var seen []Snapshot
	task := Start(types.ProgressConfig{Interval: time.Millisecond, Step: 25}, func(s Snapshot) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	assert.Eventually(t, func() bool {
		return task.Snapshot().Phase == PhaseProcessing
	}, time.Second, time.Millisecond)
	task.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, Snapshot{PhaseUploading, 25}, seen[0])
	assert.Contains(t, seen, Snapshot{PhaseUploading, 100})
}

func TestTask_NoTicksAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	ticks := 0
	task := Start(types.ProgressConfig{Interval: time.Millisecond}, func(Snapshot) {
		mu.Lock()
		ticks++
		mu.Unlock()
	})
	time.Sleep(10 * time.Millisecond)
	task.Stop()
	task.Stop()

	mu.Lock()
	after := ticks
	mu.Unlock()
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, after, ticks)
}

func TestTask_Finish(t *testing.T) {
	defer goleak.VerifyNone(t)

	task := Start(types.ProgressConfig{Interval: time.Hour}, nil)
	assert.Equal(t, Snapshot{PhaseUploading, 0}, task.Snapshot())

	got := task.Finish()
	assert.Equal(t, Snapshot{PhaseDone, 100}, got)
	assert.Equal(t, got, task.Snapshot())
}
