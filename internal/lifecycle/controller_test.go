// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/pdfbuddy/internal/artifact"
	"github.com/pdiddy/pdfbuddy/internal/catalog"
	"github.com/pdiddy/pdfbuddy/internal/httputil"
	"github.com/pdiddy/pdfbuddy/internal/intake"
	"github.com/pdiddy/pdfbuddy/internal/invoke"
	"github.com/pdiddy/pdfbuddy/internal/params"
	"github.com/pdiddy/pdfbuddy/internal/progress"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

// fakeInvoker returns queued results, optionally waiting on gate first.
type fakeInvoker struct {
	calls   atomic.Int32
	gate    chan struct{}
	mu      sync.Mutex
	results []invoke.Result
	last    invoke.Request
	handed  []*artifact.Handle
}

func (f *fakeInvoker) Invoke(ctx context.Context, req invoke.Request) invoke.Result {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = req
	if len(f.results) == 0 {
		h := artifact.New([]byte("result"), req.Tool.TargetMIME, req.Params.Filename(req.Tool))
		f.handed = append(f.handed, h)
		return invoke.Result{Kind: httputil.KindOK, Artifact: h}
	}
	r := f.results[0]
	f.results = f.results[1:]
	if r.Artifact != nil {
		f.handed = append(f.handed, r.Artifact)
	}
	return r
}

func failure(code int, msg string) invoke.Result {
	return invoke.Result{
		Kind:  httputil.KindStatus,
		Err:   &types.ClassifiedError{Message: msg, Code: code},
		Cause: errors.New("status"),
	}
}

func descriptor(t *testing.T, id types.ToolID) types.ToolDescriptor {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	d, ok := c.Get(id)
	require.True(t, ok)
	return d
}

func stage(c *Controller, names ...string) {
	raw := make([]types.RawFile, len(names))
	for i, n := range names {
		raw[i] = types.RawFile{Name: n, Size: 3, Payload: types.BytesPayload("pdf")}
	}
	c.Intake().Select(raw, intake.ModeAppend)
}

func fastProgress() Option {
	return WithProgress(types.ProgressConfig{Interval: time.Millisecond, Step: 10})
}

func TestSubmit_NotReadyWithoutFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := &fakeInvoker{}
	c := New(descriptor(t, types.ToolMerge), inv)
	defer c.Dispose()

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, err, ErrNoFiles)
	assert.ErrorIs(t, c.Ready(), ErrNoFiles)
	assert.Equal(t, types.StateCollecting, c.State())
	assert.Zero(t, inv.calls.Load())
}

func TestSubmit_NotReadyWithInvalidParams(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := &fakeInvoker{}
	c := New(descriptor(t, types.ToolSplit), inv)
	defer c.Dispose()
	stage(c, "doc.pdf")

	require.NoError(t, c.SetParams(params.Parameters{
		Mode:       params.ModeSplit,
		Ranges:     []params.Range{{From: 4, To: 2}},
		TotalPages: 5,
	}))

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, err, params.ErrInvalidRange)
	assert.Zero(t, inv.calls.Load())
}

func TestSubmit_SucceedsAndArtifactIsStable(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := &fakeInvoker{gate: make(chan struct{})}
	c := New(descriptor(t, types.ToolMerge), inv, fastProgress())
	defer c.Dispose()
	stage(c, "b.pdf", "a.pdf")

	var mu sync.Mutex
	var states []types.LifecycleState
	var ticks []progress.Snapshot
	c.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if len(states) == 0 || states[len(states)-1] != ev.State {
			states = append(states, ev.State)
		}
		if ev.State == types.StateSubmitting && ev.Progress.Percent > 0 {
			ticks = append(ticks, ev.Progress)
		}
	})

	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, types.StateSubmitting, c.State())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ticks) > 0
	}, time.Second, time.Millisecond)
	close(inv.gate)

	ev, err := c.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.StateSucceeded, ev.State)
	assert.Equal(t, progress.Snapshot{Phase: progress.PhaseDone, Percent: 100}, ev.Progress)
	assert.Len(t, ev.Files, 2)

	first, err := c.Artifact()
	require.NoError(t, err)
	second, err := c.Artifact()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, "merged.pdf", first.Filename())

	inv.mu.Lock()
	assert.Equal(t, "b.pdf", inv.last.Files[0].DisplayName)
	assert.Equal(t, "a.pdf", inv.last.Files[1].DisplayName)
	inv.mu.Unlock()

	mu.Lock()
	assert.Equal(t, []types.LifecycleState{types.StateSubmitting, types.StateSucceeded}, states)
	mu.Unlock()

	require.NoError(t, c.Reset(false))
	assert.True(t, first.Released())
	_, err = c.Artifact()
	assert.ErrorIs(t, err, ErrNoArtifact)
}

func TestSubmit_BusyWhileInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := &fakeInvoker{gate: make(chan struct{})}
	c := New(descriptor(t, types.ToolCompress), inv, fastProgress())
	defer c.Dispose()
	stage(c, "a.pdf")

	require.NoError(t, c.Submit(context.Background()))
	assert.ErrorIs(t, c.Submit(context.Background()), ErrBusy)
	assert.ErrorIs(t, c.SetParams(params.Defaults()), ErrBusy)
	assert.ErrorIs(t, c.Reset(true), ErrBusy)

	close(inv.gate)
	_, err := c.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), inv.calls.Load())

	assert.ErrorIs(t, c.Submit(context.Background()), ErrInvalidTransition)
}

func TestSubmit_FailedThenResubmit(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := &fakeInvoker{results: []invoke.Result{failure(413, "file too large")}}
	c := New(descriptor(t, types.ToolPDFToWord), inv, fastProgress())
	defer c.Dispose()
	stage(c, "big.pdf")

	require.NoError(t, c.Submit(context.Background()))
	ev, err := c.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.StateFailed, ev.State)
	require.NotNil(t, ev.Err)
	assert.Equal(t, 413, ev.Err.Code)
	assert.Equal(t, "file too large", c.Err().Message)
	_, err = c.Artifact()
	assert.ErrorIs(t, err, ErrNoArtifact)

	// Resubmit straight from failed with the same staged file.
	require.NoError(t, c.Submit(context.Background()))
	ev, err = c.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.StateSucceeded, ev.State)
	assert.Nil(t, c.Err())
	assert.Equal(t, int32(2), inv.calls.Load())
}

func TestReset_FromFailedClearsFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := &fakeInvoker{results: []invoke.Result{failure(500, "server error, try later")}}
	c := New(descriptor(t, types.ToolPDFToWord), inv, fastProgress())
	defer c.Dispose()
	stage(c, "a.pdf")

	require.NoError(t, c.Submit(context.Background()))
	_, err := c.Wait(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Reset(true))
	assert.Equal(t, types.StateCollecting, c.State())
	assert.Nil(t, c.Err())
	assert.Zero(t, c.Intake().Len())
	assert.ErrorIs(t, c.Submit(context.Background()), ErrNotReady)
}

func TestDispose_DiscardsInFlightResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := &fakeInvoker{gate: make(chan struct{})}
	c := New(descriptor(t, types.ToolPDFToExcel), inv, fastProgress())
	stage(c, "t.pdf")

	var events atomic.Int32
	c.Subscribe(func(Event) { events.Add(1) })

	require.NoError(t, c.Submit(context.Background()))
	c.Dispose()
	c.Dispose()
	seen := events.Load()

	_, err := c.Wait(context.Background())
	assert.ErrorIs(t, err, ErrDisposed)

	close(inv.gate)
	assert.Eventually(t, func() bool {
		inv.mu.Lock()
		defer inv.mu.Unlock()
		return len(inv.handed) == 1 && inv.handed[0].Released()
	}, time.Second, time.Millisecond)

	assert.Equal(t, seen, events.Load(), "no events after dispose")
	assert.ErrorIs(t, c.Submit(context.Background()), ErrDisposed)
	_, err = c.Artifact()
	assert.ErrorIs(t, err, ErrNoArtifact)
}

func TestDispose_ReleasesArtifact(t *testing.T) {
	defer goleak.VerifyNone(t)

	before := artifact.Live()
	inv := &fakeInvoker{}
	c := New(descriptor(t, types.ToolWordToPDF), inv, fastProgress())
	stage(c, "memo.docx")

	require.NoError(t, c.Submit(context.Background()))
	_, err := c.Wait(context.Background())
	require.NoError(t, err)
	h, err := c.Artifact()
	require.NoError(t, err)

	assert.Equal(t, before+1, artifact.Live())

	c.Dispose()
	assert.True(t, h.Released())
	assert.Equal(t, before, artifact.Live())
}

func TestWait_HonoursContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := &fakeInvoker{gate: make(chan struct{})}
	c := New(descriptor(t, types.ToolPDFToWord), inv, fastProgress())
	stage(c, "a.pdf")
	require.NoError(t, c.Submit(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := c.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(inv.gate)
	_, err = c.Wait(context.Background())
	require.NoError(t, err)
	c.Dispose()
}
