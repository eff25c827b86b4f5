// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lifecycle drives one tool's upload, convert and download flow:
//
//	collecting -> submitting -> succeeded
//	                         -> failed -> collecting (Reset) | submitting (Submit)
//
// A Controller owns the staged files, the parameters, the simulated
// progress task and the resulting artifact. At most one submission is in
// flight per controller.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pdfbuddy/internal/artifact"
	"github.com/pdiddy/pdfbuddy/internal/intake"
	"github.com/pdiddy/pdfbuddy/internal/invoke"
	"github.com/pdiddy/pdfbuddy/internal/params"
	"github.com/pdiddy/pdfbuddy/internal/progress"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

var (
	// ErrBusy is returned when a submission is already in flight.
	ErrBusy = errors.New("a submission is already in progress")
	// ErrNotReady wraps the validation failure that blocks a submission.
	ErrNotReady = errors.New("not ready to submit")
	// ErrNoFiles is the validation failure for an empty staged set.
	ErrNoFiles = errors.New("no files staged")
	// ErrInvalidTransition is returned for actions the current state does
	// not allow.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	// ErrNoArtifact is returned when no successful result is available.
	ErrNoArtifact = errors.New("no artifact available")
	// ErrDisposed is returned by every action after Dispose.
	ErrDisposed = errors.New("controller disposed")
)

// Event describes the controller after a change.
type Event struct {
	Tool     types.ToolDescriptor
	State    types.LifecycleState
	Progress progress.Snapshot
	Files    []types.StagedFile
	Params   params.Parameters

	// Artifact is set in the succeeded state.
	Artifact *artifact.Handle
	// Err is set in the failed state.
	Err *types.ClassifiedError
}

// Observer receives events. Calls for one controller never overlap.
type Observer func(Event)

// Option configures a Controller.
type Option func(*Controller)

// WithProgress sets the simulated progress cadence.
func WithProgress(cfg types.ProgressConfig) Option {
	return func(c *Controller) { c.progressCfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller is the state machine for a single tool instance. It is safe
// for concurrent use.
type Controller struct {
	tool        types.ToolDescriptor
	invoker     invoke.Invoker
	intake      *intake.Intake
	progressCfg types.ProgressConfig
	logger      zerolog.Logger

	// notifyMu serializes observer calls.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     types.LifecycleState
	params    params.Parameters
	snap      progress.Snapshot
	files     []types.StagedFile // files of the current or last submission
	handle    *artifact.Handle
	lastErr   *types.ClassifiedError
	task      *progress.Task
	gen       uint64
	settled   chan struct{}
	disposed  bool
	observers []Observer
}

// New creates a controller in the collecting state.
func New(tool types.ToolDescriptor, invoker invoke.Invoker, opts ...Option) *Controller {
	c := &Controller{
		tool:    tool,
		invoker: invoker,
		logger:  zerolog.Nop(),
		state:   types.StateCollecting,
		params:  params.Defaults(),
	}
	for _, o := range opts {
		o(c)
	}
	c.intake = intake.New(intake.ForTool(tool))
	c.logger = c.logger.With().Str("tool", string(tool.ID)).Logger()
	return c
}

// Intake returns the staged file set.
func (c *Controller) Intake() *intake.Intake { return c.intake }

// Subscribe registers o for every subsequent event.
func (c *Controller) Subscribe(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// State returns the current state.
func (c *Controller) State() types.LifecycleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Params returns the current parameters.
func (c *Controller) Params() params.Parameters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// SetParams replaces the parameters. It is rejected while submitting.
func (c *Controller) SetParams(p params.Parameters) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	if c.state == types.StateSubmitting {
		return ErrBusy
	}
	c.params = p
	return nil
}

// Ready returns nil when a submission would be accepted, or the validation
// error that blocks it.
func (c *Controller) Ready() error {
	files := c.intake.Files()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readyLocked(files)
}

func (c *Controller) readyLocked(files []types.StagedFile) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	return c.params.Validate(c.tool)
}

// Err returns the classified error of the last failed submission.
func (c *Controller) Err() *types.ClassifiedError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Artifact returns the result of a successful submission. Every call
// returns the same handle until the controller is reset or disposed.
func (c *Controller) Artifact() (*artifact.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != types.StateSucceeded || c.handle == nil {
		return nil, ErrNoArtifact
	}
	return c.handle, nil
}

// Submit validates the staged files and parameters and dispatches one
// request in the background. It returns ErrBusy if a request is already in
// flight and an error wrapping ErrNotReady if validation fails; in both
// cases nothing is dispatched. Submitting from the failed state resubmits
// the staged files.
func (c *Controller) Submit(ctx context.Context) error {
	files := c.intake.Files()

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	switch c.state {
	case types.StateSubmitting:
		c.mu.Unlock()
		c.logger.Debug().Msg("submit ignored: already submitting")
		return ErrBusy
	case types.StateSucceeded:
		c.mu.Unlock()
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, types.StateSucceeded)
	}
	if err := c.readyLocked(files); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}

	c.gen++
	gen := c.gen
	c.state = types.StateSubmitting
	c.lastErr = nil
	c.files = files
	c.snap = progress.Snapshot{Phase: progress.PhaseUploading}
	c.settled = make(chan struct{})
	req := invoke.Request{Tool: c.tool, Files: files, Params: c.params}
	ev := c.eventLocked()
	obs := c.observersLocked()
	c.mu.Unlock()

	c.logger.Info().Int("files", len(files)).Msg("submitting")
	c.notify(obs, ev)

	c.mu.Lock()
	if c.disposed || c.gen != gen {
		c.mu.Unlock()
		return nil
	}
	c.task = progress.Start(c.progressCfg, func(s progress.Snapshot) { c.tick(gen, s) })
	c.mu.Unlock()

	go c.run(ctx, gen, req)
	return nil
}

func (c *Controller) run(ctx context.Context, gen uint64, req invoke.Request) {
	res := c.invoker.Invoke(ctx, req)
	c.settle(gen, res)
}

func (c *Controller) tick(gen uint64, s progress.Snapshot) {
	c.mu.Lock()
	if c.disposed || c.gen != gen || c.state != types.StateSubmitting {
		c.mu.Unlock()
		return
	}
	c.snap = s
	ev := c.eventLocked()
	obs := c.observersLocked()
	c.mu.Unlock()
	c.notify(obs, ev)
}

// settle applies the outcome of submission gen. Outcomes that arrive after
// Dispose are discarded and their artifacts released.
func (c *Controller) settle(gen uint64, res invoke.Result) {
	c.mu.Lock()
	if c.disposed || c.gen != gen || c.state != types.StateSubmitting {
		c.mu.Unlock()
		if res.Artifact != nil {
			res.Artifact.Release()
		}
		c.logger.Debug().Msg("discarding result of abandoned submission")
		return
	}

	task := c.task
	c.task = nil
	if res.OK() {
		c.handle = res.Artifact
		c.state = types.StateSucceeded
		c.snap = progress.Snapshot{Phase: progress.PhaseDone, Percent: 100}
	} else {
		c.lastErr = res.Err
		c.state = types.StateFailed
	}
	settled := c.settled
	ev := c.eventLocked()
	obs := c.observersLocked()
	c.mu.Unlock()

	switch {
	case task == nil:
	case res.OK():
		task.Finish()
	default:
		task.Stop()
	}
	if res.OK() {
		c.logger.Info().Int("bytes", res.Artifact.Size()).Msg("submission succeeded")
	} else {
		c.logger.Warn().Err(res.Cause).Int("code", res.Err.Code).Str("message", res.Err.Message).Msg("submission failed")
	}
	c.notify(obs, ev)
	close(settled)
}

// Wait blocks until the in-flight submission settles and returns the
// resulting event. Outside the submitting state it returns immediately.
func (c *Controller) Wait(ctx context.Context) (Event, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return Event{}, ErrDisposed
	}
	if c.state != types.StateSubmitting {
		ev := c.eventLocked()
		c.mu.Unlock()
		return ev, nil
	}
	ch := c.settled
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case <-ch:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return Event{}, ErrDisposed
	}
	return c.eventLocked(), nil
}

// Reset returns a settled controller to collecting. The artifact of a
// successful run is released. When clearFiles is set the staged files are
// cleared as well; otherwise they can be resubmitted as they are.
func (c *Controller) Reset(clearFiles bool) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.state == types.StateSubmitting {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.state.Terminal() {
		c.mu.Unlock()
		if clearFiles {
			c.intake.Clear()
		}
		return nil
	}

	released := c.handle
	c.handle = nil
	c.lastErr = nil
	c.state = types.StateCollecting
	c.snap = progress.Snapshot{}
	ev := c.eventLocked()
	obs := c.observersLocked()
	c.mu.Unlock()

	if released != nil {
		released.Release()
	}
	if clearFiles {
		c.intake.Clear()
	}
	c.notify(obs, ev)
	return nil
}

// Dispose tears the controller down: the progress task stops, the artifact
// is released, and any in-flight result will be discarded when it arrives.
// The remote request itself is not cancelled. Dispose is idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	task := c.task
	c.task = nil
	handle := c.handle
	c.handle = nil
	var settled chan struct{}
	if c.state == types.StateSubmitting {
		settled = c.settled
	}
	c.observers = nil
	c.mu.Unlock()

	if task != nil {
		task.Stop()
	}
	if handle != nil {
		handle.Release()
	}
	if settled != nil {
		close(settled)
	}
	c.logger.Debug().Msg("disposed")
}

func (c *Controller) eventLocked() Event {
	files := make([]types.StagedFile, len(c.files))
	copy(files, c.files)
	return Event{
		Tool:     c.tool,
		State:    c.state,
		Progress: c.snap,
		Files:    files,
		Params:   c.params,
		Artifact: c.handle,
		Err:      c.lastErr,
	}
}

func (c *Controller) observersLocked() []Observer {
	if len(c.observers) == 0 {
		return nil
	}
	out := make([]Observer, len(c.observers))
	copy(out, c.observers)
	return out
}

func (c *Controller) notify(obs []Observer, ev Event) {
	if len(obs) == 0 {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, o := range obs {
		o(ev)
	}
}
