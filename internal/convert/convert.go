// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs tools end to end for the command line: it stages the
// inputs, drives a lifecycle controller through one submission, renders the
// events and saves the artifact. Several inputs to a single-input tool are
// run as a batch, one controller per file.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pdfbuddy/internal/intake"
	"github.com/pdiddy/pdfbuddy/internal/invoke"
	"github.com/pdiddy/pdfbuddy/internal/lifecycle"
	"github.com/pdiddy/pdfbuddy/internal/params"
	"github.com/pdiddy/pdfbuddy/internal/pdfinfo"
	"github.com/pdiddy/pdfbuddy/internal/present"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

var (
	// ErrUnsupported is returned when inputs do not match the tool's
	// accepted types.
	ErrUnsupported = errors.New("unsupported input type")
	// ErrFailed is returned when the remote conversion failed. The
	// classified error has already been rendered.
	ErrFailed = errors.New("conversion failed")
	// ErrBadOrder is returned when --order is not a permutation of the
	// input positions.
	ErrBadOrder = errors.New("order must list every input position once")
)

// Status is the per-file outcome of a batch.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Recorder persists job history. *history.Store implements it.
type Recorder interface {
	Begin(ctx context.Context, tool types.ToolID, inputs []string) (string, error)
	Finish(ctx context.Context, id string, state types.LifecycleState, failure *types.ClassifiedError, output string) error
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the number of inputs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any input failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Runner carries everything needed to run one tool.
type Runner struct {
	Tool      types.ToolDescriptor
	Invoker   invoke.Invoker
	Presenter *present.Presenter
	Params    params.Parameters
	Progress  types.ProgressConfig
	Output    types.OutputConfig
	Logger    zerolog.Logger

	// Order lists 1-based input positions in submission order. Only
	// order-sensitive tools honour it.
	Order []int

	// Recorder is optional.
	Recorder Recorder
}

// Outcome is the result of a single Run.
type Outcome struct {
	State types.LifecycleState
	Path  string
	Err   *types.ClassifiedError
	JobID string
}

// NewController creates a controller for the runner's tool with the
// presenter subscribed.
func (r *Runner) NewController() *lifecycle.Controller {
	ctrl := lifecycle.New(r.Tool, r.Invoker,
		lifecycle.WithProgress(r.Progress),
		lifecycle.WithLogger(r.Logger),
	)
	if r.Presenter != nil {
		ctrl.Subscribe(r.Presenter.Observe)
	}
	return ctrl
}

// Run stages raw, submits once and waits for the result. On success the
// artifact is saved under outName in the output directory, or under its
// suggested filename when outName is empty.
func (r *Runner) Run(ctx context.Context, raw []types.RawFile, outName string) (Outcome, error) {
	ctrl := r.NewController()
	defer ctrl.Dispose()

	if rejected := ctrl.Intake().Select(raw, intake.ModeAppend); len(rejected) > 0 {
		return Outcome{}, r.Rejected(rejected)
	}
	return r.Submit(ctx, ctrl, outName)
}

// Rejected describes files the tool does not accept.
func (r *Runner) Rejected(files []types.RawFile) error {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return fmt.Errorf("%w for %s (accepts %s): %s",
		ErrUnsupported, r.Tool.Title, strings.Join(r.Tool.Accept, ", "), strings.Join(names, ", "))
}

// Submit runs one submission of the files already staged in ctrl, waits
// for it to settle and saves the artifact. Without overwrite an existing
// output is kept and the result gets a numbered name. The controller is
// left in its terminal state.
func (r *Runner) Submit(ctx context.Context, ctrl *lifecycle.Controller, outName string) (Outcome, error) {
	if err := r.applyOrder(ctrl.Intake()); err != nil {
		return Outcome{}, err
	}

	p, err := r.paramsFor(ctrl.Intake().Files())
	if err != nil {
		return Outcome{}, err
	}
	if err := ctrl.SetParams(p); err != nil {
		return Outcome{}, err
	}
	if r.Tool.HasParam("range") {
		r.Logger.Info().Str("mode", string(p.Mode)).Ints("pages", p.SelectedPages()).Int("total_pages", p.TotalPages).Msg("page selection")
	}

	jobID := r.begin(ctx, ctrl.Intake().Files())

	if err := ctrl.Submit(ctx); err != nil {
		r.finish(ctx, jobID, types.StateFailed, &types.ClassifiedError{Message: err.Error(), Code: types.CodeLocal}, "")
		return Outcome{JobID: jobID}, err
	}
	ev, err := ctrl.Wait(ctx)
	if err != nil {
		r.finish(context.WithoutCancel(ctx), jobID, types.StateFailed, &types.ClassifiedError{Message: err.Error(), Code: types.CodeLocal}, "")
		return Outcome{JobID: jobID}, err
	}

	out := Outcome{State: ev.State, Err: ev.Err, JobID: jobID}
	if ev.State != types.StateSucceeded {
		r.finish(ctx, jobID, ev.State, ev.Err, "")
		return out, ErrFailed
	}

	h, err := ctrl.Artifact()
	if err != nil {
		return out, err
	}
	if outName == "" {
		outName = h.Filename()
	}
	path, err := r.presenter().DownloadAs(h, r.Output.Dir, outName, r.Output.Overwrite)
	if err != nil {
		return out, fmt.Errorf("saving %s: %w", outName, err)
	}
	out.Path = path
	r.finish(ctx, jobID, ev.State, nil, out.Path)
	return out, nil
}

// RunBatch runs each input through its own submission, printing per-file
// status to w and returning a summary. Inputs whose output already exists
// are skipped unless overwrite is configured.
func (r *Runner) RunBatch(ctx context.Context, raw []types.RawFile, w io.Writer) BatchResult {
	var result BatchResult
	for _, f := range raw {
		switch r.runOne(ctx, f, w) {
		case StatusConverted:
			result.Converted++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
		if ctx.Err() != nil {
			break
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

func (r *Runner) runOne(ctx context.Context, f types.RawFile, w io.Writer) Status {
	outName := BatchName(f.Name, r.Params.Filename(r.Tool))
	outPath := filepath.Join(outputDir(r.Output.Dir), outName)

	if !r.Output.Overwrite {
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", outName)
			return StatusSkipped
		}
	}
	if err := os.MkdirAll(outputDir(r.Output.Dir), 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", f.Name, err)
		return StatusFailed
	}

	out, err := r.Run(ctx, []types.RawFile{f}, outName)
	if err != nil {
		reason := err.Error()
		if out.Err != nil {
			reason = out.Err.Error()
		}
		fmt.Fprintf(w, "failed:  %s (%s)\n", f.Name, reason)
		return StatusFailed
	}
	fmt.Fprintf(w, "converted: %s -> %s\n", f.Name, out.Path)
	return StatusConverted
}

// BatchName derives a per-input output name so batch outputs do not
// collide: "report.pdf" with "converted.docx" gives "report-converted.docx".
func BatchName(input, suggested string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return stem + "-" + suggested
}

// paramsFor fills in the page count for tools that validate page ranges.
func (r *Runner) paramsFor(files []types.StagedFile) (params.Parameters, error) {
	p := r.Params
	if !r.Tool.HasParam("range") || p.TotalPages > 0 || len(files) == 0 {
		return p, nil
	}
	n, err := pdfinfo.PayloadPageCount(files[0])
	if err != nil {
		// The server still validates; an unknown count only disables the
		// upper bound check.
		r.Logger.Warn().Err(err).Str("file", files[0].DisplayName).Msg("page count unavailable")
		return p, nil
	}
	p.TotalPages = n
	return p, nil
}

func (r *Runner) applyOrder(in *intake.Intake) error {
	if len(r.Order) == 0 || !in.OrderSensitive() {
		return nil
	}
	files := in.Files()
	if len(r.Order) != len(files) {
		return fmt.Errorf("%w: got %d positions for %d inputs", ErrBadOrder, len(r.Order), len(files))
	}
	ids := make([]string, len(r.Order))
	for i, pos := range r.Order {
		if pos < 1 || pos > len(files) {
			return fmt.Errorf("%w: position %d out of range", ErrBadOrder, pos)
		}
		ids[i] = files[pos-1].ID
	}
	if err := in.Reorder(ids); err != nil {
		return fmt.Errorf("%w: %w", ErrBadOrder, err)
	}
	return nil
}

func (r *Runner) presenter() *present.Presenter {
	if r.Presenter == nil {
		r.Presenter = present.New(io.Discard)
	}
	return r.Presenter
}

func (r *Runner) begin(ctx context.Context, files []types.StagedFile) string {
	if r.Recorder == nil {
		return ""
	}
	inputs := make([]string, len(files))
	for i, f := range files {
		inputs[i] = f.DisplayName
	}
	id, err := r.Recorder.Begin(ctx, r.Tool.ID, inputs)
	if err != nil {
		r.Logger.Warn().Err(err).Msg("recording job")
		return ""
	}
	return id
}

func (r *Runner) finish(ctx context.Context, id string, state types.LifecycleState, failure *types.ClassifiedError, output string) {
	if r.Recorder == nil || id == "" {
		return
	}
	if err := r.Recorder.Finish(ctx, id, state, failure, output); err != nil {
		r.Logger.Warn().Err(err).Str("job", id).Msg("recording job result")
	}
}

func outputDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
