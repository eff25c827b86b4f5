// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package present renders lifecycle events for a terminal and saves
// artifacts to disk.
package present

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/pdiddy/pdfbuddy/internal/artifact"
	"github.com/pdiddy/pdfbuddy/internal/lifecycle"
	"github.com/pdiddy/pdfbuddy/internal/progress"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

// ErrNoArtifact is returned by Download when there is nothing to save.
var ErrNoArtifact = errors.New("no file available for download")

const barWidth = 20

var spinner = []string{"|", "/", "-", "\\"}

// Option configures a Presenter.
type Option func(*Presenter)

// WithTerminal forces in-place redrawing on or off.
func WithTerminal(tty bool) Option {
	return func(p *Presenter) { p.tty = tty }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Presenter) { p.logger = l }
}

// Presenter writes user-facing output. On a terminal the progress line is
// redrawn in place; otherwise only phase changes are printed.
type Presenter struct {
	out    io.Writer
	tty    bool
	logger zerolog.Logger

	mu        sync.Mutex
	phase     progress.Phase
	drawn     bool // a progress line without trailing newline is on screen
	spinIndex int
}

// New creates a presenter writing to out. Terminal detection uses the
// file descriptor when out is an *os.File.
func New(out io.Writer, opts ...Option) *Presenter {
	p := &Presenter{out: out, logger: zerolog.Nop()}
	if f, ok := out.(*os.File); ok {
		p.tty = term.IsTerminal(int(f.Fd()))
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Observe renders a lifecycle event. It satisfies lifecycle.Observer.
func (p *Presenter) Observe(ev lifecycle.Event) {
	switch ev.State {
	case types.StateSubmitting:
		p.RenderProgress(ev.Progress)
	case types.StateSucceeded:
		p.RenderDone(ev.Tool)
	case types.StateFailed:
		p.RenderError(ev.Err)
	default:
		p.mu.Lock()
		p.phase = ""
		p.endLineLocked()
		p.mu.Unlock()
	}
}

// RenderProgress shows the cosmetic progress cue.
func (p *Presenter) RenderProgress(s progress.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	changed := s.Phase != p.phase
	p.phase = s.Phase

	if !p.tty {
		if changed {
			fmt.Fprintln(p.out, phaseLabel(s.Phase))
		}
		return
	}

	var line string
	switch s.Phase {
	case progress.PhaseUploading:
		filled := s.Percent * barWidth / 100
		line = fmt.Sprintf("%s [%s%s] %3d%%", phaseLabel(s.Phase),
			strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), s.Percent)
	case progress.PhaseProcessing:
		line = fmt.Sprintf("%s %s", phaseLabel(s.Phase), spinner[p.spinIndex%len(spinner)])
		p.spinIndex++
	default:
		return
	}
	fmt.Fprintf(p.out, "\r\x1b[K%s", line)
	p.drawn = true
}

// RenderDone shows the completion banner for the tool's action.
func (p *Presenter) RenderDone(tool types.ToolDescriptor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endLineLocked()
	p.phase = progress.PhaseDone

	action := tool.Action
	if action == "" {
		action = "Merge"
	}
	fmt.Fprintln(p.out, "Done")
	fmt.Fprintf(p.out, "All done! Your requested process (%s) is finished successfully.\n", strings.ToLower(action))
}

// RenderError shows a classified error and how to retry.
func (p *Presenter) RenderError(e *types.ClassifiedError) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endLineLocked()
	p.phase = ""

	if e == nil {
		e = &types.ClassifiedError{Message: "Something went wrong. Please try again later.", Code: types.CodeLocal}
	}
	heading := "Error"
	if e.Code != types.CodeLocal {
		heading = fmt.Sprintf("Error %d", e.Code)
	}
	fmt.Fprintln(p.out, heading)
	fmt.Fprintln(p.out, e.Message)
	fmt.Fprintln(p.out, "Run the command again to retry.")
}

// Download saves h into dir under its suggested filename and returns the
// written path. Every call writes a fresh copy of the same handle; without
// overwrite an existing file is kept and the copy gets a numbered name.
func (p *Presenter) Download(h *artifact.Handle, dir string, overwrite bool) (string, error) {
	if h == nil {
		return "", ErrNoArtifact
	}
	return p.DownloadAs(h, dir, h.Filename(), overwrite)
}

// DownloadAs is Download with an explicit filename in place of the
// suggested one. An empty name falls back to the suggested filename.
func (p *Presenter) DownloadAs(h *artifact.Handle, dir, name string, overwrite bool) (string, error) {
	if h == nil {
		return "", ErrNoArtifact
	}
	if h.Released() {
		return "", artifact.ErrReleased
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	if name == "" {
		name = h.Filename()
	}
	if name == "" {
		name = "output.pdf"
	}
	path := filepath.Join(dir, name)
	if !overwrite {
		path = nextFree(path)
	}
	if err := p.Save(h, path); err != nil {
		return "", err
	}
	return path, nil
}

// Save writes h to exactly path, replacing any existing file.
func (p *Presenter) Save(h *artifact.Handle, path string) error {
	if h == nil {
		return ErrNoArtifact
	}
	if err := p.writeArtifact(path, h); err != nil {
		return err
	}

	p.logger.Info().Str("path", path).Int("bytes", h.Size()).Msg("artifact saved")
	p.mu.Lock()
	fmt.Fprintf(p.out, "Saved %s\n", path)
	p.mu.Unlock()
	return nil
}

// nextFree returns path, or "name (n).ext" for the first n that is free.
func nextFree(path string) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

func (p *Presenter) endLineLocked() {
	if p.drawn {
		fmt.Fprintln(p.out)
		p.drawn = false
	}
}

func phaseLabel(ph progress.Phase) string {
	if ph == progress.PhaseUploading {
		return "Uploading..."
	}
	return "Processing..."
}
