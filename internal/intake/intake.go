// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intake assembles the set of staged input files for a tool: it
// assigns identities, applies append/replace selection semantics, filters
// by accepted type, and supports reordering for order-sensitive tools.
package intake

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/pdfbuddy/pkg/types"
)

// Mode selects how a new selection combines with the staged set.
type Mode int

const (
	// ModeReplace discards the staged set in favour of the new selection.
	ModeReplace Mode = iota
	// ModeAppend concatenates the new selection after the staged set.
	ModeAppend
)

func (m Mode) String() string {
	if m == ModeAppend {
		return "append"
	}
	return "replace"
}

var (
	// ErrNotOrderSensitive is returned by Reorder on intakes that do not
	// allow reordering.
	ErrNotOrderSensitive = errors.New("tool does not support reordering")
	// ErrReorderMismatch is returned when the proposed order is not a
	// permutation of the staged ids.
	ErrReorderMismatch = errors.New("reorder ids do not match staged files")
)

// Listener is notified with a copy of the staged set after every mutation.
type Listener func(files []types.StagedFile)

// Options configures an Intake.
type Options struct {
	// Accept lists accepted extensions (".pdf"). Empty accepts anything.
	Accept []string
	// Multiple allows more than one staged file.
	Multiple bool
	// OrderSensitive enables Reorder.
	OrderSensitive bool
	// Now overrides the clock used for ids. Tests use it.
	Now func() time.Time
}

// ForTool derives intake options from a tool descriptor.
func ForTool(d types.ToolDescriptor) Options {
	return Options{
		Accept:         d.Accept,
		Multiple:       d.MultiInput,
		OrderSensitive: d.OrderSensitive,
	}
}

// Intake holds the staged file set for one tool instance.
type Intake struct {
	opts Options

	// notifyMu serializes listener calls.
	notifyMu sync.Mutex

	mu        sync.Mutex
	files     []types.StagedFile
	ordinal   int
	listeners []Listener
	pending   [][]types.StagedFile
}

// New creates an empty intake.
func New(opts Options) *Intake {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Intake{opts: opts}
}

// Subscribe registers l for change notifications.
func (in *Intake) Subscribe(l Listener) {
	in.mu.Lock()
	in.listeners = append(in.listeners, l)
	in.mu.Unlock()
}

// Files returns a copy of the staged set in order.
func (in *Intake) Files() []types.StagedFile {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.snapshot()
}

// Len returns the number of staged files.
func (in *Intake) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.files)
}

// OrderSensitive reports whether Reorder is allowed.
func (in *Intake) OrderSensitive() bool {
	return in.opts.OrderSensitive
}

// Select stages raw files according to mode and returns the files that
// were rejected because their type is not accepted. An empty selection, or
// one where every file is rejected, leaves the staged set untouched.
func (in *Intake) Select(raw []types.RawFile, mode Mode) (rejected []types.RawFile) {
	accepted := make([]types.RawFile, 0, len(raw))
	for _, r := range raw {
		if in.accepts(r.Name) {
			accepted = append(accepted, r)
		} else {
			rejected = append(rejected, r)
		}
	}
	if len(accepted) == 0 {
		return rejected
	}

	in.mu.Lock()
	defer in.notify()
	defer in.mu.Unlock()

	now := in.opts.Now()
	staged := make([]types.StagedFile, 0, len(accepted))
	for _, r := range accepted {
		staged = append(staged, types.StagedFile{
			ID:          fmt.Sprintf("%s-%d-%d", r.Name, now.UnixMilli(), in.ordinal),
			DisplayName: r.Name,
			Size:        r.Size,
			AddedAt:     now,
			Payload:     r.Payload,
		})
		in.ordinal++
	}

	switch {
	case !in.opts.Multiple:
		in.files = staged[:1]
	case mode == ModeAppend:
		in.files = append(in.files, staged...)
	default:
		in.files = staged
	}
	in.queueLocked()
	return rejected
}

// Reorder replaces the staged order with ids, which must be a permutation
// of the current ids. Any mismatch is rejected and the set is unchanged.
func (in *Intake) Reorder(ids []string) error {
	if !in.opts.OrderSensitive {
		return ErrNotOrderSensitive
	}

	in.mu.Lock()
	defer in.notify()
	defer in.mu.Unlock()

	if len(ids) != len(in.files) {
		return ErrReorderMismatch
	}
	byID := make(map[string]types.StagedFile, len(in.files))
	for _, f := range in.files {
		byID[f.ID] = f
	}
	reordered := make([]types.StagedFile, 0, len(ids))
	for _, id := range ids {
		f, ok := byID[id]
		if !ok {
			return ErrReorderMismatch
		}
		delete(byID, id)
		reordered = append(reordered, f)
	}
	in.files = reordered
	in.queueLocked()
	return nil
}

// Clear empties the staged set.
func (in *Intake) Clear() {
	in.mu.Lock()
	defer in.notify()
	defer in.mu.Unlock()
	if len(in.files) == 0 {
		return
	}
	in.files = nil
	in.queueLocked()
}

func (in *Intake) accepts(name string) bool {
	if len(in.opts.Accept) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range in.opts.Accept {
		if strings.ToLower(a) == ext {
			return true
		}
	}
	return false
}

func (in *Intake) snapshot() []types.StagedFile {
	out := make([]types.StagedFile, len(in.files))
	copy(out, in.files)
	return out
}

// queueLocked records the current set for delivery by notify.
func (in *Intake) queueLocked() {
	if len(in.listeners) == 0 {
		return
	}
	in.pending = append(in.pending, in.snapshot())
}

// notify delivers queued snapshots in mutation order with the state mutex
// released. Listeners may read the intake but must not mutate it.
func (in *Intake) notify() {
	in.notifyMu.Lock()
	defer in.notifyMu.Unlock()
	for {
		in.mu.Lock()
		if len(in.pending) == 0 {
			in.mu.Unlock()
			return
		}
		snap := in.pending[0]
		in.pending = in.pending[1:]
		listeners := in.listeners
		in.mu.Unlock()

		for _, l := range listeners {
			l(snap)
		}
	}
}

// FromPaths builds raw files from local paths. Missing or unreadable paths
// are reported as an error naming the first failure.
func FromPaths(paths []string) ([]types.RawFile, error) {
	raw := make([]types.RawFile, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading input %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("input %s is a directory", p)
		}
		raw = append(raw, types.RawFile{
			Name:    filepath.Base(p),
			Size:    info.Size(),
			Payload: types.PathPayload(p),
		})
	}
	return raw, nil
}
