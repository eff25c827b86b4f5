// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intake

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfbuddy/pkg/types"
)

func raw(names ...string) []types.RawFile {
	out := make([]types.RawFile, len(names))
	for i, n := range names {
		out[i] = types.RawFile{Name: n, Size: 3, Payload: types.BytesPayload("pdf")}
	}
	return out
}

func names(files []types.StagedFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.DisplayName
	}
	return out
}

func fixedClock() func() time.Time {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time { return ts }
}

func mergeIntake() *Intake {
	return New(Options{Accept: []string{".pdf"}, Multiple: true, OrderSensitive: true, Now: fixedClock()})
}

func TestSelect_AppendAndReplace(t *testing.T) {
	in := mergeIntake()
	in.Select(raw("A.pdf", "B.pdf"), ModeReplace)

	in.Select(raw("C.pdf"), ModeAppend)
	files := in.Files()
	assert.Equal(t, []string{"A.pdf", "B.pdf", "C.pdf"}, names(files))

	ids := map[string]bool{}
	for _, f := range files {
		ids[f.ID] = true
	}
	assert.Len(t, ids, 3, "ids must be distinct")

	in.Select(raw("C.pdf"), ModeReplace)
	assert.Equal(t, []string{"C.pdf"}, names(in.Files()))
}

func TestSelect_SameNameSameInstantGetsDistinctIDs(t *testing.T) {
	in := mergeIntake()
	in.Select(raw("A.pdf"), ModeAppend)
	in.Select(raw("A.pdf"), ModeAppend)

	files := in.Files()
	require.Len(t, files, 2)
	assert.NotEqual(t, files[0].ID, files[1].ID)
	assert.Equal(t, "A.pdf-1767323045000-0", files[0].ID)
	assert.Equal(t, "A.pdf-1767323045000-1", files[1].ID)
}

func TestSelect_EmptyIsNoOp(t *testing.T) {
	in := mergeIntake()
	in.Select(raw("A.pdf"), ModeReplace)

	var notified int
	in.Subscribe(func([]types.StagedFile) { notified++ })

	in.Select(nil, ModeReplace)
	in.Select([]types.RawFile{}, ModeAppend)

	assert.Equal(t, []string{"A.pdf"}, names(in.Files()))
	assert.Zero(t, notified)
}

func TestSelect_RejectsUnacceptedTypes(t *testing.T) {
	in := mergeIntake()
	in.Select(raw("A.pdf"), ModeReplace)

	rejected := in.Select(raw("notes.txt", "B.PDF"), ModeAppend)
	require.Len(t, rejected, 1)
	assert.Equal(t, "notes.txt", rejected[0].Name)
	assert.Equal(t, []string{"A.pdf", "B.PDF"}, names(in.Files()))

	rejected = in.Select(raw("only.docx"), ModeReplace)
	assert.Len(t, rejected, 1)
	assert.Equal(t, []string{"A.pdf", "B.PDF"}, names(in.Files()), "fully rejected selection is a no-op")
}

func TestSelect_SingleInputKeepsFirst(t *testing.T) {
	in := New(Options{Accept: []string{".pdf"}})
	in.Select(raw("A.pdf", "B.pdf"), ModeReplace)
	assert.Equal(t, []string{"A.pdf"}, names(in.Files()))

	in.Select(raw("C.pdf"), ModeAppend)
	assert.Equal(t, []string{"C.pdf"}, names(in.Files()))
}

func TestReorder(t *testing.T) {
	in := mergeIntake()
	in.Select(raw("A.pdf", "B.pdf", "C.pdf"), ModeReplace)
	files := in.Files()

	var last []types.StagedFile
	in.Subscribe(func(f []types.StagedFile) { last = f })

	require.NoError(t, in.Reorder([]string{files[2].ID, files[0].ID, files[1].ID}))
	assert.Equal(t, []string{"C.pdf", "A.pdf", "B.pdf"}, names(in.Files()))
	assert.Equal(t, []string{"C.pdf", "A.pdf", "B.pdf"}, names(last))
}

func TestReorder_RejectsMismatch(t *testing.T) {
	in := mergeIntake()
	in.Select(raw("A.pdf", "B.pdf"), ModeReplace)
	files := in.Files()

	tests := []struct {
		name string
		ids  []string
	}{
		{"missing id", []string{files[0].ID}},
		{"extra id", []string{files[0].ID, files[1].ID, "x"}},
		{"unknown id", []string{files[0].ID, "x"}},
		{"duplicated id", []string{files[0].ID, files[0].ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := in.Reorder(tt.ids)
			assert.ErrorIs(t, err, ErrReorderMismatch)
			assert.Equal(t, []string{"A.pdf", "B.pdf"}, names(in.Files()))
		})
	}
}

func TestReorder_NotOrderSensitive(t *testing.T) {
	in := New(Options{Multiple: true})
	in.Select(raw("A.pdf", "B.pdf"), ModeReplace)
	files := in.Files()
	assert.ErrorIs(t, in.Reorder([]string{files[1].ID, files[0].ID}), ErrNotOrderSensitive)
}

func TestSubscribe_NotifiedOnEveryMutation(t *testing.T) {
	in := mergeIntake()
	var sizes []int
	in.Subscribe(func(f []types.StagedFile) { sizes = append(sizes, len(f)) })

	in.Select(raw("A.pdf"), ModeReplace)
	in.Select(raw("B.pdf"), ModeAppend)
	in.Clear()
	in.Clear()

	assert.Equal(t, []int{1, 2, 0}, sizes)
}

func TestSelect_ReleasesLock(t *testing.T) {
	in := mergeIntake()
	in.Select(raw("A.pdf"), ModeReplace)

	done := make(chan int)
	go func() {
		in.Select(raw("B.pdf"), ModeAppend)
		done <- in.Len()
	}()
	select {
	case n := <-done:
		assert.Equal(t, 2, n)
	case <-time.After(2 * time.Second):
		t.Fatal("intake blocked after Select")
	}
}

func TestSubscribe_ListenerCanReadIntake(t *testing.T) {
	in := mergeIntake()
	var seen []int
	in.Subscribe(func(f []types.StagedFile) {
		seen = append(seen, in.Len())
	})

	in.Select(raw("A.pdf", "B.pdf"), ModeReplace)
	files := in.Files()
	require.NoError(t, in.Reorder([]string{files[1].ID, files[0].ID}))
	in.Clear()

	assert.Equal(t, []int{2, 2, 0}, seen)
}

func TestSubscribe_ConcurrentMutationsKeepOrder(t *testing.T) {
	in := mergeIntake()
	var mu sync.Mutex
	var sizes []int
	in.Subscribe(func(f []types.StagedFile) {
		mu.Lock()
		sizes = append(sizes, len(f))
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in.Select(raw("A.pdf"), ModeAppend)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sizes, 20)
	for i, n := range sizes {
		assert.Equal(t, i+1, n)
	}
}

func TestFromPaths(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4"), 0o644))

	got, err := FromPaths([]string{p})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "doc.pdf", got[0].Name)
	assert.EqualValues(t, 8, got[0].Size)

	_, err = FromPaths([]string{filepath.Join(dir, "missing.pdf")})
	assert.Error(t, err)

	_, err = FromPaths([]string{dir})
	assert.Error(t, err)
}

func TestForTool(t *testing.T) {
	opts := ForTool(types.ToolDescriptor{MultiInput: true, OrderSensitive: true, Accept: []string{".pdf"}})
	assert.True(t, opts.Multiple)
	assert.True(t, opts.OrderSensitive)
	assert.Equal(t, []string{".pdf"}, opts.Accept)
}
