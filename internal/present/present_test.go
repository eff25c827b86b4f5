// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package present

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfbuddy/internal/artifact"
	"github.com/pdiddy/pdfbuddy/internal/lifecycle"
	"github.com/pdiddy/pdfbuddy/internal/progress"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

var mergeTool = types.ToolDescriptor{ID: types.ToolMerge, Action: "Merge", Filename: "merged.pdf"}

func submitting(phase progress.Phase, pct int) lifecycle.Event {
	return lifecycle.Event{Tool: mergeTool, State: types.StateSubmitting, Progress: progress.Snapshot{Phase: phase, Percent: pct}}
}

func TestObserve_PlainOutputPrintsPhaseChanges(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithTerminal(false))

	p.Observe(submitting(progress.PhaseUploading, 0))
	p.Observe(submitting(progress.PhaseUploading, 40))
	p.Observe(submitting(progress.PhaseUploading, 100))
	p.Observe(submitting(progress.PhaseProcessing, 0))
	p.Observe(submitting(progress.PhaseProcessing, 2))
	p.Observe(lifecycle.Event{Tool: mergeTool, State: types.StateSucceeded})

	want := "Uploading...\nProcessing...\nDone\n" +
		"All done! Your requested process (merge) is finished successfully.\n"
	assert.Equal(t, want, buf.String())
}

func TestObserve_TerminalRedrawsInPlace(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithTerminal(true))

	p.Observe(submitting(progress.PhaseUploading, 50))
	p.Observe(submitting(progress.PhaseProcessing, 0))
	p.Observe(lifecycle.Event{Tool: mergeTool, State: types.StateSucceeded})

	out := buf.String()
	assert.Contains(t, out, "\r\x1b[KUploading... [##########..........]  50%")
	assert.Contains(t, out, "\r\x1b[KProcessing... |")
	assert.True(t, strings.HasSuffix(out, "|\nDone\nAll done! Your requested process (merge) is finished successfully.\n"), out)
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		name string
		err  *types.ClassifiedError
		want string
	}{
		{"status", &types.ClassifiedError{Message: "file too large", Code: 413}, "Error 413\nfile too large\n"},
		{"network", &types.ClassifiedError{Message: "network error, check your connection", Code: 0}, "Error 0\nnetwork error, check your connection\n"},
		{"local", &types.ClassifiedError{Message: "failed to process, please try again", Code: types.CodeLocal}, "Error\nfailed to process, please try again\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(&buf).Observe(lifecycle.Event{State: types.StateFailed, Err: tt.err})
			assert.Equal(t, tt.want+"Run the command again to retry.\n", buf.String())
		})
	}
}

func TestDownload_RepeatsWithSameHandle(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	p := New(&buf)

	h := artifact.New([]byte("%PDF-1.4 merged"), "application/pdf", "merged.pdf")
	defer h.Release()

	first, err := p.Download(h, dir, false)
	require.NoError(t, err)
	second, err := p.Download(h, dir, false)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "merged.pdf"), first)
	assert.Equal(t, filepath.Join(dir, "merged (1).pdf"), second)
	for _, path := range []string{first, second} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 merged", string(data))
	}

	again, err := p.Download(h, dir, true)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Contains(t, buf.String(), "Saved "+first)
}

func TestDownload_Errors(t *testing.T) {
	p := New(&bytes.Buffer{})

	_, err := p.Download(nil, t.TempDir(), false)
	assert.ErrorIs(t, err, ErrNoArtifact)

	h := artifact.New([]byte("x"), "application/pdf", "x.pdf")
	h.Release()
	_, err = p.Download(h, t.TempDir(), false)
	assert.ErrorIs(t, err, artifact.ErrReleased)
}

func TestDownload_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	h := artifact.New([]byte("PK"), "application/zip", "split-pages.zip")
	defer h.Release()

	path, err := New(&bytes.Buffer{}).Download(h, dir, false)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
