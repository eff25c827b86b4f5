// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build windows

package present

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/pdfbuddy/internal/artifact"
)

// writeArtifact writes h to a temp file next to path and renames it into
// place. Windows has no fsync-then-rename guarantee.
func (p *Presenter) writeArtifact(path string, h *artifact.Handle) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pdfbuddy-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := h.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
