// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !windows

package present

import (
	"fmt"

	"github.com/google/renameio/v2"

	"github.com/pdiddy/pdfbuddy/internal/artifact"
)

// writeArtifact writes h to path atomically: the file appears complete or
// not at all.
func (p *Presenter) writeArtifact(path string, h *artifact.Handle) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			p.logger.Debug().Err(err).Str("path", path).Msg("cleanup pending file")
		}
	}()

	if _, err := h.WriteTo(pending); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}
