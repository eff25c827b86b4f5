// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfinfo reads document facts needed before submission, currently
// the page count used to validate split and extract selections.
package pdfinfo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/pdfbuddy/pkg/types"
)

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (n int, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading PDF %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	return r.NumPage(), nil
}

// PayloadPageCount returns the page count of a staged file's payload. It
// reads the payload into memory since the parser needs random access.
func PayloadPageCount(file types.StagedFile) (n int, err error) {
	if p, ok := file.Payload.(types.PathPayload); ok {
		return PageCount(string(p))
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading PDF %s: %v", file.DisplayName, r)
		}
	}()

	rc, err := file.Payload.Open()
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", file.DisplayName, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", file.DisplayName, err)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing PDF %s: %w", file.DisplayName, err)
	}
	return r.NumPage(), nil
}
