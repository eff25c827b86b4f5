// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_ReadThenRelease(t *testing.T) {
	before := Live()
	h := New([]byte("%PDF-merged"), "application/pdf", "merged.pdf")
	assert.Equal(t, before+1, Live())

	assert.Equal(t, "application/pdf", h.MIME())
	assert.Equal(t, "merged.pdf", h.Filename())
	assert.Equal(t, 11, h.Size())

	r, err := h.Reader()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-merged", string(data))

	var buf bytes.Buffer
	n, err := h.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)

	h.Release()
	h.Release()
	assert.True(t, h.Released())
	assert.Equal(t, before, Live())
	assert.Equal(t, 11, h.Size())

	_, err = h.Reader()
	assert.ErrorIs(t, err, ErrReleased)
	_, err = h.WriteTo(&buf)
	assert.ErrorIs(t, err, ErrReleased)
}
