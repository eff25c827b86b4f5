// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 result"))
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodPost, ts.URL, nil)
	require.NoError(t, err)

	out := Send(context.Background(), ts.Client(), req)
	require.Equal(t, KindOK, out.Kind)
	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, "%PDF-1.4 result", string(out.Body))
	assert.Equal(t, "application/pdf", out.Header.Get("Content-Type"))
	assert.NoError(t, out.Err)
}

func TestSend_StatusIsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodPost, ts.URL, nil)
	require.NoError(t, err)

	out := Send(context.Background(), ts.Client(), req)
	assert.Equal(t, KindStatus, out.Kind)
	assert.Equal(t, http.StatusTooManyRequests, out.Status)
	assert.Nil(t, out.Body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSend_NoResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	req, err := http.NewRequest(http.MethodPost, url, nil)
	require.NoError(t, err)

	out := Send(context.Background(), &http.Client{Timeout: time.Second}, req)
	assert.Equal(t, KindNoResponse, out.Kind)
	assert.Zero(t, out.Status)
	assert.Error(t, out.Err)
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	req, err := http.NewRequest(http.MethodPost, ts.URL, nil)
	require.NoError(t, err)

	client := ts.Client()
	client.Timeout = 50 * time.Millisecond
	out := Send(context.Background(), client, req)
	assert.Equal(t, KindNoResponse, out.Kind)
}

func TestSend_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodPost, ts.URL, nil)
	require.NoError(t, err)

	out := Send(ctx, ts.Client(), req)
	assert.Equal(t, KindNoResponse, out.Kind)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
}

func TestLocal(t *testing.T) {
	cause := errors.New("no files")
	out := Local(cause)
	assert.Equal(t, KindLocal, out.Kind)
	assert.ErrorIs(t, out.Err, cause)
	assert.Equal(t, "local", out.Kind.String())
}
