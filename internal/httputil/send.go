// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across commands.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Kind tags the shape of an Outcome.
type Kind int

const (
	// KindOK is a 2xx response whose body was read completely.
	KindOK Kind = iota
	// KindStatus is a response with a non-2xx status.
	KindStatus
	// KindNoResponse is a request that was sent but not answered, or whose
	// response body could not be read.
	KindNoResponse
	// KindLocal is a failure before the request was dispatched.
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindStatus:
		return "status"
	case KindNoResponse:
		return "no-response"
	case KindLocal:
		return "local"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of one HTTP exchange. Exactly one of the shapes
// applies, selected by Kind: Body for KindOK, Status for KindStatus, Err
// for KindNoResponse and KindLocal.
type Outcome struct {
	Kind   Kind
	Status int
	Header http.Header
	Body   []byte
	Err    error
}

// Local wraps a failure that happened before dispatch.
func Local(err error) Outcome {
	return Outcome{Kind: KindLocal, Err: err}
}

// Send executes req once and reads the whole response body. It never
// retries. Non-2xx bodies are drained and discarded.
func Send(ctx context.Context, client *http.Client, req *http.Request) Outcome {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return Outcome{Kind: KindNoResponse, Err: fmt.Errorf("HTTP request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return Outcome{Kind: KindStatus, Status: resp.StatusCode, Header: resp.Header}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Kind: KindNoResponse, Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	return Outcome{Kind: KindOK, Status: resp.StatusCode, Header: resp.Header, Body: body}
}
