// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package invoke sends one conversion request to the remote API and turns
// the reply into either an artifact or a classified error.
package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pdfbuddy/internal/artifact"
	"github.com/pdiddy/pdfbuddy/internal/httputil"
	"github.com/pdiddy/pdfbuddy/internal/params"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

var (
	// ErrNoFiles is a local failure: the request carries no input.
	ErrNoFiles = errors.New("no input files")
	// ErrNoBaseURL is a local failure: the API base URL is not configured.
	ErrNoBaseURL = errors.New("API base URL is not configured")
)

// Request is one unit of work for the remote API.
type Request struct {
	Tool   types.ToolDescriptor
	Files  []types.StagedFile
	Params params.Parameters
}

// Result is the outcome of Invoke. On success Artifact is set and Err is
// nil; otherwise Err is set and Artifact is nil.
type Result struct {
	Kind     httputil.Kind
	Artifact *artifact.Handle
	Err      *types.ClassifiedError

	// Cause is the underlying transport or local error, for logging.
	Cause error
}

// OK reports whether the result carries an artifact.
func (r Result) OK() bool {
	return r.Kind == httputil.KindOK
}

// Invoker is anything that can run a conversion request. The lifecycle
// controller depends on this rather than on *Client so tests can fake it.
type Invoker interface {
	Invoke(ctx context.Context, req Request) Result
}

// Client calls the conversion API over HTTP.
type Client struct {
	cfg    types.HTTPConfig
	http   *http.Client
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a client for the API described by cfg.
func New(cfg types.HTTPConfig, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Invoke builds the multipart request, sends it once, and classifies the
// outcome. It never retries.
func (c *Client) Invoke(ctx context.Context, req Request) Result {
	log := c.logger.With().Str("tool", string(req.Tool.ID)).Int("files", len(req.Files)).Logger()

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("building request")
		return resultFrom(httputil.Local(err), req)
	}

	log.Debug().Str("url", httpReq.URL.String()).Msg("submitting")
	out := httputil.Send(ctx, c.http, httpReq)
	res := resultFrom(out, req)

	switch out.Kind {
	case httputil.KindOK:
		log.Info().Int("bytes", len(out.Body)).Msg("conversion succeeded")
	case httputil.KindStatus:
		log.Warn().Int("status", out.Status).Msg("conversion rejected")
	default:
		log.Warn().Err(out.Err).Stringer("kind", out.Kind).Msg("conversion failed")
	}
	return res
}

func resultFrom(out httputil.Outcome, req Request) Result {
	if out.Kind == httputil.KindOK {
		mime := req.Tool.TargetMIME
		if mime == "" {
			mime = out.Header.Get("Content-Type")
		}
		return Result{
			Kind:     out.Kind,
			Artifact: artifact.New(out.Body, mime, req.Params.Filename(req.Tool)),
		}
	}
	return Result{Kind: out.Kind, Err: Classify(out), Cause: out.Err}
}

// Endpoint resolves the tool's endpoint against the base URL. The base is
// treated as a directory even without a trailing slash.
func Endpoint(baseURL, endpoint string) (string, error) {
	if strings.TrimSpace(baseURL) == "" {
		return "", ErrNoBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	if !base.IsAbs() {
		return "", fmt.Errorf("base URL %q is not absolute", baseURL)
	}
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	if len(req.Files) == 0 {
		return nil, ErrNoFiles
	}
	target, err := Endpoint(c.cfg.BaseURL, req.Tool.Endpoint)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeMultipart(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	if req.Tool.TargetMIME != "" {
		httpReq.Header.Set("Accept", req.Tool.TargetMIME)
	}
	if c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.APIToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}
	return httpReq, nil
}

// encodeMultipart writes the files and parameter fields. Multi-input tools
// attach every file under the repeated field in staged order; single-input
// tools attach only the first.
func encodeMultipart(req Request) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	files := req.Files
	if !req.Tool.MultiInput {
		files = files[:1]
	}
	field := req.Tool.FieldName()
	for _, f := range files {
		if err := attach(mw, field, f); err != nil {
			return nil, "", err
		}
	}

	for _, p := range req.Params.Fields(req.Tool) {
		if err := mw.WriteField(p.Name, p.Value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", p.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func attach(mw *multipart.Writer, field string, f types.StagedFile) error {
	if f.Payload == nil {
		return fmt.Errorf("file %s has no content", f.DisplayName)
	}
	rc, err := f.Payload.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.DisplayName, err)
	}
	defer rc.Close()

	part, err := mw.CreateFormFile(field, f.DisplayName)
	if err != nil {
		return fmt.Errorf("creating form file %s: %w", f.DisplayName, err)
	}
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("reading %s: %w", f.DisplayName, err)
	}
	return nil
}
