// Package backend is the thin client for the upstream PLS REST backend.
//
// Every backend endpoint answers with the {success, data, error} envelope.
// The client attaches the session's bearer token, encodes JSON or multipart
// bodies, and hands back the parsed envelope for any HTTP response. Transport
// failures wrap domain.ErrNetwork. Retrying is left to callers.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pls-platform/dashboard/internal/api/metrics"
	"github.com/pls-platform/dashboard/internal/core/domain"
	"github.com/pls-platform/dashboard/internal/core/ports"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 4 << 20

	// CodeBadResponse marks an HTTP response whose body was not an envelope.
	CodeBadResponse = domain.CodeBadResponse
)

var errMultipartBody = errors.New("multipart request body must be a ports.MultipartBody")

// Config captures the settings for reaching the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport overrides http.DefaultTransport; used by tests.
	Transport http.RoundTripper
}

// Client implements ports.ResourceClient over net/http.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

var _ ports.ResourceClient = (*Client)(nil)

// NewClient validates the base URL and returns a ready client.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("backend base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("backend base url: %q must be an absolute http(s) URL", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout, Transport: cfg.Transport},
		log:  log,
	}, nil
}

// Request performs one call. path is relative to the base URL and may carry
// a query string; opts may be nil.
func (c *Client) Request(ctx context.Context, method, path string, body any, opts *ports.RequestOptions) (domain.Envelope, error) {
	if opts == nil {
		opts = &ports.RequestOptions{}
	}

	target, err := c.resolve(path, opts.Query)
	if err != nil {
		return domain.Envelope{}, err
	}

	payload, contentType, err := encodeBody(body, opts.Multipart)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%s %s: %w", method, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), payload)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%s %s: build request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := bearerToken(ctx, opts); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(method, "error").Inc()
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend unreachable")
		return domain.Envelope{}, fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	metrics.BackendRequestsTotal.WithLabelValues(method, statusClass(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("%s %s: read response: %w: %w", method, path, domain.ErrNetwork, err)
	}

	env := decodeEnvelope(raw, resp.StatusCode)
	if !env.Success {
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("error", env.Message()).
			Msg("backend returned failure envelope")
	}
	return env, nil
}

func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend path %q: %w", path, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("backend path %q must be relative", path)
	}

	target := c.base.ResolveReference(ref)
	if len(query) > 0 {
		q := target.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		target.RawQuery = q.Encode()
	}
	return target, nil
}

func bearerToken(ctx context.Context, opts *ports.RequestOptions) string {
	if opts.Token != "" {
		return opts.Token
	}
	if s, ok := domain.SessionFromContext(ctx); ok {
		return s.AccessToken
	}
	return ""
}

func encodeBody(body any, asMultipart bool) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}

	if !asMultipart {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode json body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}

	var mb ports.MultipartBody
	switch v := body.(type) {
	case ports.MultipartBody:
		mb = v
	case *ports.MultipartBody:
		if v == nil {
			return nil, "", errMultipartBody
		}
		mb = *v
	default:
		return nil, "", errMultipartBody
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range mb.Fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("encode multipart field %q: %w", name, err)
		}
	}
	for _, f := range mb.Files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("encode multipart file %q: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("encode multipart file %q: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encode multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// wireEnvelope distinguishes a missing success flag from false.
type wireEnvelope struct {
	Success *bool                 `json:"success"`
	Data    json.RawMessage       `json:"data"`
	Error   *domain.EnvelopeError `json:"error"`
}

// decodeEnvelope never fails: bodies that are not envelopes become a failed
// envelope with CodeBadResponse, keeping the HTTP status.
func decodeEnvelope(raw []byte, status int) domain.Envelope {
	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil || w.Success == nil {
		return domain.Envelope{
			Success:    false,
			Error:      &domain.EnvelopeError{Code: CodeBadResponse, Message: http.StatusText(status)},
			StatusCode: status,
		}
	}
	return domain.Envelope{
		Success:    *w.Success,
		Data:       w.Data,
		Error:      w.Error,
		StatusCode: status,
	}
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
