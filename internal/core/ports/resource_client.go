package ports

import (
	"context"
	"io"
	"net/url"

	"github.com/pls-platform/dashboard/internal/core/domain"
)

// RequestOptions tunes a single backend call.
type RequestOptions struct {
	// Token overrides the bearer token taken from the session in ctx.
	Token string
	// Multipart sends the body as multipart/form-data; it must be a MultipartBody.
	Multipart bool
	Query     url.Values
}

// MultipartFile is one file part of a multipart request.
type MultipartFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// MultipartBody is the body of a multipart request.
type MultipartBody struct {
	Fields map[string]string
	Files  []MultipartFile
}

// ResourceClient issues calls against the backend envelope contract.
// It returns an Envelope for any HTTP response and wraps domain.ErrNetwork
// when no response arrived. It never retries.
type ResourceClient interface {
	Request(ctx context.Context, method, path string, body any, opts *RequestOptions) (domain.Envelope, error)
}
