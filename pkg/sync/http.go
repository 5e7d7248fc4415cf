package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/keeldata/keel/pkg/errors"
	"github.com/keeldata/keel/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response body is kept for messages.
const maxErrorBody = 512

// methodVerbs maps sync methods to HTTP verbs.
var methodVerbs = map[Method]string{
	MethodCreate: http.MethodPost,
	MethodRead:   http.MethodGet,
	MethodUpdate: http.MethodPut,
	MethodPatch:  http.MethodPatch,
	MethodDelete: http.MethodDelete,
}

// HTTPSyncer persists targets against a remote JSON API.
type HTTPSyncer struct {
	client *http.Client
	header http.Header
}

// HTTPOption configures an HTTPSyncer.
type HTTPOption func(*HTTPSyncer)

// WithClient sets the underlying HTTP client.
func WithClient(client *http.Client) HTTPOption {
	return func(s *HTTPSyncer) {
		if client != nil {
			s.client = client
		}
	}
}

// WithDefaultHeader adds a header sent with every request.
func WithDefaultHeader(key, value string) HTTPOption {
	return func(s *HTTPSyncer) {
		s.header.Set(key, value)
	}
}

// NewHTTP creates an HTTP syncer with optional configuration.
func NewHTTP(opts ...HTTPOption) *HTTPSyncer {
	s := &HTTPSyncer{
		client: &http.Client{Timeout: DefaultHTTPTimeout},
		header: make(http.Header),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Sync implements the Syncer interface against a remote HTTP API.
func (s *HTTPSyncer) Sync(ctx context.Context, method Method, target Target, opts *Options) (json.RawMessage, error) {
	if opts == nil {
		opts = &Options{}
	}

	url, err := resolveURL(target, opts)
	if err != nil {
		return nil, err
	}

	verb, ok := methodVerbs[method]
	if !ok {
		return nil, errors.NewSyncError(string(method), url, 0, errors.ErrInvalidInput)
	}

	var body io.Reader
	if verb == http.MethodPost || verb == http.MethodPut || verb == http.MethodPatch {
		data := opts.Data
		if data == nil && target != nil {
			data = target.SyncData()
		}
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, errors.WrapParse("json", "request body", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, verb, url, body)
	if err != nil {
		return nil, errors.NewSyncError(string(method), url, 0, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range s.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	log := logging.FromContext(ctx)
	log.Debug().
		Str("method", string(method)).
		Str("verb", verb).
		Str("url", url).
		Msg("sync request")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.NewSyncError(string(method), url, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewSyncError(string(method), url, resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		snippet := payload
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		log.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("sync request failed")
		return nil, &errors.SyncError{
			Method:     string(method),
			URL:        url,
			StatusCode: resp.StatusCode,
			Message:    string(snippet),
		}
	}

	return payload, nil
}

// resolveURL picks the explicit option URL over the target's own.
func resolveURL(target Target, opts *Options) (string, error) {
	if opts.URL != "" {
		return opts.URL, nil
	}
	if target == nil {
		return "", errors.ErrNoURL
	}
	return target.URL()
}
