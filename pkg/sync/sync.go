// Package sync provides the persistence adapters used by keel models and
// collections. A Syncer translates one of the five CRUD methods into a
// request against a backend: the HTTP syncer talks to a remote JSON API,
// the file syncer persists targets as YAML documents on local disk.
//
// Models and collections call their configured syncer and emit the
// request/sync/error events themselves; syncers only move bytes.
package sync

import (
	"context"
	"encoding/json"
)

// Method identifies the persistence operation being performed.
type Method string

// The five sync methods.
const (
	MethodCreate Method = "create"
	MethodRead   Method = "read"
	MethodUpdate Method = "update"
	MethodPatch  Method = "patch"
	MethodDelete Method = "delete"
)

// Target is anything that can be synced: a model or a collection.
type Target interface {
	// URL resolves the endpoint for this target. Implementations return
	// errors.ErrNoURL when no endpoint is configured.
	URL() (string, error)

	// SyncData returns the serializable state sent on create, update,
	// and patch.
	SyncData() any
}

// Options configures a single sync call.
type Options struct {
	// URL overrides the target's resolved URL when non-empty.
	URL string

	// Data overrides the target's SyncData body when non-nil.
	Data any

	// Headers are added to the request (HTTP syncer only).
	Headers map[string]string
}

// Option configures sync options.
type Option func(*Options)

// WithURL overrides the target's resolved URL.
func WithURL(url string) Option {
	return func(o *Options) {
		o.URL = url
	}
}

// WithData overrides the request body.
func WithData(data any) Option {
	return func(o *Options) {
		o.Data = data
	}
}

// WithHeader adds a request header.
func WithHeader(key, value string) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// NewOptions creates Options from a list of Option funcs.
func NewOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Syncer performs a persistence operation for a target and returns the raw
// JSON response body, which may be empty for operations without a response.
type Syncer interface {
	Sync(ctx context.Context, method Method, target Target, opts *Options) (json.RawMessage, error)
}

// Default is the syncer used by models and collections that were not
// configured with one, mirroring a global sync function.
var Default Syncer = NewHTTP()
