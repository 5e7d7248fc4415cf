package collection

import (
	"context"
	"encoding/json"

	"github.com/keeldata/keel/pkg/errors"
	"github.com/keeldata/keel/pkg/model"
	"github.com/keeldata/keel/pkg/sync"
)

// Parser converts a raw sync response into attribute items. The default
// accepts a top-level JSON array of objects; empty and null responses yield
// no items.
type Parser func(raw json.RawMessage) ([]model.Attrs, error)

// ParseList is the default collection parser.
func ParseList(raw json.RawMessage) ([]model.Attrs, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []model.Attrs
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.WrapParse("json", "collection", err)
	}
	return items, nil
}

// fetchOptions configures a Fetch call.
type fetchOptions struct {
	reset    bool
	syncOpts []sync.Option
	setOpts  []SetOption
}

// FetchOption configures a Fetch call.
type FetchOption func(*fetchOptions)

// FetchWithReset replaces membership wholesale (one "reset" event) instead
// of reconciling incrementally.
func FetchWithReset() FetchOption {
	return func(o *fetchOptions) {
		o.reset = true
	}
}

// FetchWithSyncOptions passes options through to the syncer.
func FetchWithSyncOptions(opts ...sync.Option) FetchOption {
	return func(o *fetchOptions) {
		o.syncOpts = append(o.syncOpts, opts...)
	}
}

// FetchWithSetOptions passes options through to the reconciliation applying
// the response.
func FetchWithSetOptions(opts ...SetOption) FetchOption {
	return func(o *fetchOptions) {
		o.setOpts = append(o.setOpts, opts...)
	}
}

// Syncer returns the persistence adapter this collection syncs through: its
// own, or the package default.
func (c *Collection) Syncer() sync.Syncer {
	if c.syncer != nil {
		return c.syncer
	}
	return sync.Default
}

// parse converts a raw sync response through the configured parser.
func (c *Collection) parse(raw json.RawMessage) ([]model.Attrs, error) {
	if c.parser != nil {
		return c.parser(raw)
	}
	return ParseList(raw)
}

// Fetch reads the collection's state from its syncer and reconciles it in,
// firing "request" before the call and "sync" on success. Failures fire
// "error" and are returned. Overlapping fetches are not serialized; callers
// own ordering policy.
func (c *Collection) Fetch(ctx context.Context, opts ...FetchOption) error {
	options := &fetchOptions{}
	for _, opt := range opts {
		opt(options)
	}

	c.Trigger("request", c)

	raw, err := c.Syncer().Sync(ctx, sync.MethodRead, c, sync.NewOptions(options.syncOpts...))
	if err != nil {
		c.Trigger("error", c, err)
		return err
	}

	items, err := c.parse(raw)
	if err != nil {
		c.Trigger("error", c, err)
		return err
	}

	if options.reset {
		c.ResetData(items, options.setOpts...)
	} else {
		c.SetData(items, options.setOpts...)
	}

	c.Trigger("sync", c)
	return nil
}

// Create builds a model from attrs through the collection's factory, adds
// it, and saves it through the syncer. The model is a member as soon as
// Create returns, even if the save failed; the error reports the failure.
// Factory rejections fire "invalid" and return the error with no model.
func (c *Collection) Create(ctx context.Context, attrs model.Attrs, opts ...sync.Option) (*model.Model, error) {
	m, err := c.factory(attrs)
	if err != nil || m == nil {
		c.Trigger("invalid", c, attrs, err)
		if err == nil {
			err = errors.ErrInvalidInput
		}
		return nil, err
	}

	c.AddOne(m)

	if err := m.Save(ctx, nil, opts...); err != nil {
		return m, err
	}
	return m, nil
}
