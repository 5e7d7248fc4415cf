package model

import (
	"context"
	"encoding/json"

	"github.com/keeldata/keel/pkg/errors"
	"github.com/keeldata/keel/pkg/sync"
)

// Parse converts a raw sync response into attributes. The default accepts a
// JSON object; empty and null responses yield nil attributes.
func Parse(raw json.RawMessage) (Attrs, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var attrs Attrs
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, errors.WrapParse("json", "model", err)
	}
	return attrs, nil
}

// Syncer returns the persistence adapter this model syncs through: its own,
// or the package default.
func (m *Model) Syncer() sync.Syncer {
	if m.syncer != nil {
		return m.syncer
	}
	return sync.Default
}

// SyncData implements sync.Target.
func (m *Model) SyncData() any {
	return m.ToJSON()
}

// Fetch reads the model's state from its syncer and applies it, firing
// "request" before the call and "sync" on success. Failures fire "error"
// and are returned.
func (m *Model) Fetch(ctx context.Context, opts ...sync.Option) error {
	return m.runSync(ctx, sync.MethodRead, nil, opts)
}

// Save validates and persists the model, with create when it is new and
// update otherwise. A non-nil attrs is applied (with validation) before the
// request; server response attributes are folded back in.
func (m *Model) Save(ctx context.Context, attrs Attrs, opts ...sync.Option) error {
	if err := m.prepareSave(attrs); err != nil {
		return err
	}

	method := sync.MethodUpdate
	if m.IsNew() {
		method = sync.MethodCreate
	}
	return m.runSync(ctx, method, nil, opts)
}

// Patch persists only the given attributes, applying them first.
func (m *Model) Patch(ctx context.Context, attrs Attrs, opts ...sync.Option) error {
	if err := m.prepareSave(attrs); err != nil {
		return err
	}

	if m.IsNew() {
		return m.runSync(ctx, sync.MethodCreate, nil, opts)
	}
	return m.runSync(ctx, sync.MethodPatch, attrs.Copy(), opts)
}

// Destroy fires "destroy" so any owning collection drops the model, then
// deletes it server-side unless it was never persisted.
func (m *Model) Destroy(ctx context.Context, opts ...sync.Option) error {
	m.Trigger("destroy", m)

	if m.IsNew() {
		return nil
	}
	return m.runSync(ctx, sync.MethodDelete, nil, opts)
}

// prepareSave applies attrs with validation, or validates the current state
// when attrs is nil.
func (m *Model) prepareSave(attrs Attrs) error {
	if attrs != nil {
		return m.Set(attrs, WithValidation())
	}
	return m.Validate()
}

// runSync performs one sync round-trip and folds the response back in.
func (m *Model) runSync(ctx context.Context, method sync.Method, body any, opts []sync.Option) error {
	options := sync.NewOptions(opts...)
	if body != nil && options.Data == nil {
		options.Data = body
	}

	m.Trigger("request", m)

	raw, err := m.Syncer().Sync(ctx, method, m, options)
	if err != nil {
		m.Trigger("error", m, err)
		return err
	}

	if method != sync.MethodDelete {
		attrs, err := Parse(raw)
		if err != nil {
			m.Trigger("error", m, err)
			return err
		}
		if attrs != nil {
			if err := m.Set(attrs); err != nil {
				return err
			}
		}
	}

	m.Trigger("sync", m)
	return nil
}
