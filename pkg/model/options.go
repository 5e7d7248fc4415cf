package model

import "github.com/keeldata/keel/pkg/sync"

// DefaultIDAttribute is the attribute key models resolve their server id
// from unless configured otherwise.
const DefaultIDAttribute = "id"

// Option configures a model at construction.
type Option func(*Model)

// WithIDAttribute sets the attribute key holding the server identifier.
func WithIDAttribute(key string) Option {
	return func(m *Model) {
		if key != "" {
			m.idAttribute = key
		}
	}
}

// WithValidator sets the validator enforced on Save and on validating Sets.
func WithValidator(v Validator) Option {
	return func(m *Model) {
		m.validator = v
	}
}

// WithURLRoot sets the endpoint base used when the model has no owner.
func WithURLRoot(root string) Option {
	return func(m *Model) {
		m.urlRoot = root
	}
}

// WithSyncer sets the persistence adapter for this model.
func WithSyncer(s sync.Syncer) Option {
	return func(m *Model) {
		m.syncer = s
	}
}

// WithDefaults fills in attributes that the construction attrs left unset.
func WithDefaults(defaults Attrs) Option {
	return func(m *Model) {
		for key, value := range defaults {
			if _, ok := m.attributes[key]; !ok {
				m.attributes[key] = value
			}
		}
	}
}

// setOptions configures a single Set call.
type setOptions struct {
	silent   bool
	unset    bool
	validate bool
}

// SetOption configures a Set call.
type SetOption func(*setOptions)

// Silent suppresses the change events a Set would normally fire.
func Silent() SetOption {
	return func(o *setOptions) {
		o.silent = true
	}
}

// WithValidation runs the model's validator before applying the change.
func WithValidation() SetOption {
	return func(o *setOptions) {
		o.validate = true
	}
}

// setUnset marks the call as removing the given keys instead of setting them.
func setUnset() SetOption {
	return func(o *setOptions) {
		o.unset = true
	}
}

func newSetOptions(opts ...SetOption) *setOptions {
	options := &setOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
