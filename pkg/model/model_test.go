package model_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keeldata/keel/pkg/errors"
	"github.com/keeldata/keel/pkg/model"
)

func TestNew(t *testing.T) {
	m := model.New(model.Attrs{"title": "Moby Dick", "id": 1})

	assert.Equal(t, "Moby Dick", m.Get("title"))
	assert.Equal(t, "1", m.ID())
	assert.False(t, m.IsNew())
	assert.Equal(t, "id", m.IDAttribute())
}

func TestCIDsAreUniqueAndStable(t *testing.T) {
	a := model.New(nil)
	b := model.New(nil)

	assert.NotEmpty(t, a.CID())
	assert.Equal(t, byte('c'), a.CID()[0])
	assert.NotEqual(t, a.CID(), b.CID())
	assert.Equal(t, a.CID(), a.CID())
}

func TestNewCopiesAttrs(t *testing.T) {
	attrs := model.Attrs{"title": "original"}
	m := model.New(attrs)

	attrs["title"] = "mutated"
	assert.Equal(t, "original", m.Get("title"))
}

func TestIDNormalization(t *testing.T) {
	// JSON-decoded numeric ids must key identically to their integer form.
	m := model.New(model.Attrs{"id": float64(7)})
	assert.Equal(t, "7", m.ID())

	m = model.New(model.Attrs{"id": 7})
	assert.Equal(t, "7", m.ID())

	m = model.New(model.Attrs{"id": "abc"})
	assert.Equal(t, "abc", m.ID())

	m = model.New(nil)
	assert.Equal(t, "", m.ID())
	assert.True(t, m.IsNew())
}

func TestWithIDAttribute(t *testing.T) {
	m := model.New(model.Attrs{"slug": "moby-dick", "id": 9},
		model.WithIDAttribute("slug"))

	assert.Equal(t, "moby-dick", m.ID())
}

func TestWithDefaults(t *testing.T) {
	m := model.New(model.Attrs{"title": "set"},
		model.WithDefaults(model.Attrs{"title": "default", "pages": 100}))

	assert.Equal(t, "set", m.Get("title"))
	assert.Equal(t, 100, m.Get("pages"))
}

func TestGetHas(t *testing.T) {
	m := model.New(model.Attrs{"title": "x", "empty": nil})

	assert.Equal(t, "x", m.Get("title"))
	assert.Nil(t, m.Get("missing"))
	assert.True(t, m.Has("title"))
	assert.False(t, m.Has("empty"))
	assert.False(t, m.Has("missing"))
}

func TestSetFiresChangeEvents(t *testing.T) {
	m := model.New(model.Attrs{"title": "old"})

	var events []string
	m.OnAll(func(event string, args ...any) {
		events = append(events, event)
	})

	err := m.Set(model.Attrs{"title": "new"})
	require.NoError(t, err)

	assert.Equal(t, []string{"change:title", "change"}, events)
	assert.Equal(t, "new", m.Get("title"))
}

func TestSetUnchangedValueFiresNothing(t *testing.T) {
	m := model.New(model.Attrs{"title": "same"})

	calls := 0
	m.OnAll(func(event string, args ...any) { calls++ })

	require.NoError(t, m.Set(model.Attrs{"title": "same"}))

	assert.Equal(t, 0, calls)
	assert.False(t, m.HasChanged())
}

func TestSetSilent(t *testing.T) {
	m := model.New(model.Attrs{"title": "old"})

	calls := 0
	m.OnAll(func(event string, args ...any) { calls++ })

	require.NoError(t, m.Set(model.Attrs{"title": "new"}, model.Silent()))

	assert.Equal(t, 0, calls)
	assert.Equal(t, "new", m.Get("title"))
	assert.True(t, m.HasChanged("title"))
}

func TestChangeEventArgs(t *testing.T) {
	m := model.New(nil)

	m.On("change:title", func(args ...any) {
		require.Len(t, args, 2)
		assert.Same(t, m, args[0])
		assert.Equal(t, "new", args[1])
	})
	m.On("change", func(args ...any) {
		require.Len(t, args, 1)
		assert.Same(t, m, args[0])
	})

	require.NoError(t, m.Set(model.Attrs{"title": "new"}))
}

func TestNestedSetFoldsIntoOuterChange(t *testing.T) {
	m := model.New(model.Attrs{"a": 1, "b": 1})

	changeEvents := 0
	m.On("change:a", func(args ...any) {
		_ = m.Set(model.Attrs{"b": 2})
	})
	m.On("change", func(args ...any) { changeEvents++ })

	require.NoError(t, m.Set(model.Attrs{"a": 2}))

	assert.Equal(t, 1, changeEvents)
	assert.Equal(t, 2, m.Get("a"))
	assert.Equal(t, 2, m.Get("b"))
	assert.True(t, m.HasChanged("a"))
	assert.True(t, m.HasChanged("b"))
}

func TestSetDuringChangeDispatchRefiresChange(t *testing.T) {
	m := model.New(model.Attrs{"title": "clean"})

	aggregate := 0
	var fieldEvents []string
	m.OnAll(func(event string, args ...any) {
		if event == "change" {
			aggregate++
			if aggregate == 1 {
				_ = m.Set(model.Attrs{"status": "dirty"})
			}
			return
		}
		fieldEvents = append(fieldEvents, event)
	})

	require.NoError(t, m.Set(model.Attrs{"title": "touched"}))

	// The change handler's own Set re-fires the aggregate event once the
	// first dispatch finishes.
	assert.Equal(t, 2, aggregate)
	assert.Equal(t, []string{"change:title", "change:status"}, fieldEvents)
	assert.Equal(t, "dirty", m.Get("status"))
	assert.True(t, m.HasChanged("status"))
}

func TestChangeTracking(t *testing.T) {
	m := model.New(model.Attrs{"title": "first", "pages": 100})

	require.NoError(t, m.Set(model.Attrs{"title": "second"}))

	assert.True(t, m.HasChanged())
	assert.True(t, m.HasChanged("title"))
	assert.False(t, m.HasChanged("pages"))
	assert.Equal(t, model.Attrs{"title": "second"}, m.Changed())
	assert.Equal(t, "first", m.Previous("title"))
	assert.Equal(t, model.Attrs{"title": "first", "pages": 100}, m.PreviousAttributes())

	// The next change cycle resets the tracking window.
	require.NoError(t, m.Set(model.Attrs{"pages": 200}))
	assert.False(t, m.HasChanged("title"))
	assert.True(t, m.HasChanged("pages"))
	assert.Equal(t, "second", m.Previous("title"))
}

func TestUnset(t *testing.T) {
	m := model.New(model.Attrs{"title": "x", "pages": 1})

	var events []string
	m.OnAll(func(event string, args ...any) {
		events = append(events, event)
	})

	m.Unset("title")

	assert.False(t, m.Has("title"))
	assert.NotContains(t, m.Attributes(), "title")
	assert.Equal(t, []string{"change:title", "change"}, events)
	assert.True(t, m.HasChanged("title"))

	// Unsetting an absent attribute is a silent no-op.
	events = nil
	m.Unset("missing")
	assert.Empty(t, events)
}

func TestClear(t *testing.T) {
	m := model.New(model.Attrs{"a": 1, "b": 2})

	m.Clear()

	assert.Empty(t, m.Attributes())
	assert.True(t, m.HasChanged("a"))
	assert.True(t, m.HasChanged("b"))
}

func TestValidation(t *testing.T) {
	validator := func(attrs model.Attrs) error {
		if attrs["title"] == "" || attrs["title"] == nil {
			return errors.NewValidationError("title", attrs["title"], "title is required")
		}
		return nil
	}
	m := model.New(model.Attrs{"title": "valid"}, model.WithValidator(validator))

	invalidFired := false
	m.On("invalid", func(args ...any) { invalidFired = true })

	// Plain Set bypasses validation.
	require.NoError(t, m.Set(model.Attrs{"title": ""}))
	assert.Equal(t, "", m.Get("title"))

	require.NoError(t, m.Set(model.Attrs{"title": "ok"}))

	// A validating Set rejects and leaves attributes untouched.
	err := m.Set(model.Attrs{"title": ""}, model.WithValidation())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, "ok", m.Get("title"))
	assert.True(t, invalidFired)
	assert.Equal(t, err, m.ValidationError())

	// A passing Set clears the recorded failure.
	require.NoError(t, m.Set(model.Attrs{"title": "fine"}, model.WithValidation()))
	assert.NoError(t, m.ValidationError())
}

func TestValidate(t *testing.T) {
	m := model.New(nil)
	assert.NoError(t, m.Validate())

	m = model.New(nil, model.WithValidator(func(attrs model.Attrs) error {
		return fmt.Errorf("always invalid")
	}))
	assert.Error(t, m.Validate())
	assert.Error(t, m.ValidationError())
}

func TestToJSONReturnsCopy(t *testing.T) {
	m := model.New(model.Attrs{"title": "x"})

	out := m.ToJSON()
	out["title"] = "mutated"

	assert.Equal(t, "x", m.Get("title"))
}

func TestClone(t *testing.T) {
	m := model.New(model.Attrs{"title": "x", "id": 1},
		model.WithURLRoot("https://api.example.com/books"))

	clone := m.Clone()

	assert.NotEqual(t, m.CID(), clone.CID())
	assert.Equal(t, m.Attributes(), clone.Attributes())
	assert.Nil(t, clone.Owner())

	cloneURL, err := clone.URL()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/books/1", cloneURL)
}

func TestURL(t *testing.T) {
	t.Run("no url configured", func(t *testing.T) {
		m := model.New(nil)
		_, err := m.URL()
		assert.ErrorIs(t, err, errors.ErrNoURL)
	})

	t.Run("new model uses the bare root", func(t *testing.T) {
		m := model.New(nil, model.WithURLRoot("https://api.example.com/books"))
		url, err := m.URL()
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/books", url)
	})

	t.Run("persisted model appends its id", func(t *testing.T) {
		m := model.New(model.Attrs{"id": 7},
			model.WithURLRoot("https://api.example.com/books"))
		url, err := m.URL()
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/books/7", url)
	})

	t.Run("ids are path escaped", func(t *testing.T) {
		m := model.New(model.Attrs{"id": "a b/c"},
			model.WithURLRoot("https://api.example.com/books"))
		url, err := m.URL()
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/books/a%20b%2Fc", url)
	})

	t.Run("trailing slash is not doubled", func(t *testing.T) {
		m := model.New(model.Attrs{"id": 7},
			model.WithURLRoot("https://api.example.com/books/"))
		url, err := m.URL()
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/books/7", url)
	})

	t.Run("owner url is the fallback", func(t *testing.T) {
		m := model.New(model.Attrs{"id": 7})
		m.SetOwner(stubOwner("https://api.example.com/books"))
		url, err := m.URL()
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/books/7", url)
	})
}

// stubOwner is a fixed-URL owner.
type stubOwner string

func (o stubOwner) URL() (string, error) { return string(o), nil }

func TestIDString(t *testing.T) {
	assert.Equal(t, "", model.IDString(nil))
	assert.Equal(t, "7", model.IDString(7))
	assert.Equal(t, "7", model.IDString(float64(7)))
	assert.Equal(t, "7.5", model.IDString(7.5))
	assert.Equal(t, "7", model.IDString(int64(7)))
	assert.Equal(t, "abc", model.IDString("abc"))
	assert.Equal(t, "", model.IDString(struct{}{}))
}
