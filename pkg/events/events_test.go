package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keeldata/keel/pkg/events"
)

func TestOnAndTrigger(t *testing.T) {
	var e events.Emitter

	var got []any
	e.On("change", func(args ...any) {
		got = append(got, args...)
	})

	e.Trigger("change", "title", 42)

	require.Len(t, got, 2)
	assert.Equal(t, "title", got[0])
	assert.Equal(t, 42, got[1])
}

func TestTriggerInvokesInRegistrationOrder(t *testing.T) {
	var e events.Emitter

	var order []int
	e.On("ping", func(args ...any) { order = append(order, 1) })
	e.On("ping", func(args ...any) { order = append(order, 2) })
	e.On("ping", func(args ...any) { order = append(order, 3) })

	e.Trigger("ping")

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestTriggerOnlyMatchingEvent(t *testing.T) {
	var e events.Emitter

	calls := 0
	e.On("add", func(args ...any) { calls++ })

	e.Trigger("remove")
	assert.Equal(t, 0, calls)

	e.Trigger("add")
	assert.Equal(t, 1, calls)
}

func TestOnce(t *testing.T) {
	var e events.Emitter

	calls := 0
	e.Once("sync", func(args ...any) { calls++ })

	e.Trigger("sync")
	e.Trigger("sync")
	e.Trigger("sync")

	assert.Equal(t, 1, calls)
	assert.False(t, e.HasListeners("sync"))
}

func TestOnAllReceivesEveryEventWithName(t *testing.T) {
	var e events.Emitter

	var names []string
	e.OnAll(func(event string, args ...any) {
		names = append(names, event)
	})

	e.Trigger("add", 1)
	e.Trigger("remove")
	e.Trigger("change")

	assert.Equal(t, []string{"add", "remove", "change"}, names)
}

func TestNamedHandlersRunBeforeWildcard(t *testing.T) {
	var e events.Emitter

	var order []string
	e.OnAll(func(event string, args ...any) {
		order = append(order, "all")
	})
	e.On("add", func(args ...any) {
		order = append(order, "named")
	})

	e.Trigger("add")

	assert.Equal(t, []string{"named", "all"}, order)
}

func TestSubscriptionCancel(t *testing.T) {
	var e events.Emitter

	calls := 0
	sub := e.On("change", func(args ...any) { calls++ })

	e.Trigger("change")
	sub.Cancel()
	e.Trigger("change")

	assert.Equal(t, 1, calls)

	// Cancel is idempotent.
	sub.Cancel()
	assert.False(t, e.HasListeners("change"))
}

func TestCancelDuringDispatchStopsLaterInvocation(t *testing.T) {
	var e events.Emitter

	var secondCalls int
	var second *events.Subscription
	e.On("tick", func(args ...any) {
		second.Cancel()
	})
	second = e.On("tick", func(args ...any) { secondCalls++ })

	e.Trigger("tick")

	// The first handler canceled the second before the snapshot reached it.
	assert.Equal(t, 0, secondCalls)
}

func TestHandlerRegisteredDuringDispatchSeesOnlyLaterEvents(t *testing.T) {
	var e events.Emitter

	lateCalls := 0
	e.Once("tick", func(args ...any) {
		e.On("tick", func(args ...any) { lateCalls++ })
	})

	e.Trigger("tick")
	assert.Equal(t, 0, lateCalls)

	e.Trigger("tick")
	assert.Equal(t, 1, lateCalls)
}

func TestReentrantTrigger(t *testing.T) {
	var e events.Emitter

	var order []string
	e.On("outer", func(args ...any) {
		order = append(order, "outer")
		e.Trigger("inner")
	})
	e.On("inner", func(args ...any) {
		order = append(order, "inner")
	})

	e.Trigger("outer")

	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestOff(t *testing.T) {
	var e events.Emitter

	calls := 0
	e.On("add", func(args ...any) { calls++ })
	e.On("add", func(args ...any) { calls++ })
	e.On("remove", func(args ...any) { calls++ })

	e.Off("add")
	e.Trigger("add")
	e.Trigger("remove")

	assert.Equal(t, 1, calls)
}

func TestOffAll(t *testing.T) {
	var e events.Emitter

	calls := 0
	e.On("add", func(args ...any) { calls++ })
	e.OnAll(func(event string, args ...any) { calls++ })

	e.OffAll()
	e.Trigger("add")

	assert.Equal(t, 0, calls)
	assert.False(t, e.HasListeners("add"))
}

func TestHasListeners(t *testing.T) {
	var e events.Emitter

	assert.False(t, e.HasListeners("change"))

	sub := e.On("change", func(args ...any) {})
	assert.True(t, e.HasListeners("change"))
	assert.False(t, e.HasListeners("add"))

	sub.Cancel()
	assert.False(t, e.HasListeners("change"))

	// A wildcard handler listens to everything.
	e.OnAll(func(event string, args ...any) {})
	assert.True(t, e.HasListeners("change"))
	assert.True(t, e.HasListeners("anything"))
}

func TestZeroValueEmitterIsUsable(t *testing.T) {
	var e events.Emitter

	// Triggering with no handlers must not panic.
	e.Trigger("change", 1, 2, 3)
	e.Off("change")
	e.OffAll()
}
