// Package events provides the synchronous publish/subscribe hub shared by
// keel models and collections. Handlers are keyed by event name and invoked
// in registration order; a separate wildcard channel receives every event
// together with its name.
//
// Dispatch is re-entrant: a handler may register, cancel, or trigger further
// events on the same emitter. Emitters perform no internal locking; all
// interaction with a single emitter must happen on one goroutine.
//
// Example usage:
//
//	var e events.Emitter
//	sub := e.On("change", func(args ...any) {
//	    fmt.Println("changed:", args[0])
//	})
//	e.Trigger("change", "title")
//	sub.Cancel()
package events

// Handler receives the arguments an event was triggered with.
type Handler func(args ...any)

// AllHandler receives every event on the emitter along with its name.
// This is the explicit form of a wildcard subscription: the event name is
// the first parameter rather than a magic event key.
type AllHandler func(event string, args ...any)

// Emitter is a synchronous event hub. The zero value is ready to use.
type Emitter struct {
	nextID   uint64
	bindings map[string][]*binding
	all      []*binding
}

// binding ties a handler to an event name. Wildcard bindings keep the
// handler in allFn and leave fn nil.
type binding struct {
	id      uint64
	event   string
	fn      Handler
	allFn   AllHandler
	once    bool
	fired   bool
	removed bool
}

// Subscription identifies a registered handler so it can be canceled later.
type Subscription struct {
	emitter *Emitter
	b       *binding
}

// Cancel removes the handler from the emitter. Canceling during dispatch of
// the same event prevents any further invocation of the handler, including
// later in the current dispatch. Cancel is safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil || s.b == nil || s.b.removed {
		return
	}
	s.b.removed = true
	s.emitter.compact(s.b)
}

// On registers a handler for the named event and returns its subscription.
func (e *Emitter) On(event string, fn Handler) *Subscription {
	return e.bind(&binding{event: event, fn: fn})
}

// Once registers a handler that is invoked at most once, then removed.
func (e *Emitter) Once(event string, fn Handler) *Subscription {
	return e.bind(&binding{event: event, fn: fn, once: true})
}

// OnAll registers a wildcard handler that receives every event with its name.
func (e *Emitter) OnAll(fn AllHandler) *Subscription {
	return e.bind(&binding{allFn: fn})
}

// Off removes every handler registered for the named event.
func (e *Emitter) Off(event string) {
	for _, b := range e.bindings[event] {
		b.removed = true
	}
	delete(e.bindings, event)
}

// OffAll removes every handler, named and wildcard alike.
func (e *Emitter) OffAll() {
	for _, bs := range e.bindings {
		for _, b := range bs {
			b.removed = true
		}
	}
	for _, b := range e.all {
		b.removed = true
	}
	e.bindings = nil
	e.all = nil
}

// Trigger invokes the handlers registered for the named event, then the
// wildcard handlers. The handler set is snapshotted before dispatch, so
// handlers registered during dispatch only see subsequent events.
func (e *Emitter) Trigger(event string, args ...any) {
	named := e.bindings[event]
	if len(named) > 0 {
		snapshot := make([]*binding, len(named))
		copy(snapshot, named)
		for _, b := range snapshot {
			e.call(b, event, args)
		}
	}

	if len(e.all) > 0 {
		snapshot := make([]*binding, len(e.all))
		copy(snapshot, e.all)
		for _, b := range snapshot {
			e.call(b, event, args)
		}
	}
}

// HasListeners reports whether any handler is registered for the named event
// or on the wildcard channel.
func (e *Emitter) HasListeners(event string) bool {
	return len(e.bindings[event]) > 0 || len(e.all) > 0
}

func (e *Emitter) bind(b *binding) *Subscription {
	e.nextID++
	b.id = e.nextID

	if b.allFn != nil {
		e.all = append(e.all, b)
	} else {
		if e.bindings == nil {
			e.bindings = make(map[string][]*binding)
		}
		e.bindings[b.event] = append(e.bindings[b.event], b)
	}

	return &Subscription{emitter: e, b: b}
}

// call invokes a single binding, honoring cancellation and once semantics.
func (e *Emitter) call(b *binding, event string, args []any) {
	if b.removed {
		return
	}
	if b.once {
		if b.fired {
			return
		}
		b.fired = true
		b.removed = true
		e.compact(b)
	}

	if b.allFn != nil {
		b.allFn(event, args...)
	} else {
		b.fn(args...)
	}
}

// compact drops a removed binding from its slice.
func (e *Emitter) compact(b *binding) {
	if b.allFn != nil {
		for i, cur := range e.all {
			if cur == b {
				e.all = append(e.all[:i], e.all[i+1:]...)
				return
			}
		}
		return
	}

	bs := e.bindings[b.event]
	for i, cur := range bs {
		if cur == b {
			bs = append(bs[:i], bs[i+1:]...)
			if len(bs) == 0 {
				delete(e.bindings, b.event)
			} else {
				e.bindings[b.event] = bs
			}
			return
		}
	}
}
