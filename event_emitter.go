// Package emitter is a synchronous, in-process event emitter, plus a websocket
// client publishing its connection lifecycle through it.
package emitter

import (
	"slices"
	"sync"
)

type (
	// Handler receives the payload of the event it was registered for.
	Handler[V any] func(data V)

	// WildcardHandler receives every emitted event along with its payload.
	WildcardHandler[K comparable, V any] func(event K, data V)

	// Listener is the registration token returned by On. Its pointer identity is
	// what Off matches against, so keep it around if the handler must be removed later.
	Listener[V any] struct {
		handler Handler[V]
	}

	// WildcardListener is the registration token returned by OnAny.
	WildcardListener[K comparable, V any] struct {
		handler WildcardHandler[K, V]
	}
)

// EventEmitter maps events (of type K) to ordered lists of handlers receiving
// payloads (of type V). A separate list of wildcard handlers observes every event.
// Handlers run synchronously on the goroutine calling Emit, in registration order.
type EventEmitter[K comparable, V any] struct {
	listeners map[K][]*Listener[V]
	wildcard  []*WildcardListener[K, V]
	policy    RemovePolicy
	logger    Logger
	lock      sync.RWMutex
}

// NewEventEmitter creates an empty EventEmitter and returns a pointer to it.
func NewEventEmitter[K comparable, V any](opts ...Option) *EventEmitter[K, V] {
	cfg := newConfig(opts)

	return &EventEmitter[K, V]{
		listeners: make(map[K][]*Listener[V]),
		policy:    cfg.policy,
		logger:    cfg.logger.WithField("component", "event_emitter"),
	}
}

// NewEventEmitterWith creates an EventEmitter seeded with the given handlers.
// Handlers of each event are registered in slice order. The seed map is not retained.
func NewEventEmitterWith[K comparable, V any](seed map[K][]Handler[V], opts ...Option) *EventEmitter[K, V] {
	e := NewEventEmitter[K, V](opts...)

	for event, handlers := range seed {
		for _, h := range handlers {
			e.On(event, h)
		}
	}

	return e
}

// On registers a new listener for the given event and returns its token.
// Registering the same function twice yields two listeners.
func (e *EventEmitter[K, V]) On(event K, handler Handler[V]) *Listener[V] {
	l := &Listener[V]{handler: handler}

	e.lock.Lock()
	e.listeners[event] = append(e.listeners[event], l)
	n := len(e.listeners[event])
	e.lock.Unlock()

	e.logger.Debugf("listener added to %v (%d registered)", event, n)

	return l
}

// OnAny registers a wildcard listener, invoked for every emitted event after
// the listeners of that event.
func (e *EventEmitter[K, V]) OnAny(handler WildcardHandler[K, V]) *WildcardListener[K, V] {
	l := &WildcardListener[K, V]{handler: handler}

	e.lock.Lock()
	e.wildcard = append(e.wildcard, l)
	n := len(e.wildcard)
	e.lock.Unlock()

	e.logger.Debugf("wildcard listener added (%d registered)", n)

	return l
}

// Off removes listeners from the given event. Without listeners, the event is
// dropped altogether. Otherwise the first occurrence of each listener is removed
// and the event is kept, even if no listener remains. Unknown events are ignored.
func (e *EventEmitter[K, V]) Off(event K, listeners ...*Listener[V]) {
	e.lock.Lock()
	defer e.lock.Unlock()

	current, found := e.listeners[event]
	if !found {
		return
	}

	if len(listeners) == 0 {
		delete(e.listeners, event)
		e.logger.Debugf("all listeners removed from %v", event)
		return
	}

	for _, l := range listeners {
		current = removeListener(current, l, e.policy)
	}

	e.listeners[event] = current
	e.logger.Debugf("listeners removed from %v (%d registered)", event, len(current))
}

// OffAny removes wildcard listeners. Without listeners, every wildcard listener is removed.
func (e *EventEmitter[K, V]) OffAny(listeners ...*WildcardListener[K, V]) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if len(listeners) == 0 {
		e.wildcard = nil
		e.logger.Debugf("all wildcard listeners removed")
		return
	}

	for _, l := range listeners {
		e.wildcard = removeListener(e.wildcard, l, e.policy)
	}

	e.logger.Debugf("wildcard listeners removed (%d registered)", len(e.wildcard))
}

// Emit triggers all listeners registered for the given event synchronously,
// then every wildcard listener. Each list is copied right before it is walked:
// the event's listeners before the first of them runs, the wildcard listeners
// once the event's listeners are done. Changes made by a handler therefore never
// alter the list being walked, but wildcard changes made by the event's listeners
// apply to this pass.
// A panicking handler aborts the pass and the panic reaches the caller.
func (e *EventEmitter[K, V]) Emit(event K, data V) {
	e.lock.RLock()
	listeners := append([]*Listener[V](nil), e.listeners[event]...)
	e.lock.RUnlock()

	for _, l := range listeners {
		l.handler(data)
	}

	e.lock.RLock()
	wildcard := append([]*WildcardListener[K, V](nil), e.wildcard...)
	e.lock.RUnlock()

	for _, l := range wildcard {
		l.handler(event, data)
	}
}

// Trigger emits the given event with the zero value of V as payload.
func (e *EventEmitter[K, V]) Trigger(event K) {
	var zero V
	e.Emit(event, zero)
}

// Listeners returns a copy of the registered listeners, keyed by event.
// Events whose listeners were removed one by one remain present with an empty list.
func (e *EventEmitter[K, V]) Listeners() map[K][]*Listener[V] {
	e.lock.RLock()
	defer e.lock.RUnlock()

	res := make(map[K][]*Listener[V], len(e.listeners))
	for event, listeners := range e.listeners {
		res[event] = append(make([]*Listener[V], 0, len(listeners)), listeners...)
	}

	return res
}

// WildcardListeners returns a copy of the registered wildcard listeners.
func (e *EventEmitter[K, V]) WildcardListeners() []*WildcardListener[K, V] {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return append([]*WildcardListener[K, V](nil), e.wildcard...)
}

// ListenerCount returns the number of listeners registered for the event.
func (e *EventEmitter[K, V]) ListenerCount(event K) int {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return len(e.listeners[event])
}

// Has reports whether the event is present, even with zero listeners left.
func (e *EventEmitter[K, V]) Has(event K) bool {
	e.lock.RLock()
	defer e.lock.RUnlock()

	_, found := e.listeners[event]
	return found
}

// EventNames returns the events currently present, in no particular order.
func (e *EventEmitter[K, V]) EventNames() []K {
	e.lock.RLock()
	defer e.lock.RUnlock()

	names := make([]K, 0, len(e.listeners))
	for event := range e.listeners {
		names = append(names, event)
	}

	return names
}

// Close removes all listeners, wildcard ones included, to prevent memory leaks.
func (e *EventEmitter[K, V]) Close() {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.listeners = make(map[K][]*Listener[V])
	e.wildcard = nil
}

func removeListener[T any](list []*T, target *T, policy RemovePolicy) []*T {
	idx := slices.Index(list, target)
	if idx < 0 {
		if policy != RemoveFirstOnMiss || len(list) == 0 {
			return list
		}
		idx = 0
	}

	return slices.Delete(list, idx, idx+1)
}
