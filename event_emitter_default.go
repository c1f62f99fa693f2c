package emitter

var defaultEmitter = NewEventEmitter[string, any]()

// Default returns the process-wide emitter used by the package level functions.
func Default() *EventEmitter[string, any] {
	return defaultEmitter
}

// On registers a listener on the default emitter.
func On(event string, handler Handler[any]) *Listener[any] {
	return defaultEmitter.On(event, handler)
}

// OnAny registers a wildcard listener on the default emitter.
func OnAny(handler WildcardHandler[string, any]) *WildcardListener[string, any] {
	return defaultEmitter.OnAny(handler)
}

// Off removes listeners from the default emitter.
func Off(event string, listeners ...*Listener[any]) {
	defaultEmitter.Off(event, listeners...)
}

// OffAny removes wildcard listeners from the default emitter.
func OffAny(listeners ...*WildcardListener[string, any]) {
	defaultEmitter.OffAny(listeners...)
}

// Emit dispatches the event on the default emitter.
func Emit(event string, data any) {
	defaultEmitter.Emit(event, data)
}
