package events

import (
	"sync"
)

type callbackListener[T any] struct {
	id       uint64
	callback func(T)
}

// CallbackEvent is a synchronous pub/sub event. Listeners are called on the
// notifying goroutine in registration order.
type CallbackEvent[T any] struct {
	mu                    sync.RWMutex
	listeners             []callbackListener[T]
	nextID                uint64
	sendLastEventOnListen bool
	lastEvent             T
	hasNotified           bool
}

// NewCallbackEvent creates a new CallbackEvent.
// If sendLastEventOnListen is true, new listeners are immediately called with
// the most recent value once Notify has happened at least once.
func NewCallbackEvent[T any](sendLastEventOnListen bool) *CallbackEvent[T] {
	return &CallbackEvent[T]{
		sendLastEventOnListen: sendLastEventOnListen,
	}
}

// Listen registers callback and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("callback cannot be nil")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners = append(e.listeners, callbackListener[T]{id: id, callback: callback})
	replay := e.sendLastEventOnListen && e.hasNotified
	last := e.lastEvent
	e.mu.Unlock()

	// outside the lock so the callback may register or notify
	if replay {
		callback(last)
	}

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every listener with value, in registration order
func (e *CallbackEvent[T]) Notify(value T) {
	e.mu.Lock()
	if e.sendLastEventOnListen {
		e.lastEvent = value
		e.hasNotified = true
	}
	listeners := make([]callbackListener[T], len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		l.callback(value)
	}
}

// ListenerCount returns the number of registered listeners
func (e *CallbackEvent[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}
