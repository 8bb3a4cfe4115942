package events

import (
	"sync"
)

// ChannelEvent is a pub/sub event that delivers values to channels.
// Delivery never blocks: when a listener's buffer is full the oldest buffered
// value is dropped so the listener always ends up holding the latest one.
type ChannelEvent[T any] struct {
	mu                    sync.RWMutex
	channels              map[uint64]chan T
	nextID                uint64
	sendLastEventOnListen bool
	lastEvent             T
	hasNotified           bool
}

// NewChannelEvent creates a new ChannelEvent.
// If sendLastEventOnListen is true, new listeners immediately receive the
// most recent value once Notify has happened at least once.
func NewChannelEvent[T any](sendLastEventOnListen bool) *ChannelEvent[T] {
	return &ChannelEvent[T]{
		channels:              make(map[uint64]chan T),
		sendLastEventOnListen: sendLastEventOnListen,
	}
}

// Listen registers ch and returns a function that removes it.
// ch must be buffered for latest-value delivery to work.
func (e *ChannelEvent[T]) Listen(ch chan T) func() {
	if ch == nil {
		panic("channel cannot be nil")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.channels[id] = ch
	replay := e.sendLastEventOnListen && e.hasNotified
	last := e.lastEvent
	e.mu.Unlock()

	if replay {
		offerLatest(ch, last)
	}

	return func() {
		e.mu.Lock()
		delete(e.channels, id)
		e.mu.Unlock()
	}
}

// Notify delivers value to every registered channel without blocking
func (e *ChannelEvent[T]) Notify(value T) {
	e.mu.Lock()
	if e.sendLastEventOnListen {
		e.lastEvent = value
		e.hasNotified = true
	}
	channels := make([]chan T, 0, len(e.channels))
	for _, ch := range e.channels {
		channels = append(channels, ch)
	}
	e.mu.Unlock()

	for _, ch := range channels {
		offerLatest(ch, value)
	}
}

// ListenerCount returns the number of registered listeners
func (e *ChannelEvent[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.channels)
}

// offerLatest sends value, evicting one stale value if the buffer is full.
// Gives up if the channel is still full after eviction (unbuffered or contended).
func offerLatest[T any](ch chan T, value T) {
	for attempt := 0; attempt < 2; attempt++ {
		select {
		case ch <- value:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
