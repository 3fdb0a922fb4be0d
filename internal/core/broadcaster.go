package core

import (
	"sync"

	"codeassist/pkg/corerpc"
	"codeassist/pkg/logging"
)

const subscriberBufferSize = 16

// authBroadcaster fans auth state changes out to stream subscribers.
type authBroadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan *corerpc.AuthState
}

func newAuthBroadcaster() *authBroadcaster {
	return &authBroadcaster{subs: make(map[int]chan *corerpc.AuthState)}
}

// subscribe registers a subscriber. The returned function unregisters it.
func (b *authBroadcaster) subscribe() (<-chan *corerpc.AuthState, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan *corerpc.AuthState, subscriberBufferSize)
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
}

// publish delivers state to every subscriber without blocking. A subscriber
// whose buffer is full misses the event.
func (b *authBroadcaster) publish(state *corerpc.AuthState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- state:
		default:
			logging.Warn("Core", "Auth status subscriber %d is not keeping up, dropping update", id)
		}
	}
}

func (b *authBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
