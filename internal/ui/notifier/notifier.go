// Package notifier fans console notices out to SSE listeners.
package notifier

import (
	"sync"

	"github.com/leapstack-labs/goadmin/internal/auth"
)

// Event is one message for a console: a timed notice, or a prompt the
// browser should answer.
type Event struct {
	Notice auth.Notice
	Prompt *auth.Prompt
}

// bufferSize is how many undelivered events a listener may queue.
const bufferSize = 8

// Notifier delivers events to listeners subscribed under a console key.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]string
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]string),
	}
}

// Subscribe returns a channel receiving events published for key and all
// broadcasts. The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe(key string) chan Event {
	ch := make(chan Event, bufferSize)
	n.mu.Lock()
	n.listeners[ch] = key
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	_, ok := n.listeners[ch]
	delete(n.listeners, ch)
	n.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Publish sends ev to the listeners of key.
// Non-blocking: if a listener's channel is full, the event is dropped for it.
func (n *Notifier) Publish(key string, ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch, k := range n.listeners {
		if k == key {
			send(ch, ev)
		}
	}
}

// Broadcast sends ev to every listener.
func (n *Notifier) Broadcast(ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		send(ch, ev)
	}
}

// Listeners returns the number of subscribed channels.
func (n *Notifier) Listeners() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

func send(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
		// Channel full, drop (the listener is not keeping up)
	}
}
