package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/leapstack-labs/goadmin/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notice(msg string) Event {
	return Event{Notice: auth.Notice{Type: auth.NoticeInfo, Message: msg}}
}

func receive(t *testing.T, ch chan Event) (Event, bool) {
	t.Helper()
	select {
	case ev := <-ch:
		return ev, true
	case <-time.After(100 * time.Millisecond):
		return Event{}, false
	}
}

func TestNotifier_Subscribe_Unsubscribe(t *testing.T) {
	n := New()

	ch := n.Subscribe("a")
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Listeners())

	n.Unsubscribe(ch)
	assert.Equal(t, 0, n.Listeners())

	_, open := <-ch
	assert.False(t, open, "channel should be closed")

	// A second unsubscribe is a no-op.
	assert.NotPanics(t, func() { n.Unsubscribe(ch) })
}

func TestNotifier_PublishTargetsKey(t *testing.T) {
	n := New()

	a := n.Subscribe("a")
	b := n.Subscribe("b")
	defer n.Unsubscribe(a)
	defer n.Unsubscribe(b)

	n.Publish("a", notice("for a"))

	ev, ok := receive(t, a)
	require.True(t, ok, "a did not receive its event")
	assert.Equal(t, "for a", ev.Notice.Message)

	_, ok = receive(t, b)
	assert.False(t, ok, "b should not receive a's event")
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New()

	ch1 := n.Subscribe("a")
	ch2 := n.Subscribe("b")
	defer n.Unsubscribe(ch1)
	defer n.Unsubscribe(ch2)

	n.Broadcast(notice("reloaded"))

	for i, ch := range []chan Event{ch1, ch2} {
		ev, ok := receive(t, ch)
		require.True(t, ok, "ch%d did not receive broadcast", i+1)
		assert.Equal(t, "reloaded", ev.Notice.Message)
	}
}

func TestNotifier_Broadcast_NonBlocking(t *testing.T) {
	n := New()

	ch := n.Subscribe("a")
	defer n.Unsubscribe(ch)

	// Fill the channel buffer
	for i := 0; i < bufferSize; i++ {
		ch <- notice("fill")
	}

	done := make(chan bool)
	go func() {
		n.Broadcast(notice("overflow"))
		n.Publish("a", notice("overflow"))
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Broadcast blocked on full channel")
	}
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	const numGoroutines = 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := n.Subscribe("k")
			n.Broadcast(notice("x"))
			n.Publish("k", notice("y"))
			n.Unsubscribe(ch)
		}()
	}

	wg.Wait()

	assert.Equal(t, 0, n.Listeners())
}
