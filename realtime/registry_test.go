package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendToUnknownID(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Send("nobody", EventHello, nil))
}

func TestSendIsAddressed(t *testing.T) {
	r := NewRegistry()
	a := r.Register("a")
	b := r.Register("b")

	require.True(t, r.Send("a", EventCredentialIssued, CredentialPayload{JWT: "x"}))

	select {
	case ev := <-a.Events():
		assert.Equal(t, EventCredentialIssued, ev.Name)
		assert.Equal(t, CredentialPayload{JWT: "x"}, ev.Data)
	default:
		t.Fatal("expected event on a")
	}
	assert.Len(t, b.Events(), 0)
}

func TestSendDropsWhenBufferFull(t *testing.T) {
	r := NewRegistry(WithBufferSize(1))
	r.Register("a")

	assert.True(t, r.Send("a", EventHello, nil))
	assert.False(t, r.Send("a", EventHello, nil))
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	c := r.Register("a")
	r.Unregister("a")
	r.Unregister("a")

	assert.False(t, r.Send("a", EventHello, nil))
	assert.Equal(t, 0, r.Len())
	select {
	case <-c.Done():
	default:
		t.Fatal("expected connection to be closed")
	}
}

func TestReRegisterClosesPrevious(t *testing.T) {
	r := NewRegistry()
	first := r.Register("a")
	second := r.Register("a")

	<-first.Done()
	assert.True(t, r.Send("a", EventHello, nil))
	assert.Len(t, second.Events(), 1)
	assert.False(t, first.push(Event{Name: EventHello}))
}

func TestClose(t *testing.T) {
	r := NewRegistry()
	c := r.Register("a")
	r.Close()
	<-c.Done()
	assert.Equal(t, 0, r.Len())
}

func TestConcurrentRegisterSendUnregister(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("conn-%d", i)
			c := r.Register(id)
			assert.True(t, r.Send(id, EventHello, nil))
			<-c.Events()
			r.Send(fmt.Sprintf("conn-%d", (i+1)%100), EventHello, nil)
			r.Unregister(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, r.Len())
}

func TestNotifier(t *testing.T) {
	r := NewRegistry()
	c := r.Register("a")
	n := NewNotifier(r)

	require.True(t, n.Hello("a"))
	require.True(t, n.CredentialIssued("a", "jwt-value"))
	require.False(t, n.CredentialIssued("missing", "jwt-value"))

	ev := <-c.Events()
	assert.Equal(t, Event{Name: EventHello, Data: HelloPayload{Message: "user connected"}}, ev)
	ev = <-c.Events()
	assert.Equal(t, Event{Name: EventCredentialIssued, Data: CredentialPayload{JWT: "jwt-value"}}, ev)
}
