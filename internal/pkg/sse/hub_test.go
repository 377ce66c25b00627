package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishReachesOnlyRecipient(t *testing.T) {
	hub := NewHub(2)
	alice, cleanupAlice := hub.Subscribe("alice")
	defer cleanupAlice()
	bob, cleanupBob := hub.Subscribe("bob")
	defer cleanupBob()

	delivered := hub.Publish("alice", Event{Name: "notification", Data: "hello"})

	assert.Equal(t, 1, delivered)
	assert.Equal(t, "hello", (<-alice).Data)
	assert.Empty(t, bob)
	assert.Equal(t, 2, hub.TotalSubscribers())
}

func TestHub_FullStreamIsSkipped(t *testing.T) {
	hub := NewHub(1)
	_, cleanup := hub.Subscribe("alice")
	defer cleanup()

	assert.Equal(t, 1, hub.Publish("alice", Event{Name: "a"}))
	assert.Equal(t, 0, hub.Publish("alice", Event{Name: "b"}))
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub(1)
	ch, cleanup := hub.Subscribe("alice")

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.TotalSubscribers())
	assert.Equal(t, 0, hub.Publish("alice", Event{Name: "a"}))
}
