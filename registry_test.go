package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gengteng/ndoors/game"
)

func newAgent(t *testing.T) *roomAgent {
	t.Helper()

	room, err := game.Create(uuid.New(), game.Settings{Doors: 3, Rounds: 1})
	require.NoError(t, err)
	return &roomAgent{room: room, host: make(chan any, 4)}
}

func TestRegistryLookup(t *testing.T) {
	reg := newRegistry()
	agent := newAgent(t)
	reg.insert(agent)

	require.Equal(t, 1, reg.len())
	assert.True(t, reg.has(agent.room.ID()))
	assert.False(t, reg.has(uuid.New()))

	var visited bool
	err := reg.withAgent(agent.room.ID(), func(a *roomAgent) error {
		visited = true
		assert.Same(t, agent, a)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, visited)

	err = reg.withAgent(uuid.New(), func(*roomAgent) error {
		t.Fatal("must not be called for an unknown room")
		return nil
	})
	assert.ErrorIs(t, err, errRoomNotFound)
}

func TestRegistryRemove(t *testing.T) {
	reg := newRegistry()
	agent := newAgent(t)
	reg.insert(agent)

	assert.True(t, reg.remove(agent.room.ID()))
	assert.Equal(t, 0, reg.len())

	// Removal is idempotent.
	assert.False(t, reg.remove(agent.room.ID()))

	// A removed agent reads as gone even for a caller holding a stale
	// reference to it.
	err := reg.withAgent(agent.room.ID(), func(*roomAgent) error { return nil })
	assert.ErrorIs(t, err, errRoomNotFound)
}

func TestAgentPublish(t *testing.T) {
	host := make(chan any, 1)
	contestant := make(chan any, 1)
	agent := newAgent(t)
	agent.host = host
	agent.contestant = contestant

	require.NoError(t, agent.publish("hello"))
	assert.Equal(t, "hello", <-host)
	assert.Equal(t, "hello", <-contestant)

	// A full contestant queue fails that delivery but still reaches the
	// host.
	contestant <- "stuck"
	require.Error(t, agent.publish("next"))
	assert.Equal(t, "next", <-host)
}

func TestTrySend(t *testing.T) {
	ch := make(chan any, 1)
	assert.True(t, trySend(ch, 1))
	assert.False(t, trySend(ch, 2))
	assert.Equal(t, 1, <-ch)
}

func TestRegistryList(t *testing.T) {
	reg := newRegistry()
	for i := 0; i < 5; i++ {
		reg.insert(newAgent(t))
	}

	infos, total := reg.list(0, 3)
	assert.Equal(t, 5, total)
	assert.Len(t, infos, 3)

	infos, total = reg.list(1, 3)
	assert.Equal(t, 5, total)
	assert.Len(t, infos, 2)
	assert.Equal(t, game.Settings{Doors: 3, Rounds: 1}, infos[0].Settings)

	// Pages past the end and degenerate sizes yield empty lists, never
	// panics.
	infos, _ = reg.list(2, 3)
	assert.Empty(t, infos)
	infos, _ = reg.list(0, 0)
	assert.Empty(t, infos)
	infos, _ = reg.list(-1, 3)
	assert.Empty(t, infos)
}
