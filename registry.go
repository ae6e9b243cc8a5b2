package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gengteng/ndoors/game"
)

var errRoomNotFound = errors.New("room not found")

// roomAgent couples one room's game state with the delivery queues of
// its participants. All access goes through registry.withAgent, which
// guarantees a single mutator at a time per room.
type roomAgent struct {
	mu         sync.Mutex
	removed    bool
	room       *game.Room
	host       chan<- any
	contestant chan<- any
}

// publish fans a response out to the host and, when bound, the
// contestant. Delivery to one participant is attempted even if the
// other's queue is full or gone; any failure is reported, none aborts
// the rest. Callers hold the agent via withAgent.
func (a *roomAgent) publish(msg any) error {
	var errs []error
	if !trySend(a.host, msg) {
		errs = append(errs, fmt.Errorf("host of room %s unreachable", a.room.ID()))
	}
	if a.contestant != nil && !trySend(a.contestant, msg) {
		errs = append(errs, fmt.Errorf("contestant of room %s unreachable", a.room.ID()))
	}
	return errors.Join(errs...)
}

// trySend enqueues without blocking. A full or abandoned queue reads
// as delivery failure, never as a hang.
func trySend(ch chan<- any, msg any) bool {
	select {
	case ch <- msg:
		return true
	default:
		return false
	}
}

// registry is the shared directory of live rooms. The map lock is only
// ever held briefly and never together with an entry lock, so room
// removal can't deadlock against an in-flight mutation.
type registry struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*roomAgent
}

func newRegistry() *registry {
	return &registry{rooms: make(map[uuid.UUID]*roomAgent)}
}

func (g *registry) insert(agent *roomAgent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[agent.room.ID()] = agent
}

// withAgent runs fn with exclusive access to the addressed room.
// Concurrent callers for the same room serialize on the entry lock;
// callers for other rooms proceed independently. fn must not call back
// into remove for the same room — removal happens after the scope ends.
func (g *registry) withAgent(id uuid.UUID, fn func(*roomAgent) error) error {
	g.mu.Lock()
	agent, ok := g.rooms[id]
	g.mu.Unlock()
	if !ok {
		return errRoomNotFound
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()
	if agent.removed {
		return errRoomNotFound
	}
	return fn(agent)
}

// remove drops the room from the directory and marks the agent dead so
// a mutator that already fetched it sees the entry as gone. Removing a
// room twice is a no-op.
func (g *registry) remove(id uuid.UUID) bool {
	g.mu.Lock()
	agent, ok := g.rooms[id]
	if ok {
		delete(g.rooms, id)
	}
	g.mu.Unlock()
	if !ok {
		return false
	}

	agent.mu.Lock()
	agent.removed = true
	agent.mu.Unlock()
	return true
}

// list returns a paginated snapshot of open rooms. Rooms created or
// removed while the snapshot is taken may or may not appear; no
// cross-room ordering is promised.
func (g *registry) list(page, size int) ([]RoomInfo, int) {
	g.mu.Lock()
	agents := make([]*roomAgent, 0, len(g.rooms))
	for _, agent := range g.rooms {
		agents = append(agents, agent)
	}
	g.mu.Unlock()

	total := len(agents)
	if size <= 0 {
		return []RoomInfo{}, total
	}

	start := page * size
	if start < 0 || start >= total {
		return []RoomInfo{}, total
	}
	end := min(start+size, total)

	infos := make([]RoomInfo, 0, end-start)
	for _, agent := range agents[start:end] {
		agent.mu.Lock()
		infos = append(infos, RoomInfo{ID: agent.room.ID(), Settings: agent.room.Settings()})
		agent.mu.Unlock()
	}
	return infos, total
}

func (g *registry) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// has reports whether a room is currently open, for read-only surfaces
// like the QR join endpoint.
func (g *registry) has(id uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.rooms[id]
	return ok
}
