package main

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/gengteng/ndoors/game"
)

const sendQueueSize = 16

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// gameServer is the shared state behind every connection: the room
// directory and the settings rooms are created with by default.
type gameServer struct {
	cfg      *Config
	rooms    *registry
	defaults game.Settings
}

func newGameServer(cfg *Config) *gameServer {
	return &gameServer{
		cfg:      cfg,
		rooms:    newRegistry(),
		defaults: game.Settings{Doors: cfg.doors, Rounds: cfg.rounds},
	}
}

type roleKind int

const (
	roleGuest roleKind = iota
	roleHost
	roleContestant
)

// role is connection-scoped: which side of which room this connection
// speaks for. It changes only through create/enter/exit commands or
// when the addressed room turns out to be gone.
type role struct {
	kind roleKind
	room uuid.UUID
}

// session is one live connection. The decode loop feeds requests, the
// run loop owns the role and mutates rooms through the registry, and
// the write loop drains out to the socket. The three only meet through
// channels.
type session struct {
	id       uuid.UUID
	srv      *gameServer
	role     role
	requests chan Request
	out      chan any
}

func newSession(srv *gameServer) *session {
	return &session{
		id:       uuid.New(),
		srv:      srv,
		requests: make(chan Request, sendQueueSize),
		out:      make(chan any, sendQueueSize),
	}
}

// serveWS upgrades the connection and wires the session's three loops
// together.
func serveWS(srv *gameServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(srv.cfg, "WS: upgrade from %s failed: %v", realIP(r), err)
			return
		}

		s := newSession(srv)
		s.send(userCreated(s.id))
		logf(srv.cfg, "WS: session %s connected from %s", s.id, realIP(r))

		go s.writePump(conn)
		go s.run()
		s.readPump(conn)
	}
}

// readPump decodes frames into typed requests until the connection
// drops or sends garbage; either way the request channel closes and
// run tears the session down.
func (s *session) readPump(conn *websocket.Conn) {
	defer func() {
		close(s.requests)
		_ = conn.Close()
	}()

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			logf(s.srv.cfg, "WS: session %s read loop ended: %v", s.id, err)
			return
		}
		s.requests <- req
	}
}

// writePump forwards queued responses and broadcasts to the wire. It
// exits when run closes out during teardown.
func (s *session) writePump(conn *websocket.Conn) {
	defer conn.Close()

	for msg := range s.out {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (s *session) run() {
	defer func() {
		s.teardown()
		close(s.out)
	}()

	for req := range s.requests {
		s.dispatch(req)
	}
}

// send queues a response for this connection only. A full queue means
// the peer stopped draining; the message is dropped rather than
// blocking the game for everyone else.
func (s *session) send(msg any) {
	if !trySend(s.out, msg) {
		logf(s.srv.cfg, "WS: session %s send queue full, dropping %T", s.id, msg)
	}
}

// dispatch authorizes one request against the session's role and
// applies it. Rule violations answer the requester only; rooms are
// never left half-mutated.
func (s *session) dispatch(req Request) {
	switch req.Action {
	case ActionListRooms:
		rooms, total := s.srv.rooms.list(req.Page, req.Size)
		s.send(RoomListResponse{
			Resp:  "RoomList",
			Rooms: rooms,
			Page:  req.Page,
			Size:  req.Size,
			Total: total,
		})

	case ActionCreateRoom:
		s.createRoom(req)

	case ActionEnterRoom:
		s.enterRoom(req)

	case ActionExitRoom, ActionReady, ActionChoose, ActionUpdateSettings,
		ActionStart, ActionReveal, ActionDecide, ActionComplete:
		s.roomRequest(req)

	default:
		logf(s.srv.cfg, "WS: session %s sent unknown action %q", s.id, req.Action)
		s.send(gameError(game.ErrInvalidOperation))
	}
}

func (s *session) createRoom(req Request) {
	if s.role.kind != roleGuest {
		s.send(gameError(game.ErrInvalidOperation))
		return
	}

	settings := s.srv.defaults
	if req.Settings != nil {
		settings = *req.Settings
	}

	room, err := game.Create(s.id, settings)
	if err != nil {
		s.send(gameError(err))
		return
	}

	s.srv.rooms.insert(&roomAgent{room: room, host: s.out})
	s.role = role{kind: roleHost, room: room.ID()}
	logf(s.srv.cfg, "GAME: session %s created room %s (%d doors, %d rounds)",
		s.id, room.ID(), settings.Doors, settings.Rounds)

	s.send(RoomCreatedResponse{Resp: "RoomCreated", ID: room.ID(), Settings: settings})
}

func (s *session) enterRoom(req Request) {
	if s.role.kind != roleGuest {
		s.send(gameError(game.ErrInvalidOperation))
		return
	}

	err := s.srv.rooms.withAgent(req.ID, func(a *roomAgent) error {
		if err := a.room.AcceptContestant(s.id); err != nil {
			return err
		}
		a.contestant = s.out
		s.role = role{kind: roleContestant, room: req.ID}
		s.deliver(a, RoomEnteredResponse{Resp: "RoomEntered", ID: req.ID})
		return nil
	})
	switch {
	case errors.Is(err, errRoomNotFound):
		s.send(roomNotFound(req.ID))
	case err != nil:
		s.send(gameError(err))
	default:
		logf(s.srv.cfg, "GAME: session %s entered room %s", s.id, req.ID)
	}
}

// roomRequest handles every request that addresses the room this
// connection is already part of.
func (s *session) roomRequest(req Request) {
	if s.role.kind == roleGuest {
		s.send(gameError(game.ErrInvalidOperation))
		return
	}

	roomID := s.role.room
	hostExit := req.Action == ActionExitRoom && s.role.kind == roleHost

	err := s.srv.rooms.withAgent(roomID, func(a *roomAgent) error {
		switch req.Action {
		case ActionExitRoom:
			return s.exitRoom(a, req)
		case ActionReady:
			return s.ready(a, req)
		case ActionChoose:
			return s.choose(a, req)
		case ActionDecide:
			return s.decide(a, req)
		case ActionUpdateSettings:
			return s.updateSettings(a, req)
		case ActionStart:
			return s.start(a, req)
		case ActionReveal:
			return s.reveal(a, req)
		default: // ActionComplete
			return s.complete(a, req)
		}
	})
	switch {
	case errors.Is(err, errRoomNotFound):
		// The room vanished under us (host gone). This connection no
		// longer speaks for it.
		s.role = role{kind: roleGuest}
		s.send(roomNotFound(roomID))
	case err != nil:
		s.send(gameError(err))
	case hostExit:
		// Removal was deferred until the mutation scope was released.
		s.srv.rooms.remove(roomID)
	}
}

func (s *session) exitRoom(a *roomAgent, req Request) error {
	if req.ID != uuid.Nil && req.ID != a.room.ID() {
		logf(s.srv.cfg, "GAME: session %s exit id mismatch: %s != %s", s.id, req.ID, a.room.ID())
	}

	switch s.role.kind {
	case roleHost:
		// The caller removes the room once this scope is released;
		// removing here would re-take the entry lock we already hold.
		s.deliver(a, ExitedResponse{Resp: "Exited"})
		logf(s.srv.cfg, "GAME: host %s closed room %s", s.id, a.room.ID())
	default:
		if a.contestant == (chan<- any)(s.out) {
			if err := a.room.KickContestant(); err != nil {
				return err
			}
			a.contestant = nil
			s.deliver(a, ExitedResponse{Resp: "Exited"})
		}
		// A kicked contestant keeps the role until this explicit exit;
		// the room itself no longer binds them, so there is nothing to
		// unbind beyond the ack.
		s.send(ExitedResponse{Resp: "Exited"})
		logf(s.srv.cfg, "GAME: contestant %s left room %s", s.id, a.room.ID())
	}

	s.role = role{kind: roleGuest}
	return nil
}

func (s *session) ready(a *roomAgent, req Request) error {
	if s.role.kind != roleContestant {
		return game.ErrInvalidOperation
	}
	if err := a.room.SetReady(req.Ready); err != nil {
		return err
	}
	s.deliver(a, ReadyResponse{Resp: "Ready", Ready: req.Ready})
	return nil
}

func (s *session) choose(a *roomAgent, req Request) error {
	if s.role.kind != roleContestant {
		return game.ErrInvalidOperation
	}
	if req.Chosen == nil {
		return game.ErrInvalidOperation
	}

	chosen := req.Chosen.Value
	if req.Chosen.Random {
		var err error
		if chosen, err = a.room.ChooseRandom(); err != nil {
			return err
		}
	} else if err := a.room.Choose(chosen); err != nil {
		return err
	}
	s.deliver(a, ChosenResponse{Resp: "Chosen", Chosen: chosen, Random: req.Chosen.Random})
	return nil
}

func (s *session) decide(a *roomAgent, req Request) error {
	if s.role.kind != roleContestant {
		return game.ErrInvalidOperation
	}
	if req.Decision != game.Switch && req.Decision != game.Stick {
		return game.ErrInvalidOperation
	}

	result, err := a.room.Decide(req.Decision)
	if err != nil {
		return err
	}
	s.deliver(a, DecidedResponse{Resp: "Decided", Result: result})
	return nil
}

func (s *session) updateSettings(a *roomAgent, req Request) error {
	if s.role.kind != roleHost {
		return game.ErrInvalidOperation
	}
	if req.Settings == nil {
		return game.ErrInvalidSettings
	}

	notify, err := a.room.UpdateSettings(*req.Settings)
	if err != nil {
		return err
	}

	resp := SettingsUpdatedResponse{Resp: "SettingsUpdated", Settings: *req.Settings, Notify: notify}
	if !notify {
		// Nothing material changed (or nobody is bound yet): answer
		// the host alone.
		s.send(resp)
		return nil
	}
	s.deliver(a, resp)
	return nil
}

func (s *session) start(a *roomAgent, req Request) error {
	if s.role.kind != roleHost {
		return game.ErrInvalidOperation
	}
	if req.Prize == nil {
		return game.ErrInvalidOperation
	}

	prize := req.Prize.Value
	if req.Prize.Random {
		var err error
		if prize, err = a.room.StartRandom(); err != nil {
			return err
		}
	} else if err := a.room.Start(prize); err != nil {
		return err
	}

	// The host learns where the prize is; the contestant only that the
	// round began.
	s.send(StartedResponse{Resp: "Started", Prize: prize, Random: req.Prize.Random})
	if a.contestant != nil && !trySend(a.contestant, ContestantStartedResponse{Resp: "ContestantStarted", Random: req.Prize.Random}) {
		logf(s.srv.cfg, "GAME: contestant of room %s unreachable", a.room.ID())
	}
	return nil
}

func (s *session) reveal(a *roomAgent, req Request) error {
	if s.role.kind != roleHost {
		return game.ErrInvalidOperation
	}
	if req.Left == nil {
		return game.ErrInvalidOperation
	}

	left := req.Left.Value
	if req.Left.Random {
		var err error
		if left, err = a.room.RevealRandom(); err != nil {
			return err
		}
	} else if err := a.room.Reveal(left); err != nil {
		return err
	}
	s.deliver(a, RevealedResponse{Resp: "Revealed", Left: left, Random: req.Left.Random})
	return nil
}

func (s *session) complete(a *roomAgent, req Request) error {
	if s.role.kind != roleHost {
		return game.ErrInvalidOperation
	}

	results, err := a.room.Complete(req.KickContestant)
	if err != nil {
		return err
	}

	summary := game.Summarize(a.room.Settings().Doors, results)
	s.deliver(a, CompletedResponse{Resp: "Completed", Summary: summary})

	if req.KickContestant && a.contestant != nil {
		trySend(a.contestant, ExitedResponse{Resp: "Exited"})
		a.contestant = nil
	}
	logf(s.srv.cfg, "GAME: room %s completed %d rounds, %d won",
		a.room.ID(), summary.Settings.Rounds, summary.Win)
	return nil
}

// deliver publishes to the whole room, downgrading delivery failures
// to log lines: a dead peer must not read as a failed move.
func (s *session) deliver(a *roomAgent, msg any) {
	if err := a.publish(msg); err != nil {
		logf(s.srv.cfg, "GAME: room %s delivery: %v", a.room.ID(), err)
	}
}

// teardown runs once, when the connection is gone. A host takes its
// room with it; a contestant hands the room back to the host. Both are
// safe against the room having disappeared already.
func (s *session) teardown() {
	switch s.role.kind {
	case roleHost:
		room := s.role.room
		_ = s.srv.rooms.withAgent(room, func(a *roomAgent) error {
			if a.contestant != nil {
				trySend(a.contestant, ExitedResponse{Resp: "Exited"})
			}
			return nil
		})
		if s.srv.rooms.remove(room) {
			logf(s.srv.cfg, "GAME: host %s disconnected, room %s removed", s.id, room)
		}
	case roleContestant:
		err := s.srv.rooms.withAgent(s.role.room, func(a *roomAgent) error {
			if a.contestant != (chan<- any)(s.out) {
				// Kicked earlier; whoever is bound now is not us.
				return nil
			}
			if err := a.room.KickContestant(); err != nil {
				return err
			}
			a.contestant = nil
			trySend(a.host, ExitedResponse{Resp: "Exited"})
			return nil
		})
		if err == nil {
			logf(s.srv.cfg, "GAME: contestant %s disconnected from room %s", s.id, s.role.room)
		}
	}
	s.role = role{kind: roleGuest}
}
