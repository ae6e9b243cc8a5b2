// Package game implements the Monty-Hall door game as a pure state
// machine: one Room advances through a fixed sequence of host and
// contestant moves, with no I/O and no concurrency of its own.
//
// A room starts Created, becomes Joined when a contestant is accepted,
// and Started once the contestant is ready and the host begins round 0.
// Within a round the stage advances Choose -> Reveal -> Decide -> End,
// never backwards. Every operation returns ErrInvalidOperation when the
// current state does not permit it, leaving the room unchanged.
package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// Settings holds the parameters a game is played under. They are frozen
// for the duration of a round sequence.
type Settings struct {
	Doors  int `json:"doors"`
	Rounds int `json:"rounds"`
}

// Validate rejects settings no game can be played under.
func (s Settings) Validate() error {
	if s.Doors < 2 || s.Rounds < 1 {
		return ErrInvalidSettings
	}
	return nil
}

// Decision is the contestant's final call: keep the chosen door or
// switch to the one the host left closed.
type Decision string

const (
	Switch Decision = "Switch"
	Stick  Decision = "Stick"
)

// RoundResult records one finished round. Values never change once the
// round has ended.
type RoundResult struct {
	Prize    int      `json:"prize"`
	Chosen   int      `json:"chosen"`
	Left     int      `json:"left"`
	Decision Decision `json:"decision"`
	Win      bool     `json:"win"`
}

// Stage is the sub-state of a single round. The four implementations
// below are the only ones; code consuming a Stage type-switches over
// them exhaustively.
type Stage interface{ isStage() }

// StageChoose waits for the contestant to pick a door.
type StageChoose struct{}

// StageReveal waits for the host to open all doors but two.
type StageReveal struct{ Chosen int }

// StageDecide waits for the contestant to stick or switch.
type StageDecide struct{ Chosen, Left int }

// StageEnd holds the finished round's result.
type StageEnd struct{ Result RoundResult }

func (StageChoose) isStage() {}
func (StageReveal) isStage() {}
func (StageDecide) isStage() {}
func (StageEnd) isStage()    {}

// RoomState is the lifecycle state of a room. Like Stage it is a closed
// set: Created, Joined, or Started.
type RoomState interface{ isRoomState() }

// Created has no contestant bound.
type Created struct{}

// Joined has a contestant; Ready gates the first Start.
type Joined struct {
	Contestant uuid.UUID
	Ready      bool
}

// Started is an in-progress round sequence.
type Started struct {
	Contestant   uuid.UUID
	CurrentRound int
	Prize        int
	Results      []RoundResult
	Stage        Stage
}

func (Created) isRoomState() {}
func (Joined) isRoomState()  {}
func (Started) isRoomState() {}

// Room is one host/contestant pairing playing rounds under fixed
// settings. Room itself is not safe for concurrent use; callers
// serialize access (the server does so through its registry).
type Room struct {
	id       uuid.UUID
	host     uuid.UUID
	settings Settings
	state    RoomState
}

// Create makes a fresh room owned by host.
func Create(host uuid.UUID, settings Settings) (*Room, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Room{
		id:       uuid.New(),
		host:     host,
		settings: settings,
		state:    Created{},
	}, nil
}

// ID returns the room identifier.
func (r *Room) ID() uuid.UUID { return r.id }

// Host returns the owning host's identifier.
func (r *Room) Host() uuid.UUID { return r.host }

// Settings returns the current game settings.
func (r *Room) Settings() Settings { return r.settings }

// State returns the current room state.
func (r *Room) State() RoomState { return r.state }

// AcceptContestant binds a contestant to a freshly created room.
func (r *Room) AcceptContestant(contestant uuid.UUID) error {
	if _, ok := r.state.(Created); !ok {
		return ErrInvalidOperation
	}
	r.state = Joined{Contestant: contestant}
	return nil
}

// KickContestant unbinds the contestant, abandoning any game in
// progress. Legal whenever a contestant is bound.
func (r *Room) KickContestant() error {
	switch r.state.(type) {
	case Joined, Started:
		r.state = Created{}
		return nil
	default:
		return ErrInvalidOperation
	}
}

// SetReady records the contestant's readiness. Only meaningful while
// waiting in Joined.
func (r *Room) SetReady(ready bool) error {
	st, ok := r.state.(Joined)
	if !ok {
		return ErrInvalidOperation
	}
	st.Ready = ready
	r.state = st
	return nil
}

// UpdateSettings replaces the settings before a game starts. The
// returned flag reports whether a bound contestant must confirm
// readiness again: true exactly when the room is Joined and the
// settings materially changed, in which case ready is forced off.
func (r *Room) UpdateSettings(settings Settings) (bool, error) {
	if err := settings.Validate(); err != nil {
		return false, err
	}
	switch st := r.state.(type) {
	case Created:
		r.settings = settings
		return false, nil
	case Joined:
		if r.settings == settings {
			return false, nil
		}
		r.settings = settings
		st.Ready = false
		r.state = st
		return true, nil
	default:
		return false, ErrInvalidOperation
	}
}

// Start begins round 0 (from Joined with a ready contestant) or the
// next round (from a Started room whose stage is End, while rounds
// remain), placing the prize behind the given door.
func (r *Room) Start(prize int) error {
	if prize < 0 || prize >= r.settings.Doors {
		return ErrInvalidDoorIndex
	}
	return r.start(prize)
}

// StartRandom is Start with a uniformly random prize door, which it
// returns.
func (r *Room) StartRandom() (int, error) {
	prize := rand.Intn(r.settings.Doors)
	if err := r.start(prize); err != nil {
		return 0, err
	}
	return prize, nil
}

func (r *Room) start(prize int) error {
	switch st := r.state.(type) {
	case Joined:
		if !st.Ready {
			return ErrInvalidOperation
		}
		r.state = Started{
			Contestant: st.Contestant,
			Prize:      prize,
			Stage:      StageChoose{},
		}
		return nil
	case Started:
		if _, end := st.Stage.(StageEnd); !end || st.CurrentRound >= r.settings.Rounds-1 {
			return ErrInvalidOperation
		}
		st.CurrentRound++
		st.Prize = prize
		st.Stage = StageChoose{}
		r.state = st
		return nil
	default:
		return ErrInvalidOperation
	}
}

// Choose records the contestant's door pick for the current round.
func (r *Room) Choose(chosen int) error {
	if chosen < 0 || chosen >= r.settings.Doors {
		return ErrInvalidDoorIndex
	}
	return r.choose(chosen)
}

// ChooseRandom picks a uniformly random door and returns it.
func (r *Room) ChooseRandom() (int, error) {
	chosen := rand.Intn(r.settings.Doors)
	if err := r.choose(chosen); err != nil {
		return 0, err
	}
	return chosen, nil
}

func (r *Room) choose(chosen int) error {
	st, ok := r.state.(Started)
	if !ok {
		return ErrInvalidOperation
	}
	if _, ok := st.Stage.(StageChoose); !ok {
		return ErrInvalidOperation
	}
	st.Stage = StageReveal{Chosen: chosen}
	r.state = st
	return nil
}

// Reveal opens every door except the chosen one and left. The host may
// never leave the chosen door, and whenever the contestant's choice
// missed the prize, left must be the prize door (opening it would give
// the game away).
func (r *Room) Reveal(left int) error {
	if left < 0 || left >= r.settings.Doors {
		return ErrInvalidDoorIndex
	}
	st, ok := r.state.(Started)
	if !ok {
		return ErrInvalidOperation
	}
	stage, ok := st.Stage.(StageReveal)
	if !ok {
		return ErrInvalidOperation
	}
	if left == stage.Chosen || (stage.Chosen != st.Prize && left != st.Prize) {
		return ErrInvalidOperation
	}
	st.Stage = StageDecide{Chosen: stage.Chosen, Left: left}
	r.state = st
	return nil
}

// RevealRandom performs the host reveal with the only legal door when
// the choice missed the prize, and a uniformly random non-chosen door
// otherwise. It returns the door left closed.
func (r *Room) RevealRandom() (int, error) {
	st, ok := r.state.(Started)
	if !ok {
		return 0, ErrInvalidOperation
	}
	stage, ok := st.Stage.(StageReveal)
	if !ok {
		return 0, ErrInvalidOperation
	}
	var left int
	if stage.Chosen == st.Prize {
		left = randomDoor(r.settings.Doors, stage.Chosen)
	} else {
		left = st.Prize
	}
	st.Stage = StageDecide{Chosen: stage.Chosen, Left: left}
	r.state = st
	return left, nil
}

// Decide resolves the round with the contestant's final call and
// records the result. Sticking wins iff the chosen door hides the
// prize; switching wins iff the left door does.
func (r *Room) Decide(decision Decision) (RoundResult, error) {
	st, ok := r.state.(Started)
	if !ok {
		return RoundResult{}, ErrInvalidOperation
	}
	stage, ok := st.Stage.(StageDecide)
	if !ok {
		return RoundResult{}, ErrInvalidOperation
	}
	win := (decision == Stick && stage.Chosen == st.Prize) ||
		(decision == Switch && stage.Left == st.Prize)
	result := RoundResult{
		Prize:    st.Prize,
		Chosen:   stage.Chosen,
		Left:     stage.Left,
		Decision: decision,
		Win:      win,
	}
	st.Results = append(st.Results, result)
	st.Stage = StageEnd{Result: result}
	r.state = st
	return result, nil
}

// Complete closes a finished game (last round ended) and returns the
// results in play order. The room returns to Joined with readiness
// cleared, or to Created when kickContestant is set.
func (r *Room) Complete(kickContestant bool) ([]RoundResult, error) {
	st, ok := r.state.(Started)
	if !ok {
		return nil, ErrInvalidOperation
	}
	if _, end := st.Stage.(StageEnd); !end || st.CurrentRound < r.settings.Rounds-1 {
		return nil, ErrInvalidOperation
	}
	if kickContestant {
		r.state = Created{}
	} else {
		r.state = Joined{Contestant: st.Contestant}
	}
	return st.Results, nil
}

// randomDoor draws uniformly from [0, doors) excluding exclusive, by
// sampling [0, doors-1) and shifting values at or above exclusive up by
// one. No rejection loop needed.
func randomDoor(doors, exclusive int) int {
	if exclusive < 0 || exclusive >= doors {
		panic("game: exclusive door out of range")
	}
	n := rand.Intn(doors - 1)
	if n >= exclusive {
		n++
	}
	return n
}
