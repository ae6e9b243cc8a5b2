package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gengteng/ndoors/game"
)

// The wire protocol is JSON text frames over a single websocket.
// Requests carry an "action" tag, responses a "resp" tag. Broadcasts
// use the same response types as direct replies.

// Request actions.
const (
	ActionListRooms      = "ListRooms"
	ActionCreateRoom     = "CreateRoom"
	ActionEnterRoom      = "EnterRoom"
	ActionExitRoom       = "ExitRoom"
	ActionReady          = "Ready"
	ActionChoose         = "Choose"
	ActionUpdateSettings = "UpdateSettings"
	ActionStart          = "Start"
	ActionReveal         = "Reveal"
	ActionDecide         = "Decide"
	ActionComplete       = "Complete"
)

// Request is a decoded client message. Which fields are meaningful
// depends on Action.
type Request struct {
	Action         string         `json:"action"`
	Page           int            `json:"page,omitempty"`            // ListRooms
	Size           int            `json:"size,omitempty"`            // ListRooms
	ID             uuid.UUID      `json:"id,omitempty"`              // EnterRoom / ExitRoom
	Settings       *game.Settings `json:"settings,omitempty"`        // CreateRoom (optional) / UpdateSettings
	Ready          bool           `json:"ready,omitempty"`           // Ready
	Chosen         *Index         `json:"chosen,omitempty"`          // Choose
	Prize          *Index         `json:"prize,omitempty"`           // Start
	Left           *Index         `json:"left,omitempty"`            // Reveal
	Decision       game.Decision  `json:"decision,omitempty"`        // Decide
	KickContestant bool           `json:"kick_contestant,omitempty"` // Complete
}

// Index is either the literal string "random" or an explicit door
// number.
type Index struct {
	Random bool
	Value  int
}

// Specified builds an explicit-door index.
func Specified(v int) Index { return Index{Value: v} }

// RandomIndex is the "random" index value.
var RandomIndex = Index{Random: true}

func (i Index) MarshalJSON() ([]byte, error) {
	if i.Random {
		return []byte(`"random"`), nil
	}
	return json.Marshal(i.Value)
}

func (i *Index) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "random" {
			return fmt.Errorf("invalid index %q", s)
		}
		*i = Index{Random: true}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid index: %s", data)
	}
	*i = Index{Value: v}
	return nil
}

// RoomInfo is one entry of a RoomList response.
type RoomInfo struct {
	ID       uuid.UUID     `json:"id"`
	Settings game.Settings `json:"settings"`
}

// Responses. Each carries its own tag so they can travel through the
// per-connection send channel as plain values.

type UserCreatedResponse struct {
	Resp string    `json:"resp"` // "UserCreated"
	ID   uuid.UUID `json:"id"`
}

type RoomListResponse struct {
	Resp  string     `json:"resp"` // "RoomList"
	Rooms []RoomInfo `json:"rooms"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Total int        `json:"total"`
}

type RoomCreatedResponse struct {
	Resp     string        `json:"resp"` // "RoomCreated"
	ID       uuid.UUID     `json:"id"`
	Settings game.Settings `json:"settings"`
}

type RoomEnteredResponse struct {
	Resp string    `json:"resp"` // "RoomEntered"
	ID   uuid.UUID `json:"id"`
}

type ExitedResponse struct {
	Resp string `json:"resp"` // "Exited"
}

type SettingsUpdatedResponse struct {
	Resp     string        `json:"resp"` // "SettingsUpdated"
	Settings game.Settings `json:"settings"`
	Notify   bool          `json:"notify"`
}

type ReadyResponse struct {
	Resp  string `json:"resp"` // "Ready"
	Ready bool   `json:"ready"`
}

// StartedResponse goes to the host only; it exposes the prize door.
type StartedResponse struct {
	Resp   string `json:"resp"` // "Started"
	Prize  int    `json:"prize"`
	Random bool   `json:"random"`
}

// ContestantStartedResponse is the contestant's view of a round start,
// with the prize withheld.
type ContestantStartedResponse struct {
	Resp   string `json:"resp"` // "ContestantStarted"
	Random bool   `json:"random"`
}

type ChosenResponse struct {
	Resp   string `json:"resp"` // "Chosen"
	Chosen int    `json:"chosen"`
	Random bool   `json:"random"`
}

type RevealedResponse struct {
	Resp   string `json:"resp"` // "Revealed"
	Left   int    `json:"left"`
	Random bool   `json:"random"`
}

type DecidedResponse struct {
	Resp   string           `json:"resp"` // "Decided"
	Result game.RoundResult `json:"result"`
}

type CompletedResponse struct {
	Resp    string       `json:"resp"` // "Completed"
	Summary game.Summary `json:"summary"`
}

// GameErrorResponse reports a recoverable rule violation to the
// requester only.
type GameErrorResponse struct {
	Resp  string `json:"resp"` // "GameError"
	Cause string `json:"cause"`
}

// ServerErrorResponse reports a server-side failure, currently only a
// missing room, to the requester only.
type ServerErrorResponse struct {
	Resp  string `json:"resp"` // "ServerError"
	Cause string `json:"cause"`
}

func userCreated(id uuid.UUID) UserCreatedResponse {
	return UserCreatedResponse{Resp: "UserCreated", ID: id}
}

func gameError(err error) GameErrorResponse {
	return GameErrorResponse{Resp: "GameError", Cause: err.Error()}
}

func roomNotFound(id uuid.UUID) ServerErrorResponse {
	return ServerErrorResponse{Resp: "ServerError", Cause: "room not found: " + id.String()}
}
