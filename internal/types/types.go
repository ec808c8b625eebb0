package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrUnauthorized ErrorCode = "unauthorized"
	ErrForbidden    ErrorCode = "forbidden"
	ErrBadRequest   ErrorCode = "bad_request"
	ErrConflict     ErrorCode = "conflict"
	ErrInternal     ErrorCode = "internal"
	ErrNotFound     ErrorCode = "not_found"
	ErrRateLimited  ErrorCode = "rate_limited"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewError(code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func WrapError(code ErrorCode, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err}
}

func Is(err error, code ErrorCode) bool {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code == code
	}
	return false
}

// MsgType names every envelope the host sends to participants.
type MsgType string

// Public messages, broadcast to the whole room.
const (
	MsgStateUpdate MsgType = "state.update"
	MsgRoleTurn    MsgType = "role.turn"
	MsgNightEnd    MsgType = "night.end"
	MsgRoomFault   MsgType = "room.fault"
)

// Host-collaborator messages: the engine asks the host device to play a
// cue and the collaborator answers with an audio_done command.
const (
	MsgAudioCue MsgType = "audio.cue"
)

// Audio cue names.
const (
	CueNightBegin = "nightBegin"
	CueRoleBegin  = "roleBegin"
	CueRoleEnd    = "roleEnd"
	CueNightEnd   = "nightEnd"
)

// Private messages, sent to a single participant.
const (
	MsgRoleAssignment MsgType = "role.assignment"
	MsgSeerReveal     MsgType = "seer.reveal"
	MsgPsychicReveal  MsgType = "psychic.reveal"
	MsgGargoyleReveal MsgType = "gargoyle.reveal"
	MsgWitchContext   MsgType = "witch.context"
	MsgActionRejected MsgType = "action.rejected"
	MsgWelcomeBack    MsgType = "welcome.back"
)

// Inbound command types, participant to host.
const (
	CmdTakeSeat     = "take_seat"
	CmdLeaveSeat    = "leave_seat"
	CmdViewRole     = "view_role"
	CmdStartGame    = "start_game"
	CmdSubmitAction = "submit_action"
	CmdWolfVote     = "wolf_vote"
	CmdAudioDone    = "audio_done"
	CmdHello        = "hello"
	CmdRestart      = "restart"
	CmdEndRoom      = "end_room"
)

// Reject reasons carried by action.rejected payloads.
const (
	RejectWrongRole     = "wrongRole"
	RejectWrongPhase    = "wrongPhase"
	RejectIllegalTarget = "illegalTarget"
	RejectDuplicate     = "duplicate"
)

// CommandEnvelope is one inbound request from a participant.
type CommandEnvelope struct {
	CommandID string          `json:"command_id"`
	RoomCode  string          `json:"room_code"`
	Type      string          `json:"type"`
	ActorUID  string          `json:"actor_uid"`
	Payload   json.RawMessage `json:"data"`
}

// Envelope is one outbound message from the host. ToUID is empty for
// broadcasts and names the single recipient otherwise.
type Envelope struct {
	Type              MsgType         `json:"type"`
	RoomCode          string          `json:"room_code"`
	ToUID             string          `json:"to_uid,omitempty"`
	Payload           json.RawMessage `json:"payload"`
	ServerTimestampMs int64           `json:"server_ts_ms"`
}

// CommandResult is the synchronous reply to a CommandEnvelope.
type CommandResult struct {
	CommandID string `json:"command_id"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

func MustMarshal(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
