package room

import (
	"encoding/json"

	"github.com/moxuan/werewolf-judge/internal/engine"
	"github.com/moxuan/werewolf-judge/internal/roles"
	"github.com/moxuan/werewolf-judge/internal/types"
)

// Inbound command payloads.

type TakeSeatPayload struct {
	Seat        int    `json:"seat"`
	DisplayName string `json:"display_name"`
}

type SubmitActionPayload struct {
	RoleID roles.ID        `json:"role_id"`
	Wire   json.RawMessage `json:"wire"`
}

type WolfVotePayload struct {
	// TargetSeat is nil or -1 for an abstention (空刀).
	TargetSeat *int `json:"target_seat"`
}

type AudioDonePayload struct {
	Cue       string `json:"cue"`
	StepIndex int    `json:"step_index"`
}

// Outbound payloads.

type AudioCuePayload struct {
	Cue       string   `json:"cue"`
	RoleID    roles.ID `json:"role_id,omitempty"`
	StepIndex int      `json:"step_index"`
}

type RoleTurnPayload struct {
	RoleID    roles.ID `json:"role_id"`
	StepIndex int      `json:"step_index"`
}

type NightEndPayload struct {
	LastNightDeaths []int `json:"last_night_deaths"`
}

type SeerRevealPayload struct {
	TargetSeat int    `json:"target_seat"`
	Result     string `json:"result"`
}

type NameRevealPayload struct {
	TargetSeat  int    `json:"target_seat"`
	DisplayName string `json:"display_name"`
}

type WitchContextPayload struct {
	KilledIndex int  `json:"killed_index"`
	CanSave     bool `json:"can_save"`
}

type ActionRejectedPayload struct {
	Reason string `json:"reason"`
}

type RoleAssignmentPayload struct {
	RoleID roles.ID `json:"role_id"`
	Seat   int      `json:"seat"`
}

type WelcomeBackPayload struct {
	State          engine.PublicView `json:"state"`
	RoleID         roles.ID          `json:"role_id,omitempty"`
	HasViewedRole  bool              `json:"has_viewed_role"`
	PendingReveals []types.Envelope  `json:"pending_reveals,omitempty"`
	RoleTurn       *RoleTurnPayload  `json:"role_turn,omitempty"`
}

type RoomFaultPayload struct {
	Message string `json:"message"`
}
