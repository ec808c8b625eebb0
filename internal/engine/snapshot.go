package engine

import (
	"encoding/json"
	"fmt"

	"github.com/moxuan/werewolf-judge/internal/action"
	"github.com/moxuan/werewolf-judge/internal/night"
	"github.com/moxuan/werewolf-judge/internal/roles"
	"github.com/moxuan/werewolf-judge/internal/template"
)

// snapshotVersion lets future readers branch on layout changes; readers
// ignore fields they do not know.
const snapshotVersion = 1

type snapshotPlayer struct {
	UID           string   `json:"uid"`
	Seat          int      `json:"seat"`
	DisplayName   string   `json:"display_name"`
	Role          roles.ID `json:"role,omitempty"`
	HasViewedRole bool     `json:"has_viewed_role"`
	Alive         bool     `json:"alive"`
}

type snapshot struct {
	Version           int                         `json:"version"`
	RoomCode          string                      `json:"room_code"`
	HostUID           string                      `json:"host_uid"`
	Status            Status                      `json:"status"`
	Template          template.Template           `json:"template"`
	Players           []snapshotPlayer            `json:"players"`
	Actions           map[roles.ID]action.Action  `json:"actions,omitempty"`
	CurrentStepIndex  int                         `json:"current_step_index"`
	LastNightDeaths   []int                       `json:"last_night_deaths,omitempty"`
	LastProtectedSeat *int                        `json:"last_protected_seat,omitempty"`
}

// MarshalSnapshot serializes the recoverable core of the room. Wolf votes
// that have not been finalized are deliberately left out: after a host
// restart the wolf step replays and the once-guard keeps the finalizer
// single-shot.
func MarshalSnapshot(s *RoomState) ([]byte, error) {
	snap := snapshot{
		Version:           snapshotVersion,
		RoomCode:          s.RoomCode,
		HostUID:           s.HostUID,
		Status:            s.Status,
		Template:          s.Template,
		Actions:           s.Actions,
		CurrentStepIndex:  s.CurrentStep,
		LastNightDeaths:   s.LastNightDeaths,
		LastProtectedSeat: s.LastProtectedSeat,
	}
	for _, p := range s.Players {
		if p == nil {
			continue
		}
		snap.Players = append(snap.Players, snapshotPlayer(*p))
	}
	return json.Marshal(snap)
}

// UnmarshalSnapshot rebuilds a RoomState from a stored snapshot. For an
// ongoing room the night plan is recompiled from the template and seat
// assignment; the compiler is deterministic, so the rebuilt plan matches
// the one the room was running.
func UnmarshalSnapshot(raw []byte) (*RoomState, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.RoomCode == "" {
		return nil, fmt.Errorf("snapshot missing room code")
	}
	st := NewRoomState(snap.RoomCode, snap.HostUID, snap.Template)
	st.Status = snap.Status
	st.CurrentStep = snap.CurrentStepIndex
	st.LastNightDeaths = snap.LastNightDeaths
	st.LastProtectedSeat = snap.LastProtectedSeat
	if snap.Actions != nil {
		st.Actions = snap.Actions
	}
	for _, sp := range snap.Players {
		if sp.Seat < 0 || sp.Seat >= len(st.Players) {
			return nil, fmt.Errorf("snapshot seat %d out of range", sp.Seat)
		}
		p := Player(sp)
		st.Players[sp.Seat] = &p
	}
	if st.Status == StatusOngoing {
		plan, err := night.Build(st.Template.Roles, st.SeatRoles())
		if err != nil {
			return nil, fmt.Errorf("recompile night plan: %w", err)
		}
		st.Plan = &plan
	}
	return st, nil
}
