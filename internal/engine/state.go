// Package engine owns the authoritative per-room game state and the pure
// rules that mutate it: seat lifecycle, role assignment, night bookkeeping
// and the death resolution pipeline.
package engine

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/moxuan/werewolf-judge/internal/action"
	"github.com/moxuan/werewolf-judge/internal/night"
	"github.com/moxuan/werewolf-judge/internal/roles"
	"github.com/moxuan/werewolf-judge/internal/template"
)

type Status string

const (
	StatusUnseated Status = "unseated"
	StatusSeated   Status = "seated"
	StatusAssigned Status = "assigned"
	StatusReady    Status = "ready"
	StatusOngoing  Status = "ongoing"
	StatusEnded    Status = "ended"
)

var (
	ErrSeatOutOfRange = errors.New("seat out of range")
	ErrSeatTaken      = errors.New("seat already taken")
	ErrNotSeated      = errors.New("participant is not seated")
	ErrWrongStatus    = errors.New("operation not allowed in current status")
)

// Player is one seated participant.
type Player struct {
	UID           string   `json:"uid"`
	Seat          int      `json:"seat"`
	DisplayName   string   `json:"display_name"`
	Role          roles.ID `json:"role,omitempty"`
	HasViewedRole bool     `json:"has_viewed_role"`
	Alive         bool     `json:"alive"`
}

// RoomState is the canonical state of one room. It is owned by the room's
// coordinator goroutine; nothing else mutates it.
type RoomState struct {
	RoomCode string
	HostUID  string
	Status   Status
	Template template.Template

	// Players is indexed by seat; nil entries are empty seats.
	Players []*Player

	Plan              *night.Plan
	Actions           map[roles.ID]action.Action
	WolfVotes         map[int]int
	CurrentStep       int
	AudioPlaying      bool
	LastNightDeaths   []int
	LastProtectedSeat *int
}

// NewRoomState creates an unseated room for the given board.
func NewRoomState(roomCode, hostUID string, tmpl template.Template) *RoomState {
	return &RoomState{
		RoomCode:  roomCode,
		HostUID:   hostUID,
		Status:    StatusUnseated,
		Template:  tmpl,
		Players:   make([]*Player, tmpl.PlayerCount()),
		Actions:   make(map[roles.ID]action.Action),
		WolfVotes: make(map[int]int),
	}
}

// PlayerByUID finds a player's seat entry, nil when the uid is not seated.
func (s *RoomState) PlayerByUID(uid string) *Player {
	for _, p := range s.Players {
		if p != nil && p.UID == uid {
			return p
		}
	}
	return nil
}

// PlayerAt returns the player on seat, nil for empty or out-of-range seats.
func (s *RoomState) PlayerAt(seat int) *Player {
	if seat < 0 || seat >= len(s.Players) {
		return nil
	}
	return s.Players[seat]
}

// RoleAt returns the role on seat, "" when unknown.
func (s *RoomState) RoleAt(seat int) roles.ID {
	if p := s.PlayerAt(seat); p != nil {
		return p.Role
	}
	return ""
}

// SeatRoles returns the per-seat role list the plan compiler consumes.
func (s *RoomState) SeatRoles() []roles.ID {
	out := make([]roles.ID, len(s.Players))
	for i, p := range s.Players {
		if p != nil {
			out[i] = p.Role
		}
	}
	return out
}

// SeatsWithRole lists the seats currently holding id.
func (s *RoomState) SeatsWithRole(id roles.ID) []int {
	var seats []int
	for i, p := range s.Players {
		if p != nil && p.Role == id {
			seats = append(seats, i)
		}
	}
	return seats
}

// seatedCount is the number of occupied seats.
func (s *RoomState) seatedCount() int {
	n := 0
	for _, p := range s.Players {
		if p != nil {
			n++
		}
	}
	return n
}

// TakeSeat seats uid on seat. Re-sending the same seat is a no-op; a
// different seat reseats the participant. Seats are only claimable before
// roles are assigned.
func (s *RoomState) TakeSeat(uid string, seat int, displayName string) error {
	if s.Status != StatusUnseated && s.Status != StatusSeated {
		return fmt.Errorf("%w: %s", ErrWrongStatus, s.Status)
	}
	if seat < 0 || seat >= len(s.Players) {
		return fmt.Errorf("%w: %d", ErrSeatOutOfRange, seat)
	}
	if cur := s.Players[seat]; cur != nil && cur.UID != uid {
		return fmt.Errorf("%w: seat %d", ErrSeatTaken, seat)
	}
	if prev := s.PlayerByUID(uid); prev != nil {
		if prev.Seat == seat {
			if displayName != "" {
				prev.DisplayName = displayName
			}
			return nil
		}
		s.Players[prev.Seat] = nil
		prev.Seat = seat
		if displayName != "" {
			prev.DisplayName = displayName
		}
		s.Players[seat] = prev
	} else {
		s.Players[seat] = &Player{UID: uid, Seat: seat, DisplayName: displayName, Alive: true}
	}
	s.refreshSeatedStatus()
	return nil
}

// LeaveSeat frees uid's seat. Leaving twice is a no-op.
func (s *RoomState) LeaveSeat(uid string) error {
	if s.Status != StatusUnseated && s.Status != StatusSeated {
		return fmt.Errorf("%w: %s", ErrWrongStatus, s.Status)
	}
	p := s.PlayerByUID(uid)
	if p == nil {
		return nil
	}
	s.Players[p.Seat] = nil
	s.refreshSeatedStatus()
	return nil
}

func (s *RoomState) refreshSeatedStatus() {
	if s.seatedCount() == len(s.Players) {
		s.Status = StatusSeated
	} else {
		s.Status = StatusUnseated
	}
}

// AssignRoles shuffles the template multiset over the seats. Requires a
// full room; resets role views.
func (s *RoomState) AssignRoles(rng *rand.Rand) error {
	if s.Status != StatusSeated {
		return fmt.Errorf("%w: %s", ErrWrongStatus, s.Status)
	}
	pool := make([]roles.ID, len(s.Template.Roles))
	copy(pool, s.Template.Roles)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	for i, p := range s.Players {
		p.Role = pool[i]
		p.HasViewedRole = false
	}
	s.Status = StatusAssigned
	return nil
}

// ViewRole marks uid's role as seen; the room turns ready once every
// player has looked.
func (s *RoomState) ViewRole(uid string) error {
	if s.Status != StatusAssigned && s.Status != StatusReady {
		return fmt.Errorf("%w: %s", ErrWrongStatus, s.Status)
	}
	p := s.PlayerByUID(uid)
	if p == nil {
		return ErrNotSeated
	}
	p.HasViewedRole = true
	for _, q := range s.Players {
		if !q.HasViewedRole {
			return nil
		}
	}
	s.Status = StatusReady
	return nil
}

// StartNight compiles the plan and moves the room into the night.
func (s *RoomState) StartNight() error {
	if s.Status != StatusReady {
		return fmt.Errorf("%w: %s", ErrWrongStatus, s.Status)
	}
	plan, err := night.Build(s.Template.Roles, s.SeatRoles())
	if err != nil {
		return err
	}
	s.Plan = &plan
	s.CurrentStep = 0
	s.Actions = make(map[roles.ID]action.Action)
	s.WolfVotes = make(map[int]int)
	s.LastNightDeaths = nil
	s.Status = StatusOngoing
	return nil
}

// EndNight records the resolver's outcome and closes the night.
func (s *RoomState) EndNight(deaths []int, protectedSeat *int) {
	s.LastNightDeaths = deaths
	s.LastProtectedSeat = protectedSeat
	for _, seat := range deaths {
		if p := s.PlayerAt(seat); p != nil {
			p.Alive = false
		}
	}
	s.Status = StatusEnded
}

// Restart clears every night-scoped field and returns the room to the
// pre-night state. Roles and seats survive. Applying it twice equals once.
func (s *RoomState) Restart() {
	s.Plan = nil
	s.CurrentStep = 0
	s.Actions = make(map[roles.ID]action.Action)
	s.WolfVotes = make(map[int]int)
	s.AudioPlaying = false
	s.LastNightDeaths = nil
	s.LastProtectedSeat = nil
	for _, p := range s.Players {
		if p != nil {
			p.Alive = true
		}
	}
	if s.Status == StatusOngoing || s.Status == StatusEnded {
		s.Status = StatusReady
	}
}

// CurrentNightStep returns the step at CurrentStep, nil past the end.
func (s *RoomState) CurrentNightStep() *night.Step {
	if s.Plan == nil || s.CurrentStep < 0 || s.CurrentStep >= len(s.Plan.Steps) {
		return nil
	}
	return &s.Plan.Steps[s.CurrentStep]
}

// LiveWolfMeetingSeats lists the alive seats that vote in the wolf meeting.
func (s *RoomState) LiveWolfMeetingSeats() []int {
	var seats []int
	for i, p := range s.Players {
		if p == nil || !p.Alive || p.Role == "" {
			continue
		}
		if roles.Lookup(p.Role).WolfMeeting.ParticipatesInWolfVote {
			seats = append(seats, i)
		}
	}
	return seats
}
