// Package night compiles a template's role multiset into the ordered
// sequence of first-night action steps.
package night

import (
	"fmt"
	"sort"

	"github.com/moxuan/werewolf-judge/internal/roles"
)

// Step is one stop of the night: a role, its action schema, and the seats
// that act. The consolidated wolf meeting uses roles.WolfMeetingID.
type Step struct {
	RoleID     roles.ID     `json:"role_id"`
	Schema     roles.Schema `json:"schema"`
	ActorSeats []int        `json:"actor_seats"`
}

// Plan is the immutable night program for one room.
type Plan struct {
	Steps []Step `json:"steps"`
}

// StepIndexOf returns the index of the step for roleID, or -1.
func (p Plan) StepIndexOf(roleID roles.ID) int {
	for i, s := range p.Steps {
		if s.RoleID == roleID {
			return i
		}
	}
	return -1
}

// Build compiles the plan from the template's role list and the current
// seat assignment (seatRoles[seat] is the role held at that seat, "" for
// an empty seat).
//
// The order is deterministic: ascending night order, then first occurrence
// in the template, then role id. Duplicates collapse to one step whose
// actor seats are every seat holding the role. All wolf-vote roles
// consolidate into a single wolf-meeting step whose actors are every seat
// whose role participates in the wolf vote; wolf-team roles with their own
// non-vote action (the nightmare) keep that step as well.
func Build(templateRoles []roles.ID, seatRoles []roles.ID) (Plan, error) {
	type cand struct {
		id    roles.ID
		order int
		first int
		spec  *roles.Spec
	}

	seen := make(map[roles.ID]bool)
	var cands []cand
	for i, id := range templateRoles {
		if seen[id] {
			continue
		}
		seen[id] = true
		spec := roles.Lookup(id)
		if !spec.Night1.HasAction {
			continue
		}
		if spec.Night1.Schema == roles.SchemaNone {
			return Plan{}, fmt.Errorf("role %q acts at night but has no schema", id)
		}
		cands = append(cands, cand{id: id, order: spec.Night1.Order, first: i, spec: spec})
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].order != cands[j].order {
			return cands[i].order < cands[j].order
		}
		if cands[i].first != cands[j].first {
			return cands[i].first < cands[j].first
		}
		return cands[i].id < cands[j].id
	})

	var steps []Step
	wolfMeetingEmitted := false
	for _, c := range cands {
		if c.spec.Night1.Schema == roles.SchemaWolfVote {
			if wolfMeetingEmitted {
				continue
			}
			wolfMeetingEmitted = true
			steps = append(steps, Step{
				RoleID:     roles.WolfMeetingID,
				Schema:     roles.SchemaWolfVote,
				ActorSeats: wolfMeetingSeats(seatRoles),
			})
			continue
		}
		steps = append(steps, Step{
			RoleID:     c.id,
			Schema:     c.spec.Night1.Schema,
			ActorSeats: seatsHolding(seatRoles, c.id),
		})
	}

	return Plan{Steps: steps}, nil
}

func seatsHolding(seatRoles []roles.ID, id roles.ID) []int {
	var seats []int
	for seat, r := range seatRoles {
		if r == id {
			seats = append(seats, seat)
		}
	}
	return seats
}

func wolfMeetingSeats(seatRoles []roles.ID) []int {
	var seats []int
	for seat, r := range seatRoles {
		if r == "" {
			continue
		}
		if roles.Lookup(r).WolfMeeting.ParticipatesInWolfVote {
			seats = append(seats, seat)
		}
	}
	return seats
}
