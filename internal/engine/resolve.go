package engine

import (
	"sort"

	"github.com/moxuan/werewolf-judge/internal/action"
	"github.com/moxuan/werewolf-judge/internal/roles"
)

// NightResult is the outcome of resolving one night's action map.
type NightResult struct {
	// Deaths are the seats that die tonight, ascending.
	Deaths []int
	// ProtectedSeat is the guard's effective target, recorded for the
	// next night's no-consecutive-protection rule.
	ProtectedSeat *int
	// WolfTarget is the raw wolf-vote outcome (action.NoSeat on a
	// peaceful vote), before protection and saves.
	WolfTarget int
}

// ResolveNight runs the death pipeline over the submitted actions.
//
// The magician swap reinterprets the targets of every role that acts after
// the magician's step, the wolf vote and the guard included. The witch's
// save and poison stay on the literal seats she picked, and the save is
// matched against the raw wolf target: that is the seat the witch was
// shown.
func ResolveNight(s *RoomState) NightResult {
	res := NightResult{WolfTarget: action.NoSeat}

	remap := func(seat int) int { return seat }
	if sw, ok := s.Actions[roles.Magician]; ok && sw.Kind == action.KindMagicianSwap {
		a, b := sw.First, sw.Second
		remap = func(seat int) int { return action.SwapSeat(seat, a, b) }
	}

	// 1. Raw wolf target.
	if wolf, ok := s.Actions[roles.WolfMeetingID]; ok && wolf.Kind == action.KindTarget {
		res.WolfTarget = wolf.Seat
	}
	wolfVictim := res.WolfTarget
	if wolfVictim != action.NoSeat {
		wolfVictim = remap(wolfVictim)
	}
	wolfKill := wolfVictim != action.NoSeat

	// 2. Guard protection. The guard acts after the magician, so her
	// target is remapped too.
	if g, ok := s.Actions[roles.Guard]; ok && g.Kind == action.KindTarget && g.Seat != action.NoSeat {
		guarded := remap(g.Seat)
		res.ProtectedSeat = &guarded
		if wolfKill && guarded == wolfVictim {
			wolfKill = false
		}
	}

	// 2.5. Role immunity to the wolf kill.
	if wolfKill && roles.Lookup(s.RoleAt(wolfVictim)).Flags.ImmuneToWolfKill {
		wolfKill = false
	}

	// 3–5. Witch: save against the raw target, poison on the literal seat,
	// then poison immunity.
	poisonSeat := action.NoSeat
	if w, ok := s.Actions[roles.Witch]; ok && w.Kind == action.KindWitch {
		if w.Save && w.Seat == res.WolfTarget {
			wolfKill = false
		}
		if w.Poison {
			poisonSeat = w.Seat
		}
	}
	if poisonSeat != action.NoSeat && roles.Lookup(s.RoleAt(poisonSeat)).Flags.ImmuneToPoison {
		poisonSeat = action.NoSeat
	}

	// 7. Compose.
	deaths := make(map[int]bool)
	if wolfKill {
		deaths[wolfVictim] = true
	}
	if poisonSeat != action.NoSeat {
		deaths[poisonSeat] = true
	}
	for seat := range deaths {
		res.Deaths = append(res.Deaths, seat)
	}
	sort.Ints(res.Deaths)
	return res
}

// EffectiveTargetSeat maps a submitted target through the magician swap
// when the acting role's step runs after the magician's. Reveal-producing
// roles (seer, psychic, gargoyle) read their check subject through this.
func EffectiveTargetSeat(s *RoomState, actor roles.ID, seat int) int {
	if seat == action.NoSeat || s.Plan == nil {
		return seat
	}
	sw, ok := s.Actions[roles.Magician]
	if !ok || sw.Kind != action.KindMagicianSwap {
		return seat
	}
	magStep := s.Plan.StepIndexOf(roles.Magician)
	actorStep := s.Plan.StepIndexOf(actor)
	if magStep < 0 || actorStep <= magStep {
		return seat
	}
	return action.SwapSeat(seat, sw.First, sw.Second)
}
