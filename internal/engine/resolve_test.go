package engine

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/moxuan/werewolf-judge/internal/action"
	"github.com/moxuan/werewolf-judge/internal/night"
	"github.com/moxuan/werewolf-judge/internal/roles"
	"github.com/moxuan/werewolf-judge/internal/template"
)

// fixedRoom builds a room with roles pinned to seats in the given order.
func fixedRoom(t *testing.T, ids ...roles.ID) *RoomState {
	t.Helper()
	tmpl := template.Template{Name: "fixed", Roles: ids}
	s := NewRoomState("9999", "uid-0", tmpl)
	for i, id := range ids {
		if err := s.TakeSeat(fmt.Sprintf("uid-%d", i), i, fmt.Sprintf("玩家%d", i+1)); err != nil {
			t.Fatal(err)
		}
		s.Players[i].Role = id
		s.Players[i].HasViewedRole = true
	}
	plan, err := night.Build(tmpl.Roles, s.SeatRoles())
	if err != nil {
		t.Fatal(err)
	}
	s.Plan = &plan
	s.Status = StatusOngoing
	return s
}

func TestResolvePeacefulNight(t *testing.T) {
	s := fixedRoom(t, roles.Wolf, roles.Villager)
	s.Actions[roles.WolfMeetingID] = action.Action{Kind: action.KindTarget, Seat: action.NoSeat}

	res := ResolveNight(s)
	if len(res.Deaths) != 0 {
		t.Fatalf("peaceful night should kill nobody, got %v", res.Deaths)
	}
	if res.WolfTarget != action.NoSeat {
		t.Errorf("wolf target = %d", res.WolfTarget)
	}
}

func TestResolveGuardCancelsWolfKill(t *testing.T) {
	s := fixedRoom(t, roles.Wolf, roles.Villager, roles.Guard, roles.Seer)
	s.Actions[roles.WolfMeetingID] = action.Action{Kind: action.KindTarget, Seat: 1}
	s.Actions[roles.Guard] = action.Target(1)

	res := ResolveNight(s)
	if len(res.Deaths) != 0 {
		t.Fatalf("guarded victim should live, got %v", res.Deaths)
	}
	if res.ProtectedSeat == nil || *res.ProtectedSeat != 1 {
		t.Errorf("protected seat should be recorded for the next night")
	}
}

func TestResolveWitchSaveAndPoison(t *testing.T) {
	s := fixedRoom(t, roles.Wolf, roles.Villager, roles.Witch, roles.Villager)
	s.Actions[roles.WolfMeetingID] = action.Action{Kind: action.KindTarget, Seat: 1}
	s.Actions[roles.Witch] = action.WitchSave(1)
	if got := ResolveNight(s); len(got.Deaths) != 0 {
		t.Fatalf("saved victim should live, got %v", got.Deaths)
	}

	s = fixedRoom(t, roles.Wolf, roles.Villager, roles.Witch, roles.Villager)
	s.Actions[roles.WolfMeetingID] = action.Action{Kind: action.KindTarget, Seat: 1}
	s.Actions[roles.Witch] = action.WitchPoison(3)
	got := ResolveNight(s)
	if !reflect.DeepEqual(got.Deaths, []int{1, 3}) {
		t.Fatalf("expected deaths [1 3], got %v", got.Deaths)
	}
}

func TestResolvePoisonIgnoresGuard(t *testing.T) {
	s := fixedRoom(t, roles.Wolf, roles.Villager, roles.Witch, roles.Guard)
	s.Actions[roles.WolfMeetingID] = action.Action{Kind: action.KindTarget, Seat: action.NoSeat}
	s.Actions[roles.Guard] = action.Target(1)
	s.Actions[roles.Witch] = action.WitchPoison(1)

	got := ResolveNight(s)
	if !reflect.DeepEqual(got.Deaths, []int{1}) {
		t.Fatalf("poison ignores protection, got %v", got.Deaths)
	}
}

func TestResolveWolfKillImmunity(t *testing.T) {
	s := fixedRoom(t, roles.Wolf, roles.Elder, roles.Seer)
	s.Actions[roles.WolfMeetingID] = action.Action{Kind: action.KindTarget, Seat: 1}

	if got := ResolveNight(s); len(got.Deaths) != 0 {
		t.Fatalf("elder shrugs off the wolf kill, got %v", got.Deaths)
	}
}

func TestResolvePoisonImmunity(t *testing.T) {
	s := fixedRoom(t, roles.Wolf, roles.Gargoyle, roles.Witch)
	s.Actions[roles.WolfMeetingID] = action.Action{Kind: action.KindTarget, Seat: action.NoSeat}
	s.Actions[roles.Witch] = action.WitchPoison(1)

	if got := ResolveNight(s); len(got.Deaths) != 0 {
		t.Fatalf("gargoyle shrugs off the poison, got %v", got.Deaths)
	}
}

func TestResolveMagicianRedirectsWolfKill(t *testing.T) {
	s := fixedRoom(t, roles.Magician, roles.Wolf, roles.Villager, roles.Villager)
	s.Actions[roles.Magician] = action.Swap(2, 3)
	s.Actions[roles.WolfMeetingID] = action.Action{Kind: action.KindTarget, Seat: 2}

	got := ResolveNight(s)
	if !reflect.DeepEqual(got.Deaths, []int{3}) {
		t.Fatalf("swap should reroute the kill to seat 3, got %v", got.Deaths)
	}
}

func TestResolveMagicianDoesNotRemapWitch(t *testing.T) {
	s := fixedRoom(t, roles.Magician, roles.Wolf, roles.Witch, roles.Villager, roles.Villager)
	s.Actions[roles.Magician] = action.Swap(3, 4)
	s.Actions[roles.WolfMeetingID] = action.Action{Kind: action.KindTarget, Seat: action.NoSeat}
	s.Actions[roles.Witch] = action.WitchPoison(3)

	got := ResolveNight(s)
	if !reflect.DeepEqual(got.Deaths, []int{3}) {
		t.Fatalf("witch poison stays on the literal seat, got %v", got.Deaths)
	}
}

func TestEffectiveTargetSeatFollowsSwap(t *testing.T) {
	s := fixedRoom(t, roles.Magician, roles.Wolf, roles.Seer, roles.Villager, roles.Villager, roles.Villager)
	s.Actions[roles.Magician] = action.Swap(3, 5)

	if got := EffectiveTargetSeat(s, roles.Seer, 3); got != 5 {
		t.Errorf("seer check of seat 3 should land on 5, got %d", got)
	}
	if got := EffectiveTargetSeat(s, roles.Seer, 2); got != 2 {
		t.Errorf("untouched seat moved: %d", got)
	}
	// The magician's own step never remaps.
	if got := EffectiveTargetSeat(s, roles.Magician, 3); got != 3 {
		t.Errorf("magician's own targets must not remap, got %d", got)
	}
}

func TestPublicViewNeverLeaksRoles(t *testing.T) {
	s := fixedRoom(t, roles.Wolf, roles.Seer)
	raw := fmt.Sprintf("%+v", s.Public())
	for _, id := range []string{"wolf", "seer"} {
		if containsWord(raw, id) {
			t.Fatalf("public view leaked role %q: %s", id, raw)
		}
	}
}

func containsWord(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
