package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/moxuan/werewolf-judge/internal/roles"
	"github.com/moxuan/werewolf-judge/internal/template"
)

func testTemplate() template.Template {
	return template.Template{
		Name:  "test4",
		Roles: []roles.ID{roles.Wolf, roles.Seer, roles.Witch, roles.Villager},
	}
}

func seatEveryone(t *testing.T, s *RoomState) {
	t.Helper()
	for i := 0; i < len(s.Players); i++ {
		if err := s.TakeSeat(fmt.Sprintf("uid-%d", i), i, fmt.Sprintf("玩家%d", i+1)); err != nil {
			t.Fatalf("seat %d: %v", i, err)
		}
	}
}

func TestTakeSeatIdempotentAndReseat(t *testing.T) {
	s := NewRoomState("1234", "uid-0", testTemplate())

	if err := s.TakeSeat("uid-0", 0, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := s.TakeSeat("uid-0", 0, "alice"); err != nil {
		t.Fatalf("idempotent take_seat failed: %v", err)
	}
	if err := s.TakeSeat("uid-0", 2, ""); err != nil {
		t.Fatalf("reseat failed: %v", err)
	}
	if s.PlayerAt(0) != nil {
		t.Errorf("old seat should be freed on reseat")
	}
	p := s.PlayerAt(2)
	if p == nil || p.UID != "uid-0" || p.DisplayName != "alice" {
		t.Errorf("reseat lost the player: %+v", p)
	}

	if err := s.TakeSeat("uid-1", 2, "bob"); err == nil {
		t.Errorf("expected seat-taken error")
	}
	if err := s.TakeSeat("uid-1", 9, "bob"); err == nil {
		t.Errorf("expected out-of-range error")
	}
}

func TestSeatedStatusTracksFullness(t *testing.T) {
	s := NewRoomState("1234", "uid-0", testTemplate())
	seatEveryone(t, s)
	if s.Status != StatusSeated {
		t.Fatalf("full room should be seated, got %s", s.Status)
	}
	if err := s.LeaveSeat("uid-2"); err != nil {
		t.Fatal(err)
	}
	if s.Status != StatusUnseated {
		t.Errorf("room with a hole should be unseated, got %s", s.Status)
	}
	if err := s.LeaveSeat("uid-2"); err != nil {
		t.Errorf("double leave should be a no-op: %v", err)
	}
}

func TestAssignRolesPreservesMultiset(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		s := NewRoomState("1234", "uid-0", testTemplate())
		seatEveryone(t, s)
		if err := s.AssignRoles(rand.New(rand.NewSource(seed))); err != nil {
			t.Fatal(err)
		}
		if s.Status != StatusAssigned {
			t.Fatalf("status = %s", s.Status)
		}

		var got []string
		for _, p := range s.Players {
			got = append(got, string(p.Role))
		}
		var want []string
		for _, r := range s.Template.Roles {
			want = append(want, string(r))
		}
		sort.Strings(got)
		sort.Strings(want)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("seed %d: assigned multiset %v != template %v", seed, got, want)
			}
		}
	}
}

func TestViewRoleFlipsReady(t *testing.T) {
	s := NewRoomState("1234", "uid-0", testTemplate())
	seatEveryone(t, s)
	if err := s.AssignRoles(rand.New(rand.NewSource(1))); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.ViewRole(fmt.Sprintf("uid-%d", i)); err != nil {
			t.Fatal(err)
		}
		if s.Status == StatusReady {
			t.Fatalf("ready before everyone viewed")
		}
	}
	if err := s.ViewRole("uid-3"); err != nil {
		t.Fatal(err)
	}
	if s.Status != StatusReady {
		t.Fatalf("expected ready, got %s", s.Status)
	}
}

func TestStartNightBuildsPlan(t *testing.T) {
	s := readyRoom(t)
	if err := s.StartNight(); err != nil {
		t.Fatal(err)
	}
	if s.Status != StatusOngoing || s.Plan == nil {
		t.Fatalf("status=%s plan=%v", s.Status, s.Plan)
	}
	// wolf meeting, seer, witch
	if len(s.Plan.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %v", s.Plan.Steps)
	}
}

func TestRestartIdempotent(t *testing.T) {
	s := readyRoom(t)
	if err := s.StartNight(); err != nil {
		t.Fatal(err)
	}
	s.EndNight([]int{1}, nil)

	s.Restart()
	first := snapshotOf(t, s)
	s.Restart()
	second := snapshotOf(t, s)
	if first != second {
		t.Fatalf("restart is not idempotent:\n%s\n%s", first, second)
	}
	if s.Status != StatusReady {
		t.Errorf("restart should return to ready, got %s", s.Status)
	}
	if len(s.Actions) != 0 || s.Plan != nil || s.LastNightDeaths != nil {
		t.Errorf("night-scoped fields survived restart")
	}
	if p := s.PlayerAt(1); p == nil || !p.Alive {
		t.Errorf("restart should revive players")
	}
}

func readyRoom(t *testing.T) *RoomState {
	t.Helper()
	s := NewRoomState("1234", "uid-0", testTemplate())
	seatEveryone(t, s)
	if err := s.AssignRoles(rand.New(rand.NewSource(7))); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(s.Players); i++ {
		if err := s.ViewRole(fmt.Sprintf("uid-%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func snapshotOf(t *testing.T, s *RoomState) string {
	t.Helper()
	raw, err := MarshalSnapshot(s)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}
