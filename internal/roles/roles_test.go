package roles

import "testing"

func TestSeerCheckMatchesWolfTeam(t *testing.T) {
	for _, spec := range Catalog {
		got := SeerCheckResult(spec.ID)
		if spec.Team == TeamWolf && got != CheckWolf {
			t.Errorf("%s: expected %s, got %s", spec.ID, CheckWolf, got)
		}
		if spec.Team != TeamWolf && got != CheckGood {
			t.Errorf("%s: expected %s, got %s", spec.ID, CheckGood, got)
		}
	}
}

func TestLookupUnknownYieldsSentinel(t *testing.T) {
	spec := Lookup("no-such-role")
	if spec.Team != TeamGood || spec.Faction != FactionVillager {
		t.Errorf("unknown role should read as a good villager, got team=%s faction=%s", spec.Team, spec.Faction)
	}
	if spec.Night1.HasAction {
		t.Errorf("unknown role must not act at night")
	}
	if SeerCheckResult("no-such-role") != CheckGood {
		t.Errorf("unknown role should check as %s", CheckGood)
	}
}

func TestWolfKillImmuneRoleIDs(t *testing.T) {
	ids := WolfKillImmuneRoleIDs()
	want := map[ID]bool{Gargoyle: true, Elder: true}
	if len(ids) != len(want) {
		t.Fatalf("expected %d immune roles, got %v", len(want), ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected immune role %s", id)
		}
	}
}

func TestWolfMeetingParticipants(t *testing.T) {
	for _, id := range []ID{Wolf, WolfKing, Nightmare} {
		if !Lookup(id).WolfMeeting.ParticipatesInWolfVote {
			t.Errorf("%s should vote in the wolf meeting", id)
		}
	}
	if Lookup(Gargoyle).WolfMeeting.ParticipatesInWolfVote {
		t.Errorf("gargoyle sees the wolves but does not vote")
	}
	if !Lookup(Gargoyle).WolfMeeting.CanSeeWolves {
		t.Errorf("gargoyle should see the wolves")
	}
}

func TestEveryActingRoleHasSchema(t *testing.T) {
	for _, spec := range Catalog {
		if spec.Night1.HasAction && spec.Night1.Schema == SchemaNone {
			t.Errorf("%s acts at night but has no schema", spec.ID)
		}
	}
}
