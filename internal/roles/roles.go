// Package roles provides the static role catalog for the night judge.
package roles

import "go.uber.org/zap"

// ID identifies a role in templates, plans and wire payloads.
type ID string

const (
	Wolf      ID = "wolf"
	WolfKing  ID = "wolfKing"
	Nightmare ID = "nightmare"
	Gargoyle  ID = "gargoyle"
	Villager  ID = "villager"
	Elder     ID = "elder"
	Seer      ID = "seer"
	Witch     ID = "witch"
	Guard     ID = "guard"
	Hunter    ID = "hunter"
	Magician  ID = "magician"
	Psychic   ID = "psychic"
	Idiot     ID = "idiot"
)

// Faction groups roles for board composition.
type Faction string

const (
	FactionWolf     Faction = "wolf"
	FactionVillager Faction = "villager"
	FactionGod      Faction = "god"
	FactionSpecial  Faction = "special"
)

// Team is the side a role wins with, and what the seer sees.
type Team string

const (
	TeamWolf  Team = "wolf"
	TeamGood  Team = "good"
	TeamThird Team = "third"
)

// Schema selects how a role's night action is encoded and validated.
type Schema string

const (
	SchemaNone         Schema = ""
	SchemaTarget       Schema = "target"
	SchemaWitch        Schema = "witch"
	SchemaMagicianSwap Schema = "magicianSwap"
	SchemaWolfVote     Schema = "wolfVote"
)

// WolfMeetingID is the synthetic role id of the consolidated wolf-vote step.
const WolfMeetingID ID = "wolf-meeting"

// Seer check results. Wolf-team roles read as 狼人, everyone else as 好人.
const (
	CheckWolf = "狼人"
	CheckGood = "好人"
)

// Night1 describes a role's first-night action.
type Night1 struct {
	HasAction bool
	Order     int
	Schema    Schema
	// AllowSelf permits targeting the actor's own seat.
	AllowSelf bool
}

// WolfMeeting describes a role's relation to the shared wolf step.
type WolfMeeting struct {
	ParticipatesInWolfVote bool
	CanSeeWolves           bool
}

// Flags are passive role properties consulted by the resolver and validators.
type Flags struct {
	ImmuneToWolfKill bool
	ImmuneToPoison   bool
	// CanSaveSelf only matters for the witch.
	CanSaveSelf bool
}

// Spec is one immutable role record.
type Spec struct {
	ID          ID
	DisplayName string
	Faction     Faction
	Team        Team
	Night1      Night1
	WolfMeeting WolfMeeting
	Flags       Flags
}

// Catalog holds every role the judge can seat. Night orders follow the
// customary call order: magician first, then nightmare, guard, wolves,
// seer, psychic, gargoyle, witch.
var Catalog = []Spec{
	{ID: Magician, DisplayName: "魔术师", Faction: FactionGod, Team: TeamGood,
		Night1: Night1{HasAction: true, Order: 5, Schema: SchemaMagicianSwap}},
	{ID: Nightmare, DisplayName: "梦魇", Faction: FactionWolf, Team: TeamWolf,
		Night1:      Night1{HasAction: true, Order: 10, Schema: SchemaTarget},
		WolfMeeting: WolfMeeting{ParticipatesInWolfVote: true, CanSeeWolves: true}},
	{ID: Guard, DisplayName: "守卫", Faction: FactionGod, Team: TeamGood,
		Night1: Night1{HasAction: true, Order: 20, Schema: SchemaTarget, AllowSelf: true}},
	{ID: Wolf, DisplayName: "狼人", Faction: FactionWolf, Team: TeamWolf,
		Night1:      Night1{HasAction: true, Order: 30, Schema: SchemaWolfVote},
		WolfMeeting: WolfMeeting{ParticipatesInWolfVote: true, CanSeeWolves: true}},
	{ID: WolfKing, DisplayName: "狼王", Faction: FactionWolf, Team: TeamWolf,
		Night1:      Night1{HasAction: true, Order: 30, Schema: SchemaWolfVote},
		WolfMeeting: WolfMeeting{ParticipatesInWolfVote: true, CanSeeWolves: true}},
	{ID: Seer, DisplayName: "预言家", Faction: FactionGod, Team: TeamGood,
		Night1: Night1{HasAction: true, Order: 40, Schema: SchemaTarget}},
	{ID: Psychic, DisplayName: "通灵师", Faction: FactionGod, Team: TeamGood,
		Night1: Night1{HasAction: true, Order: 45, Schema: SchemaTarget}},
	{ID: Gargoyle, DisplayName: "石像鬼", Faction: FactionWolf, Team: TeamWolf,
		Night1:      Night1{HasAction: true, Order: 46, Schema: SchemaTarget},
		WolfMeeting: WolfMeeting{CanSeeWolves: true},
		Flags:       Flags{ImmuneToWolfKill: true, ImmuneToPoison: true}},
	{ID: Witch, DisplayName: "女巫", Faction: FactionGod, Team: TeamGood,
		Night1: Night1{HasAction: true, Order: 50, Schema: SchemaWitch}},
	{ID: Villager, DisplayName: "村民", Faction: FactionVillager, Team: TeamGood},
	{ID: Elder, DisplayName: "长老", Faction: FactionVillager, Team: TeamGood,
		Flags: Flags{ImmuneToWolfKill: true}},
	{ID: Hunter, DisplayName: "猎人", Faction: FactionGod, Team: TeamGood},
	{ID: Idiot, DisplayName: "白痴", Faction: FactionGod, Team: TeamGood},
}

var specByID map[ID]*Spec

func init() {
	specByID = make(map[ID]*Spec, len(Catalog))
	for i := range Catalog {
		specByID[Catalog[i].ID] = &Catalog[i]
	}
}

// sentinel is returned for unknown ids so derived queries never fail.
var sentinel = Spec{Faction: FactionVillager, Team: TeamGood, DisplayName: "村民"}

var logger = zap.NewNop()

// SetLogger installs the process logger used for unknown-id warnings.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Lookup returns the spec for id, or a good-team villager sentinel for
// unknown ids.
func Lookup(id ID) *Spec {
	if s, ok := specByID[id]; ok {
		return s
	}
	logger.Warn("unknown role id", zap.String("role_id", string(id)))
	s := sentinel
	s.ID = id
	return &s
}

// Known reports whether id names a catalogued role.
func Known(id ID) bool {
	_, ok := specByID[id]
	return ok
}

// IsWolfRole reports whether id is on the wolf team.
func IsWolfRole(id ID) bool {
	return Lookup(id).Team == TeamWolf
}

// SeerCheckResult is what the seer learns about a role.
func SeerCheckResult(id ID) string {
	if IsWolfRole(id) {
		return CheckWolf
	}
	return CheckGood
}

// WolfKillImmuneRoleIDs lists roles the wolf vote may not target.
func WolfKillImmuneRoleIDs() []ID {
	var ids []ID
	for i := range Catalog {
		if Catalog[i].Flags.ImmuneToWolfKill {
			ids = append(ids, Catalog[i].ID)
		}
	}
	return ids
}

// DisplayName resolves the reveal name for id.
func DisplayName(id ID) string {
	return Lookup(id).DisplayName
}
