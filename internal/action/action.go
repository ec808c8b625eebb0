// Package action models night actions and their wire encoding.
package action

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moxuan/werewolf-judge/internal/roles"
)

// NoSeat marks "no target": a skipped action or a peaceful wolf vote.
const NoSeat = -1

var (
	ErrBadWire   = errors.New("malformed action wire")
	ErrBadSchema = errors.New("schema cannot decode this wire")
)

type Kind string

const (
	KindTarget       Kind = "target"
	KindWitch        Kind = "witch"
	KindMagicianSwap Kind = "magicianSwap"
	KindNone         Kind = "none"
)

// Action is the tagged union written into the room's action map. Exactly
// one interpretation applies per Kind: Seat for target (and for the witch's
// save or poison target), Save/Poison for witch, First/Second for the swap.
type Action struct {
	Kind   Kind `json:"kind"`
	Seat   int  `json:"seat,omitempty"`
	Save   bool `json:"save,omitempty"`
	Poison bool `json:"poison,omitempty"`
	First  int  `json:"first,omitempty"`
	Second int  `json:"second,omitempty"`
}

// None is the auto-filled action for skipped or blocked steps.
func None() Action { return Action{Kind: KindNone, Seat: NoSeat} }

// Target builds a plain single-seat action. seat may be NoSeat for a skip.
func Target(seat int) Action {
	if seat == NoSeat {
		return None()
	}
	return Action{Kind: KindTarget, Seat: seat}
}

// WitchSkip is the witch doing nothing.
func WitchSkip() Action { return Action{Kind: KindWitch, Seat: NoSeat} }

// WitchSave is the witch spending the antidote on the wolf victim.
func WitchSave(victim int) Action {
	return Action{Kind: KindWitch, Save: true, Seat: victim}
}

// WitchPoison is the witch spending the poison on seat.
func WitchPoison(seat int) Action {
	return Action{Kind: KindWitch, Poison: true, Seat: seat}
}

// Swap builds a magician swap of two distinct seats.
func Swap(first, second int) Action {
	return Action{Kind: KindMagicianSwap, First: first, Second: second}
}

// EncodeSwap packs a two-seat swap into one integer. second must be >= 1 so
// every encoded value is >= 100 and cannot collide with a plain seat index.
func EncodeSwap(first, second int) int {
	return first + second*100
}

// DecodeSwap splits a swap wire back into its two seats.
func DecodeSwap(wire int) (first, second int, err error) {
	if wire < 100 {
		return 0, 0, fmt.Errorf("%w: swap wire %d < 100", ErrBadWire, wire)
	}
	first = wire % 100
	second = wire / 100
	return first, second, nil
}

// witchWire is the object encoding of the witch's decision.
type witchWire struct {
	Save       bool `json:"save"`
	Poison     bool `json:"poison"`
	TargetSeat *int `json:"targetSeat"`
}

// DecodeWire turns a role-specific wire payload into an Action. Target-style
// schemas carry a bare seat integer (null or -1 to skip); the swap carries
// the packed integer; the witch carries an object. Semantic legality (alive
// targets, self-save, immunities) is checked by the coordinator, not here.
func DecodeWire(schema roles.Schema, wire json.RawMessage) (Action, error) {
	switch schema {
	case roles.SchemaTarget, roles.SchemaWolfVote:
		seat, err := decodeSeat(wire)
		if err != nil {
			return Action{}, err
		}
		return Target(seat), nil

	case roles.SchemaMagicianSwap:
		var packed int
		if err := json.Unmarshal(wire, &packed); err != nil {
			return Action{}, fmt.Errorf("%w: %v", ErrBadWire, err)
		}
		first, second, err := DecodeSwap(packed)
		if err != nil {
			return Action{}, err
		}
		if first == second {
			return Action{}, fmt.Errorf("%w: swap seats equal", ErrBadWire)
		}
		return Swap(first, second), nil

	case roles.SchemaWitch:
		var w witchWire
		if err := json.Unmarshal(wire, &w); err != nil {
			return Action{}, fmt.Errorf("%w: %v", ErrBadWire, err)
		}
		switch {
		case w.Save && w.Poison:
			return Action{}, fmt.Errorf("%w: save and poison together", ErrBadWire)
		case w.Poison:
			if w.TargetSeat == nil {
				return Action{}, fmt.Errorf("%w: poison needs a target", ErrBadWire)
			}
			return WitchPoison(*w.TargetSeat), nil
		case w.Save:
			seat := NoSeat
			if w.TargetSeat != nil {
				seat = *w.TargetSeat
			}
			return WitchSave(seat), nil
		default:
			return WitchSkip(), nil
		}

	default:
		return Action{}, fmt.Errorf("%w: %q", ErrBadSchema, schema)
	}
}

func decodeSeat(wire json.RawMessage) (int, error) {
	if len(wire) == 0 || string(wire) == "null" {
		return NoSeat, nil
	}
	var seat int
	if err := json.Unmarshal(wire, &seat); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadWire, err)
	}
	return seat, nil
}

// SwapSeat maps seat through a magician swap: a<->b, all others unchanged.
func SwapSeat(seat, a, b int) int {
	switch seat {
	case a:
		return b
	case b:
		return a
	default:
		return seat
	}
}
