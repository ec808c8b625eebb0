package action

import (
	"encoding/json"
	"testing"

	"github.com/moxuan/werewolf-judge/internal/roles"
)

func TestSwapRoundTrip(t *testing.T) {
	const n = 12
	for a := 0; a < n; a++ {
		for b := 1; b < n; b++ {
			wire := EncodeSwap(a, b)
			if wire < 100 {
				t.Fatalf("EncodeSwap(%d,%d)=%d below 100, collides with plain seats", a, b, wire)
			}
			first, second, err := DecodeSwap(wire)
			if err != nil {
				t.Fatalf("DecodeSwap(%d): %v", wire, err)
			}
			if first != a || second != b {
				t.Errorf("round trip (%d,%d) -> %d -> (%d,%d)", a, b, wire, first, second)
			}
		}
	}
}

func TestDecodeSwapRejectsPlainSeat(t *testing.T) {
	if _, _, err := DecodeSwap(7); err == nil {
		t.Fatalf("expected error for wire below 100")
	}
}

func TestDecodeWireTarget(t *testing.T) {
	act, err := DecodeWire(roles.SchemaTarget, json.RawMessage(`3`))
	if err != nil {
		t.Fatal(err)
	}
	if act.Kind != KindTarget || act.Seat != 3 {
		t.Errorf("unexpected action %+v", act)
	}

	act, err = DecodeWire(roles.SchemaTarget, json.RawMessage(`null`))
	if err != nil {
		t.Fatal(err)
	}
	if act.Kind != KindNone {
		t.Errorf("null wire should decode to a skip, got %+v", act)
	}

	act, err = DecodeWire(roles.SchemaTarget, json.RawMessage(`-1`))
	if err != nil {
		t.Fatal(err)
	}
	if act.Kind != KindNone {
		t.Errorf("-1 wire should decode to a skip, got %+v", act)
	}
}

func TestDecodeWireMagician(t *testing.T) {
	act, err := DecodeWire(roles.SchemaMagicianSwap, json.RawMessage(`503`))
	if err != nil {
		t.Fatal(err)
	}
	if act.Kind != KindMagicianSwap || act.First != 3 || act.Second != 5 {
		t.Errorf("unexpected action %+v", act)
	}

	if _, err := DecodeWire(roles.SchemaMagicianSwap, json.RawMessage(`42`)); err == nil {
		t.Errorf("plain seat must not decode as a swap")
	}
	if _, err := DecodeWire(roles.SchemaMagicianSwap, json.RawMessage(`404`)); err == nil {
		t.Errorf("swapping a seat with itself must fail")
	}
}

func TestDecodeWireWitch(t *testing.T) {
	act, err := DecodeWire(roles.SchemaWitch, json.RawMessage(`{"save":true,"targetSeat":2}`))
	if err != nil {
		t.Fatal(err)
	}
	if !act.Save || act.Seat != 2 {
		t.Errorf("unexpected save %+v", act)
	}

	act, err = DecodeWire(roles.SchemaWitch, json.RawMessage(`{"poison":true,"targetSeat":4}`))
	if err != nil {
		t.Fatal(err)
	}
	if !act.Poison || act.Seat != 4 {
		t.Errorf("unexpected poison %+v", act)
	}

	act, err = DecodeWire(roles.SchemaWitch, json.RawMessage(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if act.Save || act.Poison || act.Seat != NoSeat {
		t.Errorf("empty witch wire should be a skip, got %+v", act)
	}

	if _, err := DecodeWire(roles.SchemaWitch, json.RawMessage(`{"poison":true}`)); err == nil {
		t.Errorf("poison without a target must fail")
	}
	if _, err := DecodeWire(roles.SchemaWitch, json.RawMessage(`{"save":true,"poison":true,"targetSeat":1}`)); err == nil {
		t.Errorf("save and poison together must fail")
	}
}

func TestSwapSeat(t *testing.T) {
	if got := SwapSeat(3, 3, 5); got != 5 {
		t.Errorf("SwapSeat(3,3,5)=%d", got)
	}
	if got := SwapSeat(5, 3, 5); got != 3 {
		t.Errorf("SwapSeat(5,3,5)=%d", got)
	}
	if got := SwapSeat(7, 3, 5); got != 7 {
		t.Errorf("SwapSeat(7,3,5)=%d", got)
	}
}
