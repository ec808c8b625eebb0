package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/moxuan/werewolf-judge/internal/roles"
)

func TestBuiltInsAreValid(t *testing.T) {
	for _, tmpl := range BuiltIn {
		if err := Validate(tmpl); err != nil {
			t.Errorf("built-in %q invalid: %v", tmpl.Name, err)
		}
		if tmpl.PlayerCount() != len(tmpl.Roles) {
			t.Errorf("%q: player count mismatch", tmpl.Name)
		}
	}
}

func TestRegistryLoadFileMergesAndOverrides(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Get("standard12"); !ok {
		t.Fatalf("built-in missing")
	}

	catalog := `
templates:
  - name: tiny3
    roles: [wolf, seer, villager]
  - name: duo2
    roles: [wolf, witch]
`
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := reg.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	tiny, ok := reg.Get("tiny3")
	if !ok || tiny.PlayerCount() != 3 {
		t.Fatalf("tiny3 not loaded: %+v", tiny)
	}
	duo, _ := reg.Get("duo2")
	if duo.Roles[1] != roles.Witch {
		t.Fatalf("catalog should override built-ins, got %v", duo.Roles)
	}
}

func TestLoadFileRejectsUnknownRole(t *testing.T) {
	reg := NewRegistry()
	catalog := "templates:\n  - name: bad\n    roles: [wolf, dragon]\n"
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := reg.LoadFile(path); err == nil {
		t.Fatalf("unknown role id must fail the load")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Template{Name: "", Roles: []roles.ID{roles.Wolf, roles.Seer}}); err == nil {
		t.Errorf("missing name must fail")
	}
	if err := Validate(Template{Name: "one", Roles: []roles.ID{roles.Wolf}}); err == nil {
		t.Errorf("single-role board must fail")
	}
}
