// Package template defines game boards: named multisets of role ids.
package template

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moxuan/werewolf-judge/internal/roles"
)

// Template is a fixed board. Roles is a multiset; seat i of a fresh room
// holds no role until assignment shuffles this list over the seats.
type Template struct {
	Name  string     `yaml:"name" json:"name"`
	Roles []roles.ID `yaml:"roles" json:"roles"`
}

// PlayerCount is the number of seats the board needs.
func (t Template) PlayerCount() int { return len(t.Roles) }

// BuiltIn boards. standard12 is the common beginner board; gods12 runs the
// magician/psychic/gargoyle/nightmare lineup.
var BuiltIn = []Template{
	{Name: "standard12", Roles: []roles.ID{
		roles.Wolf, roles.Wolf, roles.Wolf, roles.Wolf,
		roles.Seer, roles.Witch, roles.Hunter, roles.Guard,
		roles.Villager, roles.Villager, roles.Villager, roles.Villager,
	}},
	{Name: "gods12", Roles: []roles.ID{
		roles.Wolf, roles.Wolf, roles.Nightmare, roles.Gargoyle,
		roles.Magician, roles.Seer, roles.Witch, roles.Psychic,
		roles.Villager, roles.Villager, roles.Villager, roles.Elder,
	}},
	{Name: "novice9", Roles: []roles.ID{
		roles.Wolf, roles.Wolf, roles.Wolf,
		roles.Seer, roles.Witch, roles.Hunter,
		roles.Villager, roles.Villager, roles.Villager,
	}},
	{Name: "duo2", Roles: []roles.ID{roles.Wolf, roles.Villager}},
}

// Registry resolves template names for room creation.
type Registry struct {
	byName map[string]Template
}

// NewRegistry returns a registry holding the built-in boards.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Template, len(BuiltIn))}
	for _, t := range BuiltIn {
		r.byName[t.Name] = t
	}
	return r
}

// Get looks a template up by name.
func (r *Registry) Get(name string) (Template, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names lists registered template names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}

type catalogFile struct {
	Templates []Template `yaml:"templates"`
}

// LoadFile merges templates from a YAML catalog into the registry,
// overriding built-ins of the same name. Every role id must be known.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse template catalog: %w", err)
	}
	for _, t := range f.Templates {
		if err := Validate(t); err != nil {
			return fmt.Errorf("template %q: %w", t.Name, err)
		}
		r.byName[t.Name] = t
	}
	return nil
}

// Validate checks a template is usable: named, at least two roles, all known.
func Validate(t Template) error {
	if t.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(t.Roles) < 2 {
		return fmt.Errorf("needs at least 2 roles, has %d", len(t.Roles))
	}
	for _, id := range t.Roles {
		if !roles.Known(id) {
			return fmt.Errorf("unknown role id %q", id)
		}
	}
	return nil
}
