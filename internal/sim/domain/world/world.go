// Package world defines the objective simulation state shared by every agent.
//
// A State value is a read-only snapshot of one turn. The director is the single
// writer: it derives a Mutation from each accepted action and applies it to
// produce the next snapshot, so briefs for distinct agents can read the same
// State concurrently without locks.
package world

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
)

// idPattern constrains every entity, fact, and persona identifier.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidID reports whether s satisfies the shared identifier pattern.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}

// Entity is a single addressable thing in the world: a character, unit,
// structure, or piece of terrain agents can perceive and act on.
type Entity struct {
	ID      string
	Type    string
	Name    string
	Faction string
	// Pos holds "x,y" grid coordinates. Empty or unparseable positions are
	// treated as maximally far by perception.
	Pos    string
	Tags   []string
	Assets map[string]float64
}

// HasTag reports whether the entity carries the given tag.
func (e Entity) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Asset returns the named asset level, zero when absent.
func (e Entity) Asset(name string) float64 {
	if e.Assets == nil {
		return 0
	}
	return e.Assets[name]
}

// Relation is a directed, named edge between two entities.
type Relation struct {
	Src string
	Rel string
	Dst string
}

// Fact is a world-level statement with provenance and confidence.
type Fact struct {
	ID         string
	Text       string
	Confidence float64
	SourceID   string
}

// Rule is a free-text world rule in force for adjudication.
type Rule struct {
	Name string
	Expr string
}

// State is one turn's objective world snapshot.
type State struct {
	Turn      int
	Entities  []Entity
	Relations []Relation
	Facts     []Fact
	Rules     []Rule
}

// Entity returns the entity with the given id.
func (s State) Entity(id string) (Entity, bool) {
	for _, e := range s.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// Fact returns the fact with the given id.
func (s State) Fact(id string) (Fact, bool) {
	for _, f := range s.Facts {
		if f.ID == id {
			return f, true
		}
	}
	return Fact{}, false
}

// Validate checks structural invariants: non-negative turn, id pattern and
// uniqueness for entities and facts, confidence ranges, and relation endpoints.
func (s State) Validate() error {
	if s.Turn < 0 {
		return apperrors.New(apperrors.CodeWorldInvalid, fmt.Sprintf("turn %d is negative", s.Turn))
	}

	seenEntities := make(map[string]struct{}, len(s.Entities))
	for _, e := range s.Entities {
		if !ValidID(e.ID) {
			return apperrors.New(apperrors.CodeWorldInvalid, fmt.Sprintf("entity id %q is invalid", e.ID))
		}
		if _, dup := seenEntities[e.ID]; dup {
			return apperrors.New(apperrors.CodeWorldInvalid, fmt.Sprintf("entity id %q is duplicated", e.ID))
		}
		seenEntities[e.ID] = struct{}{}
	}

	seenFacts := make(map[string]struct{}, len(s.Facts))
	for _, f := range s.Facts {
		if !ValidID(f.ID) {
			return apperrors.New(apperrors.CodeWorldInvalid, fmt.Sprintf("fact id %q is invalid", f.ID))
		}
		if _, dup := seenFacts[f.ID]; dup {
			return apperrors.New(apperrors.CodeWorldInvalid, fmt.Sprintf("fact id %q is duplicated", f.ID))
		}
		seenFacts[f.ID] = struct{}{}
		if f.Confidence < 0 || f.Confidence > 1 {
			return apperrors.New(apperrors.CodeWorldInvalid, fmt.Sprintf("fact %q confidence %v outside [0,1]", f.ID, f.Confidence))
		}
	}

	for _, r := range s.Relations {
		if strings.TrimSpace(r.Rel) == "" {
			return apperrors.New(apperrors.CodeWorldInvalid, fmt.Sprintf("relation %s->%s has empty name", r.Src, r.Dst))
		}
		if _, ok := seenEntities[r.Src]; !ok {
			return apperrors.New(apperrors.CodeWorldInvalid, fmt.Sprintf("relation source %q is not an entity", r.Src))
		}
		if _, ok := seenEntities[r.Dst]; !ok {
			return apperrors.New(apperrors.CodeWorldInvalid, fmt.Sprintf("relation target %q is not an entity", r.Dst))
		}
	}

	for _, r := range s.Rules {
		if strings.TrimSpace(r.Name) == "" {
			return apperrors.New(apperrors.CodeWorldInvalid, "rule with empty name")
		}
	}

	return nil
}

// Clone returns a deep copy of the state. Apply mutates only the copy it
// returns, so callers holding the previous snapshot are unaffected.
func (s State) Clone() State {
	next := State{
		Turn:      s.Turn,
		Entities:  make([]Entity, len(s.Entities)),
		Relations: append([]Relation(nil), s.Relations...),
		Facts:     append([]Fact(nil), s.Facts...),
		Rules:     append([]Rule(nil), s.Rules...),
	}
	for i, e := range s.Entities {
		clone := e
		clone.Tags = append([]string(nil), e.Tags...)
		if e.Assets != nil {
			clone.Assets = make(map[string]float64, len(e.Assets))
			for k, v := range e.Assets {
				clone.Assets[k] = v
			}
		}
		next.Entities[i] = clone
	}
	return next
}
