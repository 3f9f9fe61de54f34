// Package perception computes each agent's subjective slice of the world: the
// fog-of-war visibility set and the threat grading derived from it.
package perception

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
)

// VisibleSlice is the set of entity and fact ids one persona may observe this
// turn. It always contains the persona's own entity id.
type VisibleSlice struct {
	Entities []string
	Facts    []string

	entitySet map[string]struct{}
}

// ContainsEntity reports whether id is visible.
func (v VisibleSlice) ContainsEntity(id string) bool {
	_, ok := v.entitySet[id]
	return ok
}

// ComputeVisibility derives the visible slice for one persona against one
// world snapshot.
//
// Per knowledge scope the reachable set is channel-specific: visual reaches
// entities within range of the persona's position, radio reaches radio-tagged
// entities within range, intel reaches same-faction entities at any distance.
// The union plus the persona's own id is the entity component. A fact is
// visible only when its text references at least one visible entity id.
//
// A persona whose entity is missing from the snapshot is a campaign setup
// error, reported as ACTOR_NOT_FOUND rather than a law violation.
func ComputeVisibility(w world.State, card persona.Card) (VisibleSlice, error) {
	self, ok := w.Entity(card.ID)
	if !ok {
		return VisibleSlice{}, apperrors.New(apperrors.CodeActorNotFound,
			fmt.Sprintf("persona %q has no entity in world turn %d", card.ID, w.Turn))
	}

	visible := map[string]struct{}{card.ID: {}}

	for _, scope := range card.Scopes {
		for _, e := range w.Entities {
			if e.ID == card.ID {
				continue
			}
			if reachable(scope, self, e) {
				visible[e.ID] = struct{}{}
			}
		}
	}

	slice := VisibleSlice{entitySet: visible}
	slice.Entities = make([]string, 0, len(visible))
	for id := range visible {
		slice.Entities = append(slice.Entities, id)
	}
	sort.Strings(slice.Entities)

	for _, f := range w.Facts {
		if factVisible(f, visible) {
			slice.Facts = append(slice.Facts, f.ID)
		}
	}

	return slice, nil
}

// reachable applies one channel's reachability rule between the persona's own
// entity and a candidate.
func reachable(scope persona.Scope, self, candidate world.Entity) bool {
	switch scope.Channel {
	case persona.ChannelVisual:
		d, known := world.Distance(self, candidate)
		// Unknown positions are maximally far: never visually reachable.
		return known && d <= scope.Range
	case persona.ChannelRadio:
		if !candidate.HasTag("radio") {
			return false
		}
		d, known := world.Distance(self, candidate)
		return known && d <= scope.Range
	case persona.ChannelIntel:
		return self.Faction != "" && candidate.Faction == self.Faction
	}
	return false
}

// factVisible reports whether the fact concerns at least one visible entity.
// Substring reference is the contract floor; ids are word-ish tokens so plain
// containment is adequate.
func factVisible(f world.Fact, visible map[string]struct{}) bool {
	for id := range visible {
		if strings.Contains(f.Text, id) {
			return true
		}
	}
	return false
}
