package perception

import (
	"sort"

	"github.com/emberfall/warcouncil/internal/sim/domain/world"
)

// Distance grades how far a threat is from the persona.
type Distance string

const (
	DistanceClose  Distance = "close"
	DistanceMedium Distance = "medium"
	DistanceFar    Distance = "far"
)

// Grade thresholds for threat distance, in the same Manhattan metric used by
// visibility.
const (
	closeRange  = 2
	mediumRange = 5
)

// Threat is one visible hostile entity with a distance grade.
type Threat struct {
	ID       string
	Distance Distance
}

// hostileRelations name the relation kinds that produce threats.
var hostileRelations = map[string]struct{}{
	"hostile_to": {},
	"enemy_of":   {},
}

// AssessThreats lists the persona's visible hostiles, nearest grade first.
//
// The information limit is a hard invariant here: a hostile outside the
// visible slice is never reported, however dangerous.
func AssessThreats(w world.State, personaID string, vis VisibleSlice) []Threat {
	self, ok := w.Entity(personaID)
	if !ok {
		return nil
	}

	var threats []Threat
	for _, r := range w.Relations {
		if r.Src != personaID {
			continue
		}
		if _, hostile := hostileRelations[r.Rel]; !hostile {
			continue
		}
		if !vis.ContainsEntity(r.Dst) {
			continue
		}
		target, ok := w.Entity(r.Dst)
		if !ok {
			continue
		}
		threats = append(threats, Threat{ID: r.Dst, Distance: gradeDistance(self, target)})
	}

	sort.Slice(threats, func(i, j int) bool {
		ri, rj := gradeRank(threats[i].Distance), gradeRank(threats[j].Distance)
		if ri != rj {
			return ri < rj
		}
		return threats[i].ID < threats[j].ID
	})
	return threats
}

func gradeDistance(self, target world.Entity) Distance {
	d, known := world.Distance(self, target)
	if !known {
		return DistanceFar
	}
	switch {
	case d <= closeRange:
		return DistanceClose
	case d <= mediumRange:
		return DistanceMedium
	default:
		return DistanceFar
	}
}

func gradeRank(d Distance) int {
	switch d {
	case DistanceClose:
		return 0
	case DistanceMedium:
		return 1
	default:
		return 2
	}
}
