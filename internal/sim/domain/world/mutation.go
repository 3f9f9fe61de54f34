package world

// ResourceDelta adjusts one numeric asset on one entity.
type ResourceDelta struct {
	EntityID string
	Resource string
	Delta    float64
}

// PositionChange moves an entity to a new "x,y" position.
type PositionChange struct {
	EntityID string
	Pos      string
}

// RelationDelta adds or removes a relation edge.
type RelationDelta struct {
	Relation Relation
	Remove   bool
}

// FactDelta upserts a fact or shifts the confidence of an existing one.
type FactDelta struct {
	Fact            Fact
	ConfidenceDelta float64
}

// Mutation is the world-change instruction the director derives from an
// accepted action. It is the only way a snapshot advances.
type Mutation struct {
	AdvanceTurn bool
	Resources   []ResourceDelta
	Positions   []PositionChange
	Relations   []RelationDelta
	Facts       []FactDelta
}

// IsZero reports whether the mutation would change nothing.
func (m Mutation) IsZero() bool {
	return !m.AdvanceTurn &&
		len(m.Resources) == 0 &&
		len(m.Positions) == 0 &&
		len(m.Relations) == 0 &&
		len(m.Facts) == 0
}

// Apply produces the next snapshot from s and m. The receiver snapshot is
// never modified. Resource adjustments on unknown entities or resources are
// ignored rather than failing: adjudication has already vetted the action, and
// a concurrent removal should not corrupt the turn.
func Apply(s State, m Mutation) State {
	next := s.Clone()

	for _, rd := range m.Resources {
		for i := range next.Entities {
			if next.Entities[i].ID != rd.EntityID {
				continue
			}
			if next.Entities[i].Assets == nil {
				next.Entities[i].Assets = map[string]float64{}
			}
			next.Entities[i].Assets[rd.Resource] += rd.Delta
		}
	}

	for _, pc := range m.Positions {
		for i := range next.Entities {
			if next.Entities[i].ID == pc.EntityID {
				next.Entities[i].Pos = pc.Pos
			}
		}
	}

	for _, rd := range m.Relations {
		if rd.Remove {
			kept := next.Relations[:0]
			for _, r := range next.Relations {
				if r != rd.Relation {
					kept = append(kept, r)
				}
			}
			next.Relations = kept
			continue
		}
		exists := false
		for _, r := range next.Relations {
			if r == rd.Relation {
				exists = true
				break
			}
		}
		if !exists {
			next.Relations = append(next.Relations, rd.Relation)
		}
	}

	for _, fd := range m.Facts {
		updated := false
		for i := range next.Facts {
			if next.Facts[i].ID != fd.Fact.ID {
				continue
			}
			if fd.Fact.Text != "" {
				next.Facts[i].Text = fd.Fact.Text
			}
			next.Facts[i].Confidence = clamp01(next.Facts[i].Confidence + fd.ConfidenceDelta)
			updated = true
		}
		if !updated && fd.Fact.ID != "" {
			f := fd.Fact
			f.Confidence = clamp01(f.Confidence + fd.ConfidenceDelta)
			next.Facts = append(next.Facts, f)
		}
	}

	if m.AdvanceTurn {
		next.Turn++
	}

	return next
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
