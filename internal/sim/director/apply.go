package director

import (
	"github.com/emberfall/warcouncil/internal/sim/adjudicator"
	"github.com/emberfall/warcouncil/internal/sim/domain/action"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
)

// buildMutation derives the world-change instruction for one accepted action:
// the actor pays the action's energy cost, attacks drain the target, and the
// proposal's expected effects shift fact confidence.
func (d *Director) buildMutation(w world.State, actorID string, p action.Proposal) world.Mutation {
	var m world.Mutation

	if cost := d.adj.Costs().Cost(p.Type); cost > 0 {
		m.Resources = append(m.Resources, world.ResourceDelta{
			EntityID: actorID,
			Resource: adjudicator.ResourceEnergy,
			Delta:    -cost,
		})
	}

	if p.Type == action.TypeAttack && p.Target != "" {
		m.Resources = append(m.Resources, world.ResourceDelta{
			EntityID: p.Target,
			Resource: adjudicator.ResourceEnergy,
			Delta:    -d.cfg.AttackDamage,
		})
	}

	for _, effect := range p.ExpectedEffects {
		if _, ok := w.Fact(effect.FactID); !ok {
			// Expected effects may only touch facts already in the world;
			// inventing facts is the chronicle layer's job.
			continue
		}
		m.Facts = append(m.Facts, world.FactDelta{
			Fact:            world.Fact{ID: effect.FactID},
			ConfidenceDelta: effect.Delta,
		})
	}

	return m
}
