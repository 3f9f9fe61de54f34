package adjudicator

import (
	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
	"github.com/emberfall/warcouncil/internal/sim/domain/action"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/perception"
)

// repair builds the single substitute action for a failing code. The second
// return value is false when the code has no defined repair (E004, E005) or
// no substitute exists (E002 with no other visible entity).
func (a *Adjudicator) repair(code apperrors.Code, card persona.Card, vis perception.VisibleSlice, p action.Proposal) (action.Proposal, bool) {
	switch code {
	case apperrors.CodeResourceNegative, apperrors.CodeActionImpossible:
		return a.degrade(p), true
	case apperrors.CodeTargetInvalid:
		return a.retarget(card, vis, p)
	default:
		return action.Proposal{}, false
	}
}

// degrade substitutes a safe, uncosted action: scan for failed attacks,
// observe otherwise, with confidence scaled down.
func (a *Adjudicator) degrade(p action.Proposal) action.Proposal {
	repaired := p
	if p.Type == action.TypeAttack || p.Type == action.TypeScan {
		repaired.Type = action.TypeScan
	} else {
		repaired.Type = action.TypeObserve
	}
	repaired.Target = ""
	repaired.ExpectedEffects = nil
	repaired.Confidence = clamp01(p.Confidence * a.confidenceScale)
	return repaired
}

// retarget points the action at the lowest-sorted visible entity other than
// the actor and the rejected target.
func (a *Adjudicator) retarget(card persona.Card, vis perception.VisibleSlice, p action.Proposal) (action.Proposal, bool) {
	for _, id := range vis.Entities {
		if id == card.ID || id == p.Target {
			continue
		}
		repaired := p
		repaired.Target = id
		return repaired, true
	}
	return action.Proposal{}, false
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
