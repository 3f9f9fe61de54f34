// Package decider ships a deterministic reference implementation of the
// director's decision contract. It stands in for an external decision process
// in local runs and demos; production campaigns plug their own Decider in.
package decider

import (
	"context"
	"fmt"
	"strings"

	"github.com/emberfall/warcouncil/internal/sim/briefing"
	"github.com/emberfall/warcouncil/internal/sim/domain/action"
	"github.com/emberfall/warcouncil/internal/sim/perception"
)

// Tactical picks one action per brief from a fixed priority ladder: engage the
// nearest close threat, reposition away from medium threats, scan when blind,
// observe otherwise. Same brief in, same proposal out.
type Tactical struct {
	// Aggressive also engages medium-distance threats.
	Aggressive bool
}

// Decide implements the director's Decider contract.
func (t *Tactical) Decide(ctx context.Context, brief briefing.Brief) (action.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return action.Proposal{}, err
	}

	if target, ok := t.engageable(brief.Threats); ok {
		return action.Proposal{
			Type:          action.TypeAttack,
			Target:        target,
			Intent:        fmt.Sprintf("engage %s before it closes", target),
			Justification: "nearest graded threat, strike while the range favors us",
			Confidence:    0.8,
		}, nil
	}

	if len(brief.Threats) > 0 {
		return action.Proposal{
			Type:          action.TypeMove,
			Intent:        "fall back to a covered position",
			Justification: fmt.Sprintf("%d threats visible but none worth engaging", len(brief.Threats)),
			Confidence:    0.7,
		}, nil
	}

	// Alone on the board with nothing but ourselves visible: sweep for contacts.
	if len(brief.Visible.Entities) <= 1 {
		return action.Proposal{
			Type:          action.TypeScan,
			Intent:        "sweep for contacts",
			Justification: "no other entity visible this turn",
			Confidence:    0.6,
		}, nil
	}

	return action.Proposal{
		Type:          action.TypeObserve,
		Intent:        "hold and watch",
		Justification: t.observeJustification(brief),
		Confidence:    0.5,
	}, nil
}

// engageable returns the first threat inside the ladder's engagement range.
// Threats arrive nearest grade first, so the first match is the priority pick.
func (t *Tactical) engageable(threats []perception.Threat) (string, bool) {
	for _, th := range threats {
		switch th.Distance {
		case perception.DistanceClose:
			return th.ID, true
		case perception.DistanceMedium:
			if t.Aggressive {
				return th.ID, true
			}
		}
	}
	return "", false
}

func (t *Tactical) observeJustification(brief briefing.Brief) string {
	if brief.LastActionsSummary != "" {
		return "quiet field, holding after: " + brief.LastActionsSummary
	}
	if len(brief.Doctrine) > 0 {
		first := brief.Doctrine[0].Text
		if len(first) > 80 {
			first = first[:80]
		}
		return "quiet field, doctrine advises patience: " + strings.TrimSpace(first)
	}
	return "quiet field, no orders pending"
}
