package adjudicator

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
	"github.com/emberfall/warcouncil/internal/sim/domain/action"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
	"github.com/emberfall/warcouncil/internal/sim/perception"
)

// AssetWeapon marks an entity as armed; AssetIncapacitated marks it unable to
// act beyond passive observation.
const (
	AssetWeapon        = "weapon"
	AssetIncapacitated = "incapacitated"
)

// checkResourceConservation enforces E001: an action must never drive the
// actor's tracked energy below zero.
func (a *Adjudicator) checkResourceConservation(actor world.Entity, p action.Proposal) *Violation {
	cost := a.costs.Cost(p.Type)
	if cost == 0 {
		return nil
	}
	remaining := actor.Asset(ResourceEnergy) - cost
	if remaining < 0 {
		return &Violation{
			Code: apperrors.CodeResourceNegative,
			Message: fmt.Sprintf("%s costs %v energy but %s holds %v",
				p.Type, cost, actor.ID, actor.Asset(ResourceEnergy)),
			Action: p,
		}
	}
	return nil
}

// checkInformationLimit enforces E002: a targeted action may only name an
// entity inside the actor's visible slice. Targetless actions always pass.
func (a *Adjudicator) checkInformationLimit(vis perception.VisibleSlice, p action.Proposal) *Violation {
	if p.Target == "" {
		return nil
	}
	if !vis.ContainsEntity(p.Target) {
		return &Violation{
			Code:    apperrors.CodeTargetInvalid,
			Message: fmt.Sprintf("target %q is outside the visible slice", p.Target),
			Action:  p,
		}
	}
	return nil
}

// checkStateConsistency enforces E003: the actor's own state must permit the
// action. Incapacitated actors may only observe or scan, attacks require a
// weapon asset, and persona taboos forbid their named actions and targets.
func (a *Adjudicator) checkStateConsistency(card persona.Card, actor world.Entity, p action.Proposal) *Violation {
	if actor.Asset(AssetIncapacitated) > 0 && p.Type != action.TypeObserve && p.Type != action.TypeScan {
		return &Violation{
			Code:    apperrors.CodeActionImpossible,
			Message: fmt.Sprintf("%s is incapacitated and may only observe or scan", actor.ID),
			Action:  p,
		}
	}
	if p.Type == action.TypeAttack && actor.Asset(AssetWeapon) <= 0 {
		return &Violation{
			Code:    apperrors.CodeActionImpossible,
			Message: fmt.Sprintf("%s has no weapon asset for an attack", actor.ID),
			Action:  p,
		}
	}
	if card.Taboo(string(p.Type)) {
		return &Violation{
			Code:    apperrors.CodeActionImpossible,
			Message: fmt.Sprintf("%s refuses %s: persona taboo", card.ID, p.Type),
			Action:  p,
		}
	}
	if card.Taboo(p.Target) {
		return &Violation{
			Code:    apperrors.CodeActionImpossible,
			Message: fmt.Sprintf("%s refuses to act on %s: persona taboo", card.ID, p.Target),
			Action:  p,
		}
	}
	return nil
}

// checkRuleAdherence enforces E004: the action must not contradict any world
// rule in force. Rules resolve through the registry; malformed rule
// expressions are skipped rather than blocking every action in the campaign.
func (a *Adjudicator) checkRuleAdherence(ctx context.Context, w world.State, p action.Proposal) *Violation {
	for _, rule := range w.Rules {
		violated, err := a.rules.Violates(ctx, rule, p)
		if err != nil {
			continue
		}
		if violated {
			return &Violation{
				Code:    apperrors.CodeLogicViolation,
				Message: fmt.Sprintf("action contradicts world rule %q", rule.Name),
				Action:  p,
			}
		}
	}
	return nil
}

// checkCanonPreservation enforces E005: intent and justification must not
// reference any canon-violation marker.
func (a *Adjudicator) checkCanonPreservation(p action.Proposal) *Violation {
	haystack := strings.ToLower(p.Intent + " " + p.Justification)
	for _, marker := range a.canonMarkers {
		if strings.Contains(haystack, marker) {
			return &Violation{
				Code:    apperrors.CodeCanonBreach,
				Message: fmt.Sprintf("narrative references forbidden canon marker %q", marker),
				Action:  p,
			}
		}
	}
	return nil
}

// defaultCanonMarkers lists the stock markers for impossible technology and
// timeline paradoxes in the default setting.
func defaultCanonMarkers() []string {
	return []string{
		"time travel",
		"time machine",
		"timeline paradox",
		"from the future",
		"teleport",
		"warp drive",
		"nuclear",
		"laser",
	}
}
