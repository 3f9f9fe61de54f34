// Package adjudicator validates proposed actions against the five standing
// laws of the simulation and attempts one bounded repair on failure.
//
// Adjudication has no side effects: it returns a verdict and leaves world
// mutation to the director. The check sequence runs at most twice per
// proposal (original + one repair), so it always terminates.
package adjudicator

import (
	"context"
	"fmt"

	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
	"github.com/emberfall/warcouncil/internal/sim/domain/action"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
	"github.com/emberfall/warcouncil/internal/sim/perception"
)

// ResourceEnergy is the tracked resource consumed by costed actions.
const ResourceEnergy = "energy"

// Costs holds the energy price of costed action types. The values are
// campaign defaults, not fixed physics.
type Costs struct {
	Attack float64
	Move   float64
}

// DefaultCosts are the standing campaign defaults.
var DefaultCosts = Costs{Attack: 10, Move: 5}

// Cost returns the energy price of an action type, zero for uncosted types.
func (c Costs) Cost(t action.Type) float64 {
	switch t {
	case action.TypeAttack:
		return c.Attack
	case action.TypeMove:
		return c.Move
	default:
		return 0
	}
}

// Violation is a law breach. It carries the offending proposal so the journal
// can record what was attempted.
type Violation struct {
	Code    apperrors.Code
	Message string
	Action  action.Proposal
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

// Verdict is the outcome of a successful adjudication. Action is the proposal
// to apply, which differs from the input when a repair succeeded.
type Verdict struct {
	Action   action.Proposal
	Repaired bool
}

// Option configures an Adjudicator.
type Option func(*Adjudicator)

// WithCosts overrides the default action energy costs.
func WithCosts(c Costs) Option {
	return func(a *Adjudicator) { a.costs = c }
}

// WithRules replaces the rule registry used for logic checks.
func WithRules(r *RuleRegistry) Option {
	return func(a *Adjudicator) { a.rules = r }
}

// WithCanonMarkers replaces the canon-violation marker list.
func WithCanonMarkers(markers []string) Option {
	return func(a *Adjudicator) { a.canonMarkers = append([]string(nil), markers...) }
}

// WithConfidenceScale overrides the confidence multiplier applied to degraded
// repair actions.
func WithConfidenceScale(scale float64) Option {
	return func(a *Adjudicator) { a.confidenceScale = scale }
}

// Adjudicator enforces the laws in a fixed order.
type Adjudicator struct {
	costs           Costs
	rules           *RuleRegistry
	canonMarkers    []string
	confidenceScale float64
}

// New constructs an Adjudicator with campaign defaults.
func New(opts ...Option) *Adjudicator {
	a := &Adjudicator{
		costs:           DefaultCosts,
		rules:           NewRuleRegistry(),
		canonMarkers:    defaultCanonMarkers(),
		confidenceScale: 0.5,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Costs reports the energy costs in force, for callers deriving mutations
// from accepted actions.
func (a *Adjudicator) Costs() Costs {
	return a.costs
}

// Adjudicate validates one proposal for one persona against one snapshot.
//
// The five checks run in fixed order and fail fast. On the first violation a
// single substitute action keyed by the failing code is tried through the full
// sequence exactly once; if it also fails, the original violation is returned.
// A missing actor entity is a setup error, returned as ACTOR_NOT_FOUND and
// never repaired.
func (a *Adjudicator) Adjudicate(ctx context.Context, w world.State, card persona.Card, p action.Proposal) (Verdict, error) {
	if err := p.Validate(); err != nil {
		return Verdict{}, fmt.Errorf("proposal for %s: %w", card.ID, err)
	}

	actor, ok := w.Entity(card.ID)
	if !ok {
		return Verdict{}, apperrors.New(apperrors.CodeActorNotFound,
			fmt.Sprintf("persona %q has no entity in world turn %d", card.ID, w.Turn))
	}

	vis, err := perception.ComputeVisibility(w, card)
	if err != nil {
		return Verdict{}, err
	}

	original := a.check(ctx, w, card, actor, vis, p)
	if original == nil {
		return Verdict{Action: p}, nil
	}

	repaired, ok := a.repair(original.Code, card, vis, p)
	if !ok {
		return Verdict{}, original
	}
	if a.check(ctx, w, card, actor, vis, repaired) != nil {
		// Repair is never retried: surface the original failure.
		return Verdict{}, original
	}
	return Verdict{Action: repaired, Repaired: true}, nil
}

// check runs the law sequence once, returning the first violation.
func (a *Adjudicator) check(ctx context.Context, w world.State, card persona.Card, actor world.Entity, vis perception.VisibleSlice, p action.Proposal) *Violation {
	if v := a.checkResourceConservation(actor, p); v != nil {
		return v
	}
	if v := a.checkInformationLimit(vis, p); v != nil {
		return v
	}
	if v := a.checkStateConsistency(card, actor, p); v != nil {
		return v
	}
	if v := a.checkRuleAdherence(ctx, w, p); v != nil {
		return v
	}
	if v := a.checkCanonPreservation(p); v != nil {
		return v
	}
	return nil
}
