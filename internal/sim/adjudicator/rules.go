package adjudicator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/emberfall/warcouncil/internal/sim/domain/action"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
)

// RulePredicate reports whether a proposal violates one named world rule.
type RulePredicate func(p action.Proposal) bool

// RuleRegistry resolves world rules to predicates. Named Go predicates take
// precedence; rules without one fall back to evaluating their free-text expr
// as a Lua predicate over the proposal. New rules register without touching
// the adjudicator's control flow.
type RuleRegistry struct {
	byName map[string]RulePredicate
}

// NewRuleRegistry builds a registry preloaded with the stock rules.
func NewRuleRegistry() *RuleRegistry {
	r := &RuleRegistry{byName: map[string]RulePredicate{}}
	r.Register("no_flight", noFlight)
	return r
}

// Register binds a predicate to a rule name, replacing any previous binding.
func (r *RuleRegistry) Register(name string, pred RulePredicate) {
	r.byName[name] = pred
}

// Violates evaluates one world rule against a proposal.
func (r *RuleRegistry) Violates(ctx context.Context, rule world.Rule, p action.Proposal) (bool, error) {
	if pred, ok := r.byName[rule.Name]; ok {
		return pred(p), nil
	}
	expr := strings.TrimSpace(rule.Expr)
	if expr == "" {
		return false, nil
	}
	return evalRuleExpr(expr, p)
}

// noFlight rejects movement whose stated intent involves flying. The default
// setting has no airborne units.
func noFlight(p action.Proposal) bool {
	if p.Type != action.TypeMove {
		return false
	}
	intent := strings.ToLower(p.Intent)
	for _, word := range []string{"fly", "flight", "airborne", "glide"} {
		if strings.Contains(intent, word) {
			return true
		}
	}
	return false
}

// evalRuleExpr runs a rule expression in a fresh Lua state with the proposal
// exposed as globals. The expression must evaluate to a boolean: true means
// the proposal violates the rule.
//
// Globals available to expressions: action_type, target, intent,
// justification (strings) and confidence (number).
func evalRuleExpr(expr string, p action.Proposal) (violated bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			violated = false
			err = fmt.Errorf("rule expr panicked: %v", r)
		}
	}()

	l := lua.NewState()
	lua.OpenLibraries(l)

	l.PushString(string(p.Type))
	l.SetGlobal("action_type")
	l.PushString(p.Target)
	l.SetGlobal("target")
	l.PushString(p.Intent)
	l.SetGlobal("intent")
	l.PushString(p.Justification)
	l.SetGlobal("justification")
	l.PushNumber(p.Confidence)
	l.SetGlobal("confidence")

	if err := lua.DoString(l, "return ("+expr+")"); err != nil {
		return false, fmt.Errorf("eval rule expr: %w", err)
	}
	violated = l.ToBoolean(-1)
	l.Pop(1)
	return violated, nil
}
