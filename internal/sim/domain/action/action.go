// Package action defines the proposed-action contract between the external
// decision process and the adjudicator.
package action

import (
	"fmt"

	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
)

// Type enumerates the action verbs an agent may propose.
type Type string

const (
	TypeMove    Type = "move"
	TypeAttack  Type = "attack"
	TypeParley  Type = "parley"
	TypeRegroup Type = "regroup"
	TypeScan    Type = "scan"
	TypeObserve Type = "observe"
)

// ValidType reports whether t is a known action type.
func ValidType(t Type) bool {
	switch t {
	case TypeMove, TypeAttack, TypeParley, TypeRegroup, TypeScan, TypeObserve:
		return true
	}
	return false
}

const (
	// MaxIntentLen bounds the intent text.
	MaxIntentLen = 256
	// MaxJustificationLen bounds the justification text.
	MaxJustificationLen = 512
)

// EffectDelta is an expected fact-confidence shift declared by the proposer.
type EffectDelta struct {
	FactID string
	Delta  float64
}

// Proposal is one proposed action. It is produced by the decision process from
// a turn brief and consumed exactly once by the adjudicator.
type Proposal struct {
	Type            Type
	Target          string
	Intent          string
	Justification   string
	ExpectedEffects []EffectDelta
	DoctrineCheck   string
	Confidence      float64
}

// Validate checks the schema constraints carried by the action contract.
func (p Proposal) Validate() error {
	if !ValidType(p.Type) {
		return apperrors.New(apperrors.CodeProposalInvalid, fmt.Sprintf("unknown action type %q", p.Type))
	}
	if p.Target != "" && !world.ValidID(p.Target) {
		return apperrors.New(apperrors.CodeProposalInvalid, fmt.Sprintf("target id %q is invalid", p.Target))
	}
	if n := len(p.Intent); n < 1 || n > MaxIntentLen {
		return apperrors.New(apperrors.CodeProposalInvalid, fmt.Sprintf("intent length %d outside 1..%d", n, MaxIntentLen))
	}
	if n := len(p.Justification); n < 1 || n > MaxJustificationLen {
		return apperrors.New(apperrors.CodeProposalInvalid, fmt.Sprintf("justification length %d outside 1..%d", n, MaxJustificationLen))
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return apperrors.New(apperrors.CodeProposalInvalid, fmt.Sprintf("confidence %v outside [0,1]", p.Confidence))
	}
	for _, e := range p.ExpectedEffects {
		if !world.ValidID(e.FactID) {
			return apperrors.New(apperrors.CodeProposalInvalid, fmt.Sprintf("expected effect fact id %q is invalid", e.FactID))
		}
	}
	return nil
}
