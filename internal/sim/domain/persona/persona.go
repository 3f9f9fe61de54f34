// Package persona models the read-only agent identity card consumed by
// perception, briefing, and adjudication.
//
// Cards are owned by an external persona registry. The core never mutates
// them; within one turn a card is treated as immutable.
package persona

import (
	"fmt"
	"strings"

	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
)

// Channel is a named perception modality with its own reachability rule.
type Channel string

const (
	// ChannelVisual reaches entities within range of the persona's position.
	ChannelVisual Channel = "visual"
	// ChannelRadio reaches radio-capable entities within range.
	ChannelRadio Channel = "radio"
	// ChannelIntel reaches same-faction entities irrespective of distance.
	ChannelIntel Channel = "intel"
)

// ValidChannel reports whether c names a known knowledge channel.
func ValidChannel(c Channel) bool {
	switch c {
	case ChannelVisual, ChannelRadio, ChannelIntel:
		return true
	}
	return false
}

// Belief is a weighted proposition the persona holds.
type Belief struct {
	Proposition string
	Weight      float64
}

// Trait is a weighted personality attribute.
type Trait struct {
	Name   string
	Weight float64
}

// Scope grants the persona one knowledge channel with a range.
type Scope struct {
	Channel Channel
	Range   int
}

// Card is the persona sheet for one agent.
type Card struct {
	ID      string
	Faction string
	Beliefs []Belief
	Traits  []Trait
	// Scopes lists the knowledge channels this persona perceives through.
	// At least one is required.
	Scopes []Scope
	// Taboos are forbidden action types or target ids for this persona.
	Taboos []string
}

// Taboo reports whether s matches one of the persona's taboos,
// case-insensitively.
func (c Card) Taboo(s string) bool {
	if s == "" {
		return false
	}
	for _, t := range c.Taboos {
		if strings.EqualFold(strings.TrimSpace(t), s) {
			return true
		}
	}
	return false
}

// Validate checks the card's structural invariants.
func (c Card) Validate() error {
	if !world.ValidID(c.ID) {
		return apperrors.New(apperrors.CodePersonaInvalid, fmt.Sprintf("persona id %q is invalid", c.ID))
	}
	if len(c.Beliefs) == 0 {
		return apperrors.New(apperrors.CodePersonaInvalid, "at least one belief is required")
	}
	for _, b := range c.Beliefs {
		if strings.TrimSpace(b.Proposition) == "" {
			return apperrors.New(apperrors.CodePersonaInvalid, "belief proposition is empty")
		}
		if b.Weight < 0 || b.Weight > 1 {
			return apperrors.New(apperrors.CodePersonaInvalid, fmt.Sprintf("belief weight %v outside [0,1]", b.Weight))
		}
	}
	for _, tr := range c.Traits {
		if tr.Weight < 0 || tr.Weight > 1 {
			return apperrors.New(apperrors.CodePersonaInvalid, fmt.Sprintf("trait weight %v outside [0,1]", tr.Weight))
		}
	}
	if len(c.Scopes) == 0 {
		return apperrors.New(apperrors.CodePersonaInvalid, "at least one knowledge scope is required")
	}
	for _, s := range c.Scopes {
		if !ValidChannel(s.Channel) {
			return apperrors.New(apperrors.CodePersonaInvalid, fmt.Sprintf("unknown channel %q", s.Channel))
		}
		if s.Range < 0 {
			return apperrors.New(apperrors.CodePersonaInvalid, fmt.Sprintf("channel %s range %d is negative", s.Channel, s.Range))
		}
	}
	return nil
}
