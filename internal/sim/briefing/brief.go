// Package briefing composes perception, threat grading, doctrine retrieval,
// and the campaign log into the subjective turn brief handed to one agent.
package briefing

import (
	"github.com/emberfall/warcouncil/internal/knowledge"
	"github.com/emberfall/warcouncil/internal/sim/perception"
)

// Brief is the per-agent input package for one turn. It is created fresh each
// turn and never persisted beyond the turn it describes.
type Brief struct {
	ForPersona string
	Turn       int
	Visible    perception.VisibleSlice
	Threats    []perception.Threat
	// Doctrine holds at most knowledge.MaxSnippets retrieved snippets.
	Doctrine []knowledge.Snippet
	// LastActionsSummary is empty when the actor has no prior log entry.
	LastActionsSummary string
}
