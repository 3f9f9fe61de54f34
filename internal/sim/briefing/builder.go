package briefing

import (
	"context"
	"fmt"

	"github.com/emberfall/warcouncil/internal/knowledge"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
	"github.com/emberfall/warcouncil/internal/sim/perception"
)

// Journal reads the campaign log for the last-actions summary. The journal
// package's Reader satisfies this.
type Journal interface {
	LatestSummary(ctx context.Context, campaignID, actorID string) (string, error)
}

// Builder assembles turn briefs. Building is a pure function of the world
// snapshot, the persona card, and the injected retriever/journal state, so
// briefs for distinct agents in the same turn can be built concurrently.
type Builder struct {
	campaignID string
	injector   *Injector
	journal    Journal
}

// NewBuilder constructs a brief builder. The retriever and journal may be nil;
// the corresponding brief sections stay empty.
func NewBuilder(campaignID string, retriever knowledge.Retriever, journal Journal) *Builder {
	return &Builder{
		campaignID: campaignID,
		injector:   NewInjector(retriever),
		journal:    journal,
	}
}

// Build produces the subjective brief for one persona against one snapshot.
//
// A missing actor entity aborts with a setup error. Doctrine retrieval
// failures degrade to an empty doctrine section: the brief is still usable,
// and the error is returned alongside it for the caller to log.
func (b *Builder) Build(ctx context.Context, w world.State, card persona.Card) (Brief, error) {
	vis, err := perception.ComputeVisibility(w, card)
	if err != nil {
		return Brief{}, fmt.Errorf("visibility for %s: %w", card.ID, err)
	}

	brief := Brief{
		ForPersona: card.ID,
		Turn:       w.Turn,
		Visible:    vis,
		Threats:    perception.AssessThreats(w, card.ID, vis),
	}

	var retErr error
	brief.Doctrine, retErr = b.injector.Doctrine(ctx, w, card, vis)

	if b.journal != nil {
		summary, err := b.journal.LatestSummary(ctx, b.campaignID, card.ID)
		if err != nil && retErr == nil {
			retErr = err
		}
		brief.LastActionsSummary = summary
	}

	return brief, retErr
}
