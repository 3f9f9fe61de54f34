package briefing

import (
	"context"
	"fmt"

	"github.com/emberfall/warcouncil/internal/knowledge"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
	"github.com/emberfall/warcouncil/internal/sim/perception"
)

// Injector adapts the knowledge-base retrieval contract into a bounded
// doctrine list for a brief. It is a pass-through with a bound: snippet text
// is never invented or edited here.
type Injector struct {
	retriever knowledge.Retriever
}

// NewInjector wraps a retriever.
func NewInjector(retriever knowledge.Retriever) *Injector {
	return &Injector{retriever: retriever}
}

// Doctrine issues exactly one retrieval call for the brief and truncates the
// result to knowledge.MaxSnippets. The query combines the persona's faction
// with up to knowledge.MaxQueryTerms currently visible entity names.
func (i *Injector) Doctrine(ctx context.Context, w world.State, card persona.Card, vis perception.VisibleSlice) ([]knowledge.Snippet, error) {
	if i == nil || i.retriever == nil {
		return nil, nil
	}

	q := knowledge.Query{
		Faction: card.Faction,
		Terms:   queryTerms(w, vis),
		TopK:    knowledge.MaxSnippets,
	}
	snippets, err := i.retriever.Retrieve(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("retrieve doctrine for %s: %w", card.ID, err)
	}
	if len(snippets) > knowledge.MaxSnippets {
		snippets = snippets[:knowledge.MaxSnippets]
	}
	return snippets, nil
}

// queryTerms collects visible entity names, preferring human names over raw
// ids, capped at knowledge.MaxQueryTerms.
func queryTerms(w world.State, vis perception.VisibleSlice) []string {
	var terms []string
	for _, id := range vis.Entities {
		if len(terms) == knowledge.MaxQueryTerms {
			break
		}
		e, ok := w.Entity(id)
		if !ok {
			continue
		}
		name := e.Name
		if name == "" {
			name = e.ID
		}
		terms = append(terms, name)
	}
	return terms
}
