// Package simfakes provides deterministic in-memory fakes for simulation
// tests: retriever, decider, persona registry, and stores.
package simfakes

import (
	"context"
	"sort"
	"sync"

	"github.com/emberfall/warcouncil/internal/knowledge"
	"github.com/emberfall/warcouncil/internal/sim/briefing"
	"github.com/emberfall/warcouncil/internal/sim/domain/action"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
	"github.com/emberfall/warcouncil/internal/sim/journal"
	"github.com/emberfall/warcouncil/internal/storage"
)

// Retriever returns canned snippets and records every query.
type Retriever struct {
	Snippets []knowledge.Snippet
	Err      error

	mu      sync.Mutex
	queries []knowledge.Query
}

// Retrieve implements knowledge.Retriever.
func (r *Retriever) Retrieve(ctx context.Context, q knowledge.Query) ([]knowledge.Snippet, error) {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Snippets, nil
}

// Queries returns the recorded retrieval calls.
func (r *Retriever) Queries() []knowledge.Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]knowledge.Query(nil), r.queries...)
}

// Decider answers with a per-actor scripted proposal, falling back to a
// default when the actor has no script. The zero default is a safe observe.
type Decider struct {
	ByActor map[string]action.Proposal
	Default action.Proposal
	Err     error
	// DecideFn, when set, overrides the scripted behavior entirely.
	DecideFn func(ctx context.Context, brief briefing.Brief) (action.Proposal, error)
}

// Decide implements the director's Decider contract.
func (d *Decider) Decide(ctx context.Context, brief briefing.Brief) (action.Proposal, error) {
	if d.DecideFn != nil {
		return d.DecideFn(ctx, brief)
	}
	if d.Err != nil {
		return action.Proposal{}, d.Err
	}
	if p, ok := d.ByActor[brief.ForPersona]; ok {
		return p, nil
	}
	if d.Default.Type != "" {
		return d.Default, nil
	}
	return action.Proposal{
		Type:          action.TypeObserve,
		Intent:        "observe the field",
		Justification: "no orders scripted",
		Confidence:    0.5,
	}, nil
}

// Personas is an in-memory persona registry.
type Personas struct {
	Cards map[string]persona.Card
}

// GetPersona implements the registry lookup.
func (p *Personas) GetPersona(ctx context.Context, campaignID, personaID string) (persona.Card, error) {
	card, ok := p.Cards[personaID]
	if !ok {
		return persona.Card{}, storage.ErrNotFound
	}
	return card, nil
}

// PutPersona implements storage.PersonaStore for seeding tests.
func (p *Personas) PutPersona(ctx context.Context, campaignID string, card persona.Card) error {
	if p.Cards == nil {
		p.Cards = map[string]persona.Card{}
	}
	p.Cards[card.ID] = card
	return nil
}

// ListPersonas implements storage.PersonaStore.
func (p *Personas) ListPersonas(ctx context.Context, campaignID string) ([]persona.Card, error) {
	ids := make([]string, 0, len(p.Cards))
	for id := range p.Cards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	cards := make([]persona.Card, 0, len(ids))
	for _, id := range ids {
		cards = append(cards, p.Cards[id])
	}
	return cards, nil
}

// Journal is an in-memory append-only campaign log.
type Journal struct {
	mu      sync.Mutex
	Entries []journal.Entry
}

// AppendEntry implements storage.JournalStore.
func (j *Journal) AppendEntry(ctx context.Context, e journal.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Entries = append(j.Entries, e)
	return nil
}

// LatestEntryByActor implements storage.JournalStore.
func (j *Journal) LatestEntryByActor(ctx context.Context, campaignID, actorID string) (journal.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := len(j.Entries) - 1; i >= 0; i-- {
		e := j.Entries[i]
		if e.CampaignID == campaignID && e.ActorID == actorID {
			return e, nil
		}
	}
	return journal.Entry{}, storage.ErrNotFound
}

// ListEntriesByTurn implements storage.JournalStore.
func (j *Journal) ListEntriesByTurn(ctx context.Context, campaignID string, turn int) ([]journal.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []journal.Entry
	for _, e := range j.Entries {
		if e.CampaignID == campaignID && e.Turn == turn {
			out = append(out, e)
		}
	}
	return out, nil
}

// Telemetry captures emitted events.
type Telemetry struct {
	mu     sync.Mutex
	Events []storage.TelemetryEvent
}

// AppendTelemetryEvent implements storage.TelemetryStore.
func (t *Telemetry) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Events = append(t.Events, evt)
	return nil
}

// Worlds is an in-memory snapshot store.
type Worlds struct {
	mu        sync.Mutex
	Snapshots map[int]world.State
}

// PutSnapshot implements storage.WorldStore.
func (w *Worlds) PutSnapshot(ctx context.Context, campaignID string, s world.State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Snapshots == nil {
		w.Snapshots = map[int]world.State{}
	}
	w.Snapshots[s.Turn] = s.Clone()
	return nil
}

// GetSnapshot implements storage.WorldStore.
func (w *Worlds) GetSnapshot(ctx context.Context, campaignID string, turn int) (world.State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.Snapshots[turn]
	if !ok {
		return world.State{}, storage.ErrNotFound
	}
	return s.Clone(), nil
}

// LatestSnapshot implements storage.WorldStore.
func (w *Worlds) LatestSnapshot(ctx context.Context, campaignID string) (world.State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	best := -1
	for turn := range w.Snapshots {
		if turn > best {
			best = turn
		}
	}
	if best < 0 {
		return world.State{}, storage.ErrNotFound
	}
	return w.Snapshots[best].Clone(), nil
}
