// Package storage defines the persistence contracts consumed by the director
// and the brief builder. Implementations live in subpackages; tests use the
// in-memory fakes from testkit/simfakes.
package storage

import (
	"context"
	"time"

	"github.com/emberfall/warcouncil/internal/knowledge"
	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
	"github.com/emberfall/warcouncil/internal/sim/journal"
)

// ErrNotFound indicates a requested persistence record is missing. Callers use
// this to differentiate legitimate "no such record" states from storage
// failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// WorldStore persists per-turn world snapshots.
type WorldStore interface {
	PutSnapshot(ctx context.Context, campaignID string, s world.State) error
	GetSnapshot(ctx context.Context, campaignID string, turn int) (world.State, error)
	// LatestSnapshot returns the highest-turn snapshot for a campaign.
	LatestSnapshot(ctx context.Context, campaignID string) (world.State, error)
}

// JournalStore owns the append-only campaign log.
type JournalStore interface {
	AppendEntry(ctx context.Context, e journal.Entry) error
	LatestEntryByActor(ctx context.Context, campaignID, actorID string) (journal.Entry, error)
	ListEntriesByTurn(ctx context.Context, campaignID string, turn int) ([]journal.Entry, error)
}

// PersonaStore is the registry surface for persona cards. The core only reads
// cards; Put exists for seeding and external registry sync.
type PersonaStore interface {
	PutPersona(ctx context.Context, campaignID string, card persona.Card) error
	GetPersona(ctx context.Context, campaignID, personaID string) (persona.Card, error)
	ListPersonas(ctx context.Context, campaignID string) ([]persona.Card, error)
}

// DoctrineRecord is one stored knowledge-base document.
type DoctrineRecord struct {
	ID       string
	Faction  string
	Text     string
	SourceID string
}

// DoctrineStore owns the doctrine knowledge base and answers retrieval
// queries. Implementations satisfy knowledge.Retriever through SearchDoctrine.
type DoctrineStore interface {
	PutDoctrine(ctx context.Context, rec DoctrineRecord) error
	SearchDoctrine(ctx context.Context, q knowledge.Query) ([]knowledge.Snippet, error)
}

// TelemetryEvent records one operational occurrence.
type TelemetryEvent struct {
	Timestamp time.Time
	Severity  string
	Component string
	Message   string
	Metadata  map[string]string
}

// TelemetryStore records operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
}
