// Package journal records per-agent turn outcomes for the campaign log.
//
// Entries are append-only; the latest entry per actor feeds the next brief's
// last-actions summary. Repairs never mask the original failure: a rejected
// entry always carries the first violation code, even when a repair was tried.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
)

// Outcome classifies one journal entry.
type Outcome string

const (
	// OutcomeAccepted records an action applied to the world.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeRejected records a terminal law violation.
	OutcomeRejected Outcome = "rejected"
	// OutcomeSystemError records a setup or decision-process failure,
	// distinct from any law violation.
	OutcomeSystemError Outcome = "system_error"
)

// Entry is one campaign-log record.
type Entry struct {
	ID         string
	CampaignID string
	Turn       int
	ActorID    string
	Outcome    Outcome
	// Code carries the violation or system error code for non-accepted
	// outcomes; empty for accepted entries.
	Code       apperrors.Code
	ActionType string
	Target     string
	Repaired   bool
	Summary    string
	CreatedAt  time.Time
}

// NewEntry builds an entry with a fresh uuid and a generated summary.
func NewEntry(campaignID string, turn int, actorID string, outcome Outcome, code apperrors.Code, actionType, target string, repaired bool, now time.Time) Entry {
	e := Entry{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		Turn:       turn,
		ActorID:    actorID,
		Outcome:    outcome,
		Code:       code,
		ActionType: actionType,
		Target:     target,
		Repaired:   repaired,
		CreatedAt:  now.UTC(),
	}
	e.Summary = Summarize(e)
	return e
}

// Summarize renders the one-line summary used for last-actions briefs.
func Summarize(e Entry) string {
	verb := e.ActionType
	if verb == "" {
		verb = "act"
	}
	target := ""
	if e.Target != "" {
		target = " on " + e.Target
	}
	switch e.Outcome {
	case OutcomeAccepted:
		if e.Repaired {
			return fmt.Sprintf("turn %d: %s%s succeeded after repair", e.Turn, verb, target)
		}
		return fmt.Sprintf("turn %d: %s%s succeeded", e.Turn, verb, target)
	case OutcomeRejected:
		return fmt.Sprintf("turn %d: %s%s rejected (%s)", e.Turn, verb, target, e.Code)
	case OutcomeSystemError:
		return fmt.Sprintf("turn %d: no action recorded (%s)", e.Turn, e.Code)
	default:
		return fmt.Sprintf("turn %d: %s%s", e.Turn, verb, target)
	}
}

// Store is the persistence surface the journal needs.
type Store interface {
	AppendEntry(ctx context.Context, e Entry) error
	// LatestEntryByActor returns the most recent entry for an actor, or a
	// NOT_FOUND domain error when the actor has never acted.
	LatestEntryByActor(ctx context.Context, campaignID, actorID string) (Entry, error)
	ListEntriesByTurn(ctx context.Context, campaignID string, turn int) ([]Entry, error)
}

// Reader exposes campaign-log reads for brief building.
type Reader struct {
	store Store
}

// NewReader wraps a journal store.
func NewReader(store Store) *Reader {
	return &Reader{store: store}
}

// LatestSummary returns the last-actions summary for an actor, empty when no
// prior entry exists. Absence is a valid empty result, not an error.
func (r *Reader) LatestSummary(ctx context.Context, campaignID, actorID string) (string, error) {
	if r == nil || r.store == nil {
		return "", nil
	}
	entry, err := r.store.LatestEntryByActor(ctx, campaignID, actorID)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return "", nil
		}
		return "", fmt.Errorf("latest entry for %s: %w", actorID, err)
	}
	return entry.Summary, nil
}
