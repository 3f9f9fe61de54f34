package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
	"github.com/emberfall/warcouncil/internal/sim/journal"
	"github.com/emberfall/warcouncil/internal/storage"
)

// AppendEntry persists one campaign-log record.
func (s *Store) AppendEntry(ctx context.Context, e journal.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("entry id is required")
	}
	if strings.TrimSpace(e.CampaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}
	if strings.TrimSpace(e.ActorID) == "" {
		return fmt.Errorf("actor id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO journal_entries (
	id, campaign_id, turn, actor_id, outcome, code, action_type, target, repaired, summary, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		e.ID,
		e.CampaignID,
		e.Turn,
		e.ActorID,
		string(e.Outcome),
		string(e.Code),
		e.ActionType,
		e.Target,
		e.Repaired,
		e.Summary,
		toMillis(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// LatestEntryByActor returns the most recent entry for an actor.
func (s *Store) LatestEntryByActor(ctx context.Context, campaignID, actorID string) (journal.Entry, error) {
	if err := ctx.Err(); err != nil {
		return journal.Entry{}, err
	}
	if s == nil || s.sqlDB == nil {
		return journal.Entry{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, campaign_id, turn, actor_id, outcome, code, action_type, target, repaired, summary, created_at
FROM journal_entries
WHERE campaign_id = ? AND actor_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT 1
`, campaignID, actorID)

	entry, err := scanJournalEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return journal.Entry{}, storage.ErrNotFound
		}
		return journal.Entry{}, fmt.Errorf("latest journal entry: %w", err)
	}
	return entry, nil
}

// ListEntriesByTurn returns a turn's entries in insertion order.
func (s *Store) ListEntriesByTurn(ctx context.Context, campaignID string, turn int) ([]journal.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, campaign_id, turn, actor_id, outcome, code, action_type, target, repaired, summary, created_at
FROM journal_entries
WHERE campaign_id = ? AND turn = ?
ORDER BY rowid ASC
`, campaignID, turn)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		entry, err := scanJournalEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

func scanJournalEntry(scan func(dest ...any) error) (journal.Entry, error) {
	var (
		e         journal.Entry
		outcome   string
		code      string
		createdAt int64
	)
	if err := scan(
		&e.ID,
		&e.CampaignID,
		&e.Turn,
		&e.ActorID,
		&outcome,
		&code,
		&e.ActionType,
		&e.Target,
		&e.Repaired,
		&e.Summary,
		&createdAt,
	); err != nil {
		return journal.Entry{}, err
	}
	e.Outcome = journal.Outcome(outcome)
	e.Code = apperrors.Code(code)
	e.CreatedAt = fromMillis(createdAt)
	return e, nil
}
