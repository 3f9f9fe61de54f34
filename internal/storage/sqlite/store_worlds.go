package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emberfall/warcouncil/internal/sim/domain/world"
	"github.com/emberfall/warcouncil/internal/storage"
)

// PutSnapshot persists one turn's world state, replacing any snapshot already
// stored for that turn.
func (s *Store) PutSnapshot(ctx context.Context, campaignID string, state world.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(campaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}
	if err := state.Validate(); err != nil {
		return fmt.Errorf("snapshot turn %d: %w", state.Turn, err)
	}

	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO world_snapshots (campaign_id, turn, state, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(campaign_id, turn) DO UPDATE SET
	state = excluded.state,
	created_at = excluded.created_at
`,
		campaignID,
		state.Turn,
		string(encoded),
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// GetSnapshot fetches the stored world state for one turn.
func (s *Store) GetSnapshot(ctx context.Context, campaignID string, turn int) (world.State, error) {
	return s.querySnapshot(ctx, `
SELECT state FROM world_snapshots
WHERE campaign_id = ? AND turn = ?
`, campaignID, turn)
}

// LatestSnapshot fetches the highest-turn snapshot for a campaign.
func (s *Store) LatestSnapshot(ctx context.Context, campaignID string) (world.State, error) {
	return s.querySnapshot(ctx, `
SELECT state FROM world_snapshots
WHERE campaign_id = ?
ORDER BY turn DESC
LIMIT 1
`, campaignID)
}

func (s *Store) querySnapshot(ctx context.Context, query string, args ...any) (world.State, error) {
	if err := ctx.Err(); err != nil {
		return world.State{}, err
	}
	if s == nil || s.sqlDB == nil {
		return world.State{}, fmt.Errorf("storage is not configured")
	}

	var encoded string
	if err := s.sqlDB.QueryRowContext(ctx, query, args...).Scan(&encoded); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return world.State{}, storage.ErrNotFound
		}
		return world.State{}, fmt.Errorf("get snapshot: %w", err)
	}

	var state world.State
	if err := json.Unmarshal([]byte(encoded), &state); err != nil {
		return world.State{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return state, nil
}
