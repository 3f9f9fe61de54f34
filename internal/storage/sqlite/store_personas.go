package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/storage"
)

// PutPersona stores or replaces one persona card.
func (s *Store) PutPersona(ctx context.Context, campaignID string, card persona.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(campaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}
	if err := card.Validate(); err != nil {
		return err
	}

	encoded, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("marshal persona card: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO personas (campaign_id, persona_id, card, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(campaign_id, persona_id) DO UPDATE SET
	card = excluded.card,
	updated_at = excluded.updated_at
`,
		campaignID,
		card.ID,
		string(encoded),
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put persona: %w", err)
	}
	return nil
}

// GetPersona fetches one persona card by id.
func (s *Store) GetPersona(ctx context.Context, campaignID, personaID string) (persona.Card, error) {
	if err := ctx.Err(); err != nil {
		return persona.Card{}, err
	}
	if s == nil || s.sqlDB == nil {
		return persona.Card{}, fmt.Errorf("storage is not configured")
	}

	var encoded string
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT card FROM personas
WHERE campaign_id = ? AND persona_id = ?
`, campaignID, personaID).Scan(&encoded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persona.Card{}, storage.ErrNotFound
		}
		return persona.Card{}, fmt.Errorf("get persona: %w", err)
	}

	var card persona.Card
	if err := json.Unmarshal([]byte(encoded), &card); err != nil {
		return persona.Card{}, fmt.Errorf("unmarshal persona card: %w", err)
	}
	return card, nil
}

// ListPersonas returns a campaign's persona cards ordered by id.
func (s *Store) ListPersonas(ctx context.Context, campaignID string) ([]persona.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT card FROM personas
WHERE campaign_id = ?
ORDER BY persona_id ASC
`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	defer rows.Close()

	var cards []persona.Card
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, fmt.Errorf("scan persona: %w", err)
		}
		var card persona.Card
		if err := json.Unmarshal([]byte(encoded), &card); err != nil {
			return nil, fmt.Errorf("unmarshal persona card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate personas: %w", err)
	}
	return cards, nil
}
