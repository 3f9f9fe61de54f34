package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/emberfall/warcouncil/internal/knowledge"
	"github.com/emberfall/warcouncil/internal/storage"
)

// PutDoctrine stores or replaces one knowledge-base document.
func (s *Store) PutDoctrine(ctx context.Context, rec storage.DoctrineRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("doctrine id is required")
	}
	if strings.TrimSpace(rec.Text) == "" {
		return fmt.Errorf("doctrine text is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO doctrine (id, faction, text, source_id)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	faction = excluded.faction,
	text = excluded.text,
	source_id = excluded.source_id
`,
		rec.ID,
		rec.Faction,
		rec.Text,
		rec.SourceID,
	)
	if err != nil {
		return fmt.Errorf("put doctrine: %w", err)
	}
	return nil
}

// SearchDoctrine answers a retrieval query from the stored knowledge base.
//
// Candidates are the querying faction's documents plus faction-neutral ones.
// They are ranked by how many query terms their text contains, ties broken by
// id for a stable order. With no terms the faction's documents rank by id.
func (s *Store) SearchDoctrine(ctx context.Context, q knowledge.Query) ([]knowledge.Snippet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	topK := q.TopK
	if topK <= 0 || topK > knowledge.MaxSnippets {
		topK = knowledge.MaxSnippets
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, text, source_id FROM doctrine
WHERE faction = ? OR faction = ''
ORDER BY id ASC
`, q.Faction)
	if err != nil {
		return nil, fmt.Errorf("search doctrine: %w", err)
	}
	defer rows.Close()

	type scored struct {
		id      string
		snippet knowledge.Snippet
		score   int
	}
	var candidates []scored
	for rows.Next() {
		var c scored
		if err := rows.Scan(&c.id, &c.snippet.Text, &c.snippet.SourceID); err != nil {
			return nil, fmt.Errorf("scan doctrine: %w", err)
		}
		c.score = termScore(c.snippet.Text, q.Terms)
		if len(q.Terms) > 0 && c.score == 0 {
			continue
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctrine: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	snippets := make([]knowledge.Snippet, 0, len(candidates))
	for _, c := range candidates {
		snippets = append(snippets, c.snippet)
	}
	return snippets, nil
}

// Retrieve satisfies knowledge.Retriever, so the store can be wired straight
// into the brief builder.
func (s *Store) Retrieve(ctx context.Context, q knowledge.Query) ([]knowledge.Snippet, error) {
	return s.SearchDoctrine(ctx, q)
}

func termScore(text string, terms []string) int {
	haystack := strings.ToLower(text)
	score := 0
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.Contains(haystack, term) {
			score++
		}
	}
	return score
}
