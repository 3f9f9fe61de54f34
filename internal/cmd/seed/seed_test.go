package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/emberfall/warcouncil/internal/knowledge"
	"github.com/emberfall/warcouncil/internal/storage/sqlite"
)

func TestDemoWorldIsValid(t *testing.T) {
	if err := DemoWorld().Validate(); err != nil {
		t.Fatalf("demo world: %v", err)
	}
}

func TestDemoPersonasMatchDemoWorld(t *testing.T) {
	w := DemoWorld()
	for _, card := range DemoPersonas() {
		if err := card.Validate(); err != nil {
			t.Fatalf("persona %s: %v", card.ID, err)
		}
		if _, ok := w.Entity(card.ID); !ok {
			t.Fatalf("persona %s has no entity in the demo world", card.ID)
		}
	}
}

func TestRunSeedsDatabase(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		DBPath:     filepath.Join(t.TempDir(), "campaign.db"),
		CampaignID: "cmp-demo",
	}
	if err := run(ctx, cfg); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()

	w, err := store.LatestSnapshot(ctx, cfg.CampaignID)
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	if w.Turn != 0 || len(w.Entities) == 0 {
		t.Fatalf("snapshot = turn %d with %d entities", w.Turn, len(w.Entities))
	}

	cards, err := store.ListPersonas(ctx, cfg.CampaignID)
	if err != nil {
		t.Fatalf("list personas: %v", err)
	}
	if len(cards) != len(DemoPersonas()) {
		t.Fatalf("got %d personas, want %d", len(cards), len(DemoPersonas()))
	}

	snippets, err := store.SearchDoctrine(ctx, knowledge.Query{Faction: "north"})
	if err != nil {
		t.Fatalf("search doctrine: %v", err)
	}
	if len(snippets) == 0 {
		t.Fatal("expected seeded northern doctrine")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		DBPath:     filepath.Join(t.TempDir(), "campaign.db"),
		CampaignID: "cmp-demo",
	}
	if err := run(ctx, cfg); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := run(ctx, cfg); err != nil {
		t.Fatalf("second seed: %v", err)
	}
}
