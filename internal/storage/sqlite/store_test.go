package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/emberfall/warcouncil/internal/knowledge"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
	"github.com/emberfall/warcouncil/internal/sim/journal"
	"github.com/emberfall/warcouncil/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "campaign.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campaign.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestJournalRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	first := journal.NewEntry("cmp-1", 1, "scout-1", journal.OutcomeAccepted, "", "move", "", false, base)
	second := journal.NewEntry("cmp-1", 2, "scout-1", journal.OutcomeRejected, "E004_LOGIC_VIOLATION", "move", "", false, base.Add(time.Minute))
	for _, e := range []journal.Entry{first, second} {
		if err := store.AppendEntry(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	latest, err := store.LatestEntryByActor(ctx, "cmp-1", "scout-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != second.ID || latest.Outcome != journal.OutcomeRejected || latest.Code != second.Code {
		t.Fatalf("latest = %+v, want %+v", latest, second)
	}
	if latest.Summary != second.Summary || !latest.CreatedAt.Equal(second.CreatedAt) {
		t.Fatalf("latest = %+v, want %+v", latest, second)
	}

	entries, err := store.ListEntriesByTurn(ctx, "cmp-1", 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != first.ID {
		t.Fatalf("entries = %+v", entries)
	}

	if _, err := store.LatestEntryByActor(ctx, "cmp-1", "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestWorldSnapshotRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	one := world.State{Turn: 1, Entities: []world.Entity{
		{ID: "scout-1", Faction: "north", Pos: "0,0", Assets: map[string]float64{"energy": 20}},
	}}
	two := world.Apply(one, world.Mutation{AdvanceTurn: true})
	for _, s := range []world.State{one, two} {
		if err := store.PutSnapshot(ctx, "cmp-1", s); err != nil {
			t.Fatalf("put snapshot turn %d: %v", s.Turn, err)
		}
	}

	got, err := store.GetSnapshot(ctx, "cmp-1", 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	e, ok := got.Entity("scout-1")
	if !ok || e.Asset("energy") != 20 {
		t.Fatalf("snapshot entity = %+v", e)
	}

	latest, err := store.LatestSnapshot(ctx, "cmp-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Turn != 2 {
		t.Fatalf("latest turn = %d, want 2", latest.Turn)
	}

	if _, err := store.LatestSnapshot(ctx, "cmp-other"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestPersonaRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	card := persona.Card{
		ID:      "scout-1",
		Faction: "north",
		Beliefs: []persona.Belief{{Proposition: "the pass must hold", Weight: 0.9}},
		Scopes:  []persona.Scope{{Channel: persona.ChannelVisual, Range: 6}},
		Taboos:  []string{"attack"},
	}
	if err := store.PutPersona(ctx, "cmp-1", card); err != nil {
		t.Fatalf("put persona: %v", err)
	}

	got, err := store.GetPersona(ctx, "cmp-1", "scout-1")
	if err != nil {
		t.Fatalf("get persona: %v", err)
	}
	if got.ID != card.ID || got.Faction != card.Faction || len(got.Scopes) != 1 {
		t.Fatalf("card = %+v", got)
	}
	if !got.Taboo("ATTACK") {
		t.Fatal("taboos lost in round trip")
	}

	cards, err := store.ListPersonas(ctx, "cmp-1")
	if err != nil {
		t.Fatalf("list personas: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}

	if err := store.PutPersona(ctx, "cmp-1", persona.Card{ID: "bad"}); err == nil {
		t.Fatal("expected validation error for card without beliefs")
	}
	if _, err := store.GetPersona(ctx, "cmp-1", "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestDoctrineSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	records := []storage.DoctrineRecord{
		{ID: "doc-1", Faction: "north", Text: "never pursue raiders into the dust flats", SourceID: "field-manual"},
		{ID: "doc-2", Faction: "north", Text: "hold the keep at all costs", SourceID: "field-manual"},
		{ID: "doc-3", Faction: "", Text: "raiders avoid the keep after dusk", SourceID: "scout-report"},
		{ID: "doc-4", Faction: "south", Text: "raiders strike the keep at dawn", SourceID: "enemy-orders"},
	}
	for _, rec := range records {
		if err := store.PutDoctrine(ctx, rec); err != nil {
			t.Fatalf("put doctrine %s: %v", rec.ID, err)
		}
	}

	snippets, err := store.SearchDoctrine(ctx, knowledge.Query{
		Faction: "north",
		Terms:   []string{"raiders", "keep"},
		TopK:    8,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// doc-3 matches both terms; doc-1 and doc-2 match one each; doc-4 belongs
	// to another faction and must never surface.
	if len(snippets) != 3 {
		t.Fatalf("got %d snippets, want 3: %+v", len(snippets), snippets)
	}
	if snippets[0].SourceID != "scout-report" {
		t.Fatalf("top snippet = %+v, want the double match", snippets[0])
	}
	for _, sn := range snippets {
		if sn.SourceID == "enemy-orders" {
			t.Fatalf("other faction's doctrine leaked: %+v", sn)
		}
	}

	limited, err := store.SearchDoctrine(ctx, knowledge.Query{Faction: "north", Terms: []string{"raiders", "keep"}, TopK: 1})
	if err != nil {
		t.Fatalf("search with topk: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("got %d snippets, want 1", len(limited))
	}

	all, err := store.SearchDoctrine(ctx, knowledge.Query{Faction: "north"})
	if err != nil {
		t.Fatalf("search without terms: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d snippets, want all 3 faction-visible docs", len(all))
	}
}

func TestAppendTelemetryEvent(t *testing.T) {
	store := openTestStore(t)
	err := store.AppendTelemetryEvent(context.Background(), storage.TelemetryEvent{
		Timestamp: time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC),
		Severity:  "WARN",
		Component: "director",
		Message:   "brief degraded",
		Metadata:  map[string]string{"actor": "scout-1"},
	})
	if err != nil {
		t.Fatalf("append telemetry: %v", err)
	}

	var count int
	if err := store.DB().QueryRow("SELECT COUNT(1) FROM telemetry_events").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}
