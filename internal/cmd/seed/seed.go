// Package seed provisions a demo campaign: a starting world snapshot, persona
// cards, and a doctrine knowledge base for local simulation runs.
package seed

import (
	"context"
	"flag"
	"fmt"
	"log"

	entrypoint "github.com/emberfall/warcouncil/internal/platform/cmd"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
	"github.com/emberfall/warcouncil/internal/storage"
	"github.com/emberfall/warcouncil/internal/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath     string `env:"WARCOUNCIL_DB_PATH" envDefault:"warcouncil.db"`
	CampaignID string `env:"WARCOUNCIL_CAMPAIGN_ID" envDefault:"campaign-local"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the campaign SQLite database")
	fs.StringVar(&cfg.CampaignID, "campaign", cfg.CampaignID, "Campaign to seed")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run seeds the demo campaign into the configured database.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open campaign store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close campaign store: %v", err)
		}
	}()

	if err := store.PutSnapshot(ctx, cfg.CampaignID, DemoWorld()); err != nil {
		return fmt.Errorf("seed world: %w", err)
	}
	for _, card := range DemoPersonas() {
		if err := store.PutPersona(ctx, cfg.CampaignID, card); err != nil {
			return fmt.Errorf("seed persona %s: %w", card.ID, err)
		}
	}
	for _, rec := range DemoDoctrine() {
		if err := store.PutDoctrine(ctx, rec); err != nil {
			return fmt.Errorf("seed doctrine %s: %w", rec.ID, err)
		}
	}

	log.Printf("seeded campaign %s into %s", cfg.CampaignID, cfg.DBPath)
	return nil
}

// DemoWorld is the turn-zero snapshot for the demo campaign: two northern
// units holding a pass against two southern raiders.
func DemoWorld() world.State {
	return world.State{
		Turn: 0,
		Entities: []world.Entity{
			{
				ID: "scout-1", Type: "unit", Name: "Ridge Scout", Faction: "north",
				Pos:    "0,0",
				Tags:   []string{"radio"},
				Assets: map[string]float64{"energy": 40, "weapon": 1},
			},
			{
				ID: "warden-1", Type: "unit", Name: "Pass Warden", Faction: "north",
				Pos:    "1,2",
				Tags:   []string{"radio"},
				Assets: map[string]float64{"energy": 50, "weapon": 1},
			},
			{
				ID: "raider-1", Type: "unit", Name: "Dust Raider", Faction: "south",
				Pos:    "3,1",
				Assets: map[string]float64{"energy": 35, "weapon": 1},
			},
			{
				ID: "raider-2", Type: "unit", Name: "Flats Raider", Faction: "south",
				Pos:    "6,4",
				Assets: map[string]float64{"energy": 35, "weapon": 1},
			},
			{
				ID: "keep-1", Type: "structure", Name: "Old Keep", Faction: "north",
				Pos: "0,3",
			},
		},
		Relations: []world.Relation{
			{Src: "scout-1", Rel: "hostile_to", Dst: "raider-1"},
			{Src: "scout-1", Rel: "hostile_to", Dst: "raider-2"},
			{Src: "warden-1", Rel: "hostile_to", Dst: "raider-1"},
			{Src: "warden-1", Rel: "hostile_to", Dst: "raider-2"},
			{Src: "raider-1", Rel: "enemy_of", Dst: "scout-1"},
			{Src: "raider-1", Rel: "enemy_of", Dst: "warden-1"},
			{Src: "raider-2", Rel: "enemy_of", Dst: "warden-1"},
		},
		Facts: []world.Fact{
			{ID: "fact-ford", Text: "raider-1 camped east of the ford", Confidence: 0.7, SourceID: "scout-1"},
			{ID: "fact-keep", Text: "keep-1 gate is damaged", Confidence: 0.9, SourceID: "warden-1"},
		},
		Rules: []world.Rule{
			{Name: "no_flight"},
			{Name: "no_unjustified_attack", Expr: `action_type == "attack" and justification == ""`},
		},
	}
}

// DemoPersonas are the agent cards for the demo campaign.
func DemoPersonas() []persona.Card {
	return []persona.Card{
		{
			ID:      "scout-1",
			Faction: "north",
			Beliefs: []persona.Belief{
				{Proposition: "the pass must hold", Weight: 0.9},
				{Proposition: "raiders avoid fair fights", Weight: 0.6},
			},
			Traits: []persona.Trait{{Name: "cautious", Weight: 0.8}},
			Scopes: []persona.Scope{
				{Channel: persona.ChannelVisual, Range: 5},
				{Channel: persona.ChannelIntel},
			},
		},
		{
			ID:      "warden-1",
			Faction: "north",
			Beliefs: []persona.Belief{
				{Proposition: "the keep is the last line", Weight: 1},
			},
			Traits: []persona.Trait{{Name: "steadfast", Weight: 0.9}},
			Scopes: []persona.Scope{
				{Channel: persona.ChannelVisual, Range: 4},
				{Channel: persona.ChannelRadio, Range: 8},
			},
			Taboos: []string{"parley"},
		},
		{
			ID:      "raider-1",
			Faction: "south",
			Beliefs: []persona.Belief{
				{Proposition: "the north is stretched thin", Weight: 0.7},
			},
			Traits: []persona.Trait{{Name: "reckless", Weight: 0.7}},
			Scopes: []persona.Scope{
				{Channel: persona.ChannelVisual, Range: 6},
			},
		},
	}
}

// DemoDoctrine is the starting knowledge base for the demo campaign.
func DemoDoctrine() []storage.DoctrineRecord {
	return []storage.DoctrineRecord{
		{ID: "doc-north-1", Faction: "north", Text: "never pursue raiders into the dust flats", SourceID: "field-manual"},
		{ID: "doc-north-2", Faction: "north", Text: "hold the Old Keep at all costs", SourceID: "field-manual"},
		{ID: "doc-south-1", Faction: "south", Text: "strike before the wardens regroup", SourceID: "raid-orders"},
		{ID: "doc-common-1", Faction: "", Text: "the ford is impassable after rain", SourceID: "terrain-survey"},
	}
}
