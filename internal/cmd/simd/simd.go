// Package simd parses simulation daemon flags and drives campaign turns from
// a SQLite-backed campaign store.
package simd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	entrypoint "github.com/emberfall/warcouncil/internal/platform/cmd"
	"github.com/emberfall/warcouncil/internal/platform/id"
	"github.com/emberfall/warcouncil/internal/sim/adjudicator"
	"github.com/emberfall/warcouncil/internal/sim/briefing"
	"github.com/emberfall/warcouncil/internal/sim/decider"
	"github.com/emberfall/warcouncil/internal/sim/director"
	"github.com/emberfall/warcouncil/internal/sim/journal"
	"github.com/emberfall/warcouncil/internal/storage/sqlite"
	"github.com/emberfall/warcouncil/internal/telemetry"
)

// Config holds simulation daemon configuration.
type Config struct {
	DBPath          string        `env:"WARCOUNCIL_DB_PATH" envDefault:"warcouncil.db"`
	CampaignID      string        `env:"WARCOUNCIL_CAMPAIGN_ID" envDefault:"campaign-local"`
	Turns           int           `env:"WARCOUNCIL_TURNS" envDefault:"10"`
	DecisionTimeout time.Duration `env:"WARCOUNCIL_DECISION_TIMEOUT" envDefault:"30s"`
	HaltOnRejection bool          `env:"WARCOUNCIL_HALT_ON_REJECTION"`
	Aggressive      bool          `env:"WARCOUNCIL_AGGRESSIVE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the campaign SQLite database")
	fs.StringVar(&cfg.CampaignID, "campaign", cfg.CampaignID, "Campaign to run")
	fs.IntVar(&cfg.Turns, "turns", cfg.Turns, "Number of turns to run (0 runs until interrupted)")
	fs.BoolVar(&cfg.HaltOnRejection, "halt-on-rejection", cfg.HaltOnRejection, "Stop the run at the first rejected action")
	fs.BoolVar(&cfg.Aggressive, "aggressive", cfg.Aggressive, "Engage medium-distance threats")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the campaign from storage and runs the configured turns.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSimd, func(ctx context.Context) error {
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

	start, err := store.LatestSnapshot(ctx, cfg.CampaignID)
	if err != nil {
		return fmt.Errorf("load campaign %s (run seed first?): %w", cfg.CampaignID, err)
	}

	cards, err := store.ListPersonas(ctx, cfg.CampaignID)
	if err != nil {
		return fmt.Errorf("list personas: %w", err)
	}
	if len(cards) == 0 {
		return fmt.Errorf("campaign %s has no personas", cfg.CampaignID)
	}
	initiative := make([]string, 0, len(cards))
	for _, card := range cards {
		initiative = append(initiative, card.ID)
	}

	builder := briefing.NewBuilder(cfg.CampaignID, store, journal.NewReader(store))
	d, err := director.New(director.Config{
		CampaignID:      cfg.CampaignID,
		Initiative:      initiative,
		TurnLimit:       cfg.Turns,
		DecisionTimeout: cfg.DecisionTimeout,
		HaltOnRejection: cfg.HaltOnRejection,
	},
		builder,
		adjudicator.New(),
		&decider.Tactical{Aggressive: cfg.Aggressive},
		store,
		store,
		director.WithWorldStore(store),
		director.WithEmitter(telemetry.NewEmitter(store)),
	)
	if err != nil {
		return fmt.Errorf("wire director: %w", err)
	}

	runID, err := id.NewID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	log.Printf("run %s: campaign %s from turn %d with %d agents", runID, cfg.CampaignID, start.Turn, len(initiative))
	final, err := d.Run(ctx, start)
	if err != nil {
		return fmt.Errorf("campaign run %s: %w", runID, err)
	}
	log.Printf("run %s: campaign %s stopped at turn %d", runID, cfg.CampaignID, final.Turn)
	return nil
}
