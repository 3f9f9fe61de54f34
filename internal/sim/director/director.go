// Package director orchestrates the turn loop: it builds briefs, collects
// proposed actions from the external decision process, adjudicates them, and
// applies accepted actions to the world.
//
// Brief construction is embarrassingly parallel and runs on an errgroup
// bounded by agent count. Adjudication and application are serialized in
// initiative order inside one turn, because an earlier agent's accepted
// action can change what a later agent's action is valid against. The
// director is the single writer of world state; the core needs no locks.
package director

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
	"github.com/emberfall/warcouncil/internal/sim/adjudicator"
	"github.com/emberfall/warcouncil/internal/sim/briefing"
	"github.com/emberfall/warcouncil/internal/sim/domain/action"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
	"github.com/emberfall/warcouncil/internal/sim/journal"
	"github.com/emberfall/warcouncil/internal/storage"
	"github.com/emberfall/warcouncil/internal/telemetry"
)

// Phase names the director's position in the turn state machine.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseBuildingBriefs  Phase = "building_briefs"
	PhaseAwaitingActions Phase = "awaiting_actions"
	PhaseAdjudicating    Phase = "adjudicating"
	PhaseApplying        Phase = "applying"
	PhaseLogged          Phase = "logged"
)

// Decider is the external decision process that turns a brief into a proposed
// action. It is expected to be the slow, potentially blocking step; the
// director bounds each call with Config.DecisionTimeout.
type Decider interface {
	Decide(ctx context.Context, brief briefing.Brief) (action.Proposal, error)
}

// PersonaRegistry resolves persona cards by id. Cards are read-only to the
// core.
type PersonaRegistry interface {
	GetPersona(ctx context.Context, campaignID, personaID string) (persona.Card, error)
}

// Config tunes one director run.
type Config struct {
	CampaignID string
	// Initiative is the agent processing order within a turn.
	Initiative []string
	// TurnLimit stops the loop after this many turns; zero means run until
	// the context is cancelled.
	TurnLimit int
	// DecisionTimeout bounds each external decision call.
	DecisionTimeout time.Duration
	// HaltOnRejection stops the whole turn at the first terminal violation.
	HaltOnRejection bool
	// AttackDamage is the energy an accepted attack removes from its target.
	AttackDamage float64
}

const defaultDecisionTimeout = 30 * time.Second

// Director runs campaigns turn by turn.
type Director struct {
	cfg      Config
	builder  *briefing.Builder
	adj      *adjudicator.Adjudicator
	decider  Decider
	personas PersonaRegistry
	journal  storage.JournalStore
	worlds   storage.WorldStore
	emitter  *telemetry.Emitter
	tracer   trace.Tracer
	phase    Phase
	now      func() time.Time
}

// New wires a director. The world store and emitter are optional; everything
// else is required.
func New(cfg Config, builder *briefing.Builder, adj *adjudicator.Adjudicator, decider Decider, personas PersonaRegistry, journalStore storage.JournalStore, opts ...Option) (*Director, error) {
	if cfg.CampaignID == "" {
		return nil, fmt.Errorf("campaign id is required")
	}
	if len(cfg.Initiative) == 0 {
		return nil, fmt.Errorf("initiative order is required")
	}
	if builder == nil || adj == nil || decider == nil || personas == nil || journalStore == nil {
		return nil, fmt.Errorf("builder, adjudicator, decider, personas, and journal are required")
	}
	if cfg.DecisionTimeout <= 0 {
		cfg.DecisionTimeout = defaultDecisionTimeout
	}
	if cfg.AttackDamage == 0 {
		cfg.AttackDamage = 10
	}
	d := &Director{
		cfg:      cfg,
		builder:  builder,
		adj:      adj,
		decider:  decider,
		personas: personas,
		journal:  journalStore,
		tracer:   otel.Tracer("warcouncil/director"),
		phase:    PhaseIdle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Option configures optional director collaborators.
type Option func(*Director)

// WithWorldStore persists the post-turn snapshot after every turn.
func WithWorldStore(ws storage.WorldStore) Option {
	return func(d *Director) { d.worlds = ws }
}

// WithEmitter records system errors and rejection outcomes as telemetry.
func WithEmitter(e *telemetry.Emitter) Option {
	return func(d *Director) { d.emitter = e }
}

// WithClock overrides the journal timestamp source.
func WithClock(now func() time.Time) Option {
	return func(d *Director) { d.now = now }
}

// Phase reports the director's current position in the turn state machine.
func (d *Director) Phase() Phase {
	return d.phase
}

// Run loops turns from the starting snapshot until the turn limit is reached
// or the context is cancelled, returning the final snapshot.
func (d *Director) Run(ctx context.Context, start world.State) (world.State, error) {
	if err := start.Validate(); err != nil {
		return start, fmt.Errorf("starting world: %w", err)
	}

	w := start
	for turns := 0; d.cfg.TurnLimit == 0 || turns < d.cfg.TurnLimit; turns++ {
		if err := ctx.Err(); err != nil {
			return w, err
		}
		next, err := d.RunTurn(ctx, w)
		if err != nil {
			return w, err
		}
		w = next
	}
	d.phase = PhaseIdle
	return w, nil
}

// RunTurn processes every agent in initiative order against the evolving
// world state and returns the next turn's snapshot.
func (d *Director) RunTurn(ctx context.Context, w world.State) (world.State, error) {
	ctx, span := d.tracer.Start(ctx, "director.turn",
		trace.WithAttributes(
			attribute.String("campaign.id", d.cfg.CampaignID),
			attribute.Int("turn", w.Turn),
		))
	defer span.End()

	briefs, cards, err := d.buildBriefs(ctx, w)
	if err != nil {
		return w, err
	}

	for _, actorID := range d.cfg.Initiative {
		card, ok := cards[actorID]
		if !ok {
			// Brief building already journaled the setup failure.
			continue
		}
		next, err := d.processAgent(ctx, w, card, briefs[actorID])
		if err != nil {
			return w, err
		}
		w = next
	}

	d.phase = PhaseLogged
	w = world.Apply(w, world.Mutation{AdvanceTurn: true})

	if d.worlds != nil {
		if err := d.worlds.PutSnapshot(ctx, d.cfg.CampaignID, w); err != nil {
			return w, fmt.Errorf("persist snapshot turn %d: %w", w.Turn, err)
		}
	}
	return w, nil
}

// buildBriefs constructs all agent briefs in parallel against the turn-start
// snapshot. Setup failures (missing actor entity) are journaled as system
// errors and exclude the agent from the turn.
func (d *Director) buildBriefs(ctx context.Context, w world.State) (map[string]briefing.Brief, map[string]persona.Card, error) {
	d.phase = PhaseBuildingBriefs
	ctx, span := d.tracer.Start(ctx, "director.build_briefs")
	defer span.End()

	type result struct {
		actorID string
		card    persona.Card
		brief   briefing.Brief
		err     error
	}

	results := make([]result, len(d.cfg.Initiative))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(d.cfg.Initiative))
	for i, actorID := range d.cfg.Initiative {
		i, actorID := i, actorID
		g.Go(func() error {
			res := result{actorID: actorID}
			defer func() { results[i] = res }()

			card, err := d.personas.GetPersona(gctx, d.cfg.CampaignID, actorID)
			if err != nil {
				res.err = fmt.Errorf("persona %s: %w", actorID, err)
				return nil
			}
			if err := card.Validate(); err != nil {
				res.err = err
				return nil
			}
			res.card = card
			res.brief, res.err = d.builder.Build(gctx, w, card)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	briefs := make(map[string]briefing.Brief, len(results))
	cards := make(map[string]persona.Card, len(results))
	for _, res := range results {
		if res.err != nil {
			code := apperrors.CodeOf(res.err)
			if code == apperrors.CodeUnknown {
				code = apperrors.CodeDecisionFailed
			}
			// Degraded doctrine retrieval still yields a usable brief; only
			// setup errors exclude the agent.
			if res.brief.ForPersona != "" {
				d.warn(ctx, "brief degraded", res.actorID, res.err)
				briefs[res.actorID] = res.brief
				cards[res.actorID] = res.card
				continue
			}
			d.systemError(ctx, w.Turn, res.actorID, code, res.err)
			continue
		}
		briefs[res.actorID] = res.brief
		cards[res.actorID] = res.card
	}
	return briefs, cards, nil
}

// processAgent runs decide → adjudicate → apply → log for one agent against
// the current (not turn-start) world state.
func (d *Director) processAgent(ctx context.Context, w world.State, card persona.Card, brief briefing.Brief) (world.State, error) {
	ctx, span := d.tracer.Start(ctx, "director.agent",
		trace.WithAttributes(attribute.String("actor.id", card.ID)))
	defer span.End()

	d.phase = PhaseAwaitingActions
	proposal, err := d.decide(ctx, brief)
	if err != nil {
		code := apperrors.CodeDecisionFailed
		if errors.Is(err, context.DeadlineExceeded) {
			code = apperrors.CodeDecisionTimeout
		}
		d.systemError(ctx, w.Turn, card.ID, code, err)
		return w, nil
	}

	d.phase = PhaseAdjudicating
	verdict, err := d.adj.Adjudicate(ctx, w, card, proposal)
	if err != nil {
		var v *adjudicator.Violation
		if errors.As(err, &v) {
			d.append(ctx, journal.NewEntry(
				d.cfg.CampaignID, w.Turn, card.ID, journal.OutcomeRejected,
				v.Code, string(v.Action.Type), v.Action.Target, false, d.now(),
			))
			if d.cfg.HaltOnRejection {
				return w, v
			}
			return w, nil
		}
		d.systemError(ctx, w.Turn, card.ID, apperrors.CodeOf(err), err)
		return w, nil
	}

	d.phase = PhaseApplying
	mutation := d.buildMutation(w, card.ID, verdict.Action)
	next := world.Apply(w, mutation)

	d.append(ctx, journal.NewEntry(
		d.cfg.CampaignID, w.Turn, card.ID, journal.OutcomeAccepted,
		"", string(verdict.Action.Type), verdict.Action.Target, verdict.Repaired, d.now(),
	))
	return next, nil
}

// decide invokes the external decision process under the configured timeout.
func (d *Director) decide(ctx context.Context, brief briefing.Brief) (action.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.DecisionTimeout)
	defer cancel()
	return d.decider.Decide(ctx, brief)
}

func (d *Director) append(ctx context.Context, e journal.Entry) {
	if err := d.journal.AppendEntry(ctx, e); err != nil {
		d.warn(ctx, "journal append failed", e.ActorID, err)
	}
}

// systemError journals a synthetic non-action entry and emits telemetry.
func (d *Director) systemError(ctx context.Context, turn int, actorID string, code apperrors.Code, err error) {
	d.append(ctx, journal.NewEntry(
		d.cfg.CampaignID, turn, actorID, journal.OutcomeSystemError,
		code, "", "", false, d.now(),
	))
	_ = d.emitter.Emit(ctx, telemetry.SeverityError, "director", err.Error(), map[string]string{
		"campaign": d.cfg.CampaignID,
		"actor":    actorID,
		"code":     string(code),
	})
}

func (d *Director) warn(ctx context.Context, message, actorID string, err error) {
	_ = d.emitter.Emit(ctx, telemetry.SeverityWarn, "director", fmt.Sprintf("%s: %v", message, err), map[string]string{
		"campaign": d.cfg.CampaignID,
		"actor":    actorID,
	})
}
