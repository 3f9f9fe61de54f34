package adjudicator

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/emberfall/warcouncil/internal/platform/errors"
	"github.com/emberfall/warcouncil/internal/sim/domain/action"
	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
)

func testWorld() world.State {
	return world.State{
		Turn: 1,
		Entities: []world.Entity{
			{ID: "scout-1", Pos: "0,0", Faction: "league", Assets: map[string]float64{"energy": 20, "weapon": 1}},
			{ID: "raider-1", Pos: "1,1", Faction: "horde", Assets: map[string]float64{"energy": 15}},
			{ID: "raider-hidden", Pos: "50,50", Faction: "horde"},
		},
		Relations: []world.Relation{
			{Src: "scout-1", Rel: "hostile_to", Dst: "raider-1"},
		},
	}
}

func testCard() persona.Card {
	return persona.Card{
		ID:      "scout-1",
		Faction: "league",
		Beliefs: []persona.Belief{{Proposition: "hold the pass", Weight: 1}},
		Scopes:  []persona.Scope{{Channel: persona.ChannelVisual, Range: 5}},
	}
}

func attackProposal(target string) action.Proposal {
	return action.Proposal{
		Type:          action.TypeAttack,
		Target:        target,
		Intent:        "strike before they regroup",
		Justification: "the raiders are exposed on open ground",
		Confidence:    0.8,
	}
}

func violationCode(t *testing.T, err error) apperrors.Code {
	t.Helper()
	var v *Violation
	if !errors.As(err, &v) {
		t.Fatalf("expected *Violation, got %T: %v", err, err)
	}
	return v.Code
}

func TestAcceptsValidAttack(t *testing.T) {
	adj := New()
	verdict, err := adj.Adjudicate(context.Background(), testWorld(), testCard(), attackProposal("raider-1"))
	if err != nil {
		t.Fatalf("adjudicate: %v", err)
	}
	if verdict.Repaired {
		t.Fatal("valid attack should not need repair")
	}
	if verdict.Action.Type != action.TypeAttack {
		t.Fatalf("action type = %s, want attack", verdict.Action.Type)
	}
}

func TestResourceNegativeRepairsToScan(t *testing.T) {
	w := testWorld()
	w.Entities[0].Assets["energy"] = 5 // attack costs 10

	adj := New()
	verdict, err := adj.Adjudicate(context.Background(), w, testCard(), attackProposal("raider-1"))
	if err != nil {
		t.Fatalf("adjudicate: %v", err)
	}
	if !verdict.Repaired {
		t.Fatal("expected repaired verdict")
	}
	if verdict.Action.Type != action.TypeScan {
		t.Fatalf("repaired type = %s, want scan", verdict.Action.Type)
	}
	if verdict.Action.Confidence != 0.4 {
		t.Fatalf("repaired confidence = %v, want 0.4", verdict.Action.Confidence)
	}
	if verdict.Action.Target != "" {
		t.Fatal("degraded action must drop its target")
	}
}

func TestTargetInvalidRetargets(t *testing.T) {
	adj := New()
	verdict, err := adj.Adjudicate(context.Background(), testWorld(), testCard(), attackProposal("raider-hidden"))
	if err != nil {
		t.Fatalf("adjudicate: %v", err)
	}
	if !verdict.Repaired {
		t.Fatal("expected repaired verdict")
	}
	if verdict.Action.Target != "raider-1" {
		t.Fatalf("retarget = %q, want raider-1", verdict.Action.Target)
	}
}

func TestTargetInvalidWithoutAlternativeReturnsOriginal(t *testing.T) {
	w := world.State{
		Turn: 1,
		Entities: []world.Entity{
			{ID: "scout-1", Pos: "0,0", Assets: map[string]float64{"energy": 20, "weapon": 1}},
			{ID: "raider-hidden", Pos: "50,50"},
		},
	}
	adj := New()
	_, err := adj.Adjudicate(context.Background(), w, testCard(), attackProposal("raider-hidden"))
	if err == nil {
		t.Fatal("expected violation")
	}
	if code := violationCode(t, err); code != apperrors.CodeTargetInvalid {
		t.Fatalf("code = %s, want E002_TARGET_INVALID", code)
	}
}

func TestNoFlightRuleRejectsImmediately(t *testing.T) {
	w := testWorld()
	w.Rules = []world.Rule{{Name: "no_flight"}}

	p := action.Proposal{
		Type:          action.TypeMove,
		Intent:        "fly over the ravine to flank them",
		Justification: "the ravine blocks the ground route",
		Confidence:    0.9,
	}
	adj := New()
	_, err := adj.Adjudicate(context.Background(), w, testCard(), p)
	if err == nil {
		t.Fatal("expected violation")
	}
	if code := violationCode(t, err); code != apperrors.CodeLogicViolation {
		t.Fatalf("code = %s, want E004_LOGIC_VIOLATION", code)
	}
}

func TestCanonBreachHasNoRepair(t *testing.T) {
	p := action.Proposal{
		Type:          action.TypeParley,
		Target:        "raider-1",
		Intent:        "offer them a warp drive in exchange for peace",
		Justification: "impossible bargains end wars quickly",
		Confidence:    0.5,
	}
	adj := New()
	_, err := adj.Adjudicate(context.Background(), testWorld(), testCard(), p)
	if err == nil {
		t.Fatal("expected violation")
	}
	if code := violationCode(t, err); code != apperrors.CodeCanonBreach {
		t.Fatalf("code = %s, want E005_CANON_BREACH", code)
	}
}

func TestIncapacitatedMayOnlyObserveOrScan(t *testing.T) {
	w := testWorld()
	w.Entities[0].Assets["incapacitated"] = 1

	adj := New()

	// move is impossible and degrades to observe.
	verdict, err := adj.Adjudicate(context.Background(), w, testCard(), action.Proposal{
		Type:          action.TypeMove,
		Intent:        "fall back to the ridge",
		Justification: "wounded and exposed",
		Confidence:    0.6,
	})
	if err != nil {
		t.Fatalf("adjudicate: %v", err)
	}
	if !verdict.Repaired || verdict.Action.Type != action.TypeObserve {
		t.Fatalf("verdict = %+v, want repaired observe", verdict)
	}

	// scan passes outright.
	verdict, err = adj.Adjudicate(context.Background(), w, testCard(), action.Proposal{
		Type:          action.TypeScan,
		Intent:        "watch the treeline",
		Justification: "cannot move, can still watch",
		Confidence:    0.6,
	})
	if err != nil {
		t.Fatalf("adjudicate scan: %v", err)
	}
	if verdict.Repaired {
		t.Fatal("scan by incapacitated actor should pass without repair")
	}
}

func TestAttackWithoutWeaponDegrades(t *testing.T) {
	w := testWorld()
	delete(w.Entities[0].Assets, "weapon")

	adj := New()
	verdict, err := adj.Adjudicate(context.Background(), w, testCard(), attackProposal("raider-1"))
	if err != nil {
		t.Fatalf("adjudicate: %v", err)
	}
	if !verdict.Repaired || verdict.Action.Type != action.TypeScan {
		t.Fatalf("verdict = %+v, want repaired scan", verdict)
	}
}

func TestTabooActionIsImpossible(t *testing.T) {
	card := testCard()
	card.Taboos = []string{"attack"}

	w := testWorld()
	w.Entities[0].Assets["incapacitated"] = 0

	adj := New()
	verdict, err := adj.Adjudicate(context.Background(), w, card, attackProposal("raider-1"))
	if err != nil {
		t.Fatalf("adjudicate: %v", err)
	}
	// E003 repair degrades the taboo attack to a scan.
	if !verdict.Repaired || verdict.Action.Type != action.TypeScan {
		t.Fatalf("verdict = %+v, want repaired scan", verdict)
	}
}

func TestMissingActorIsSetupErrorNotViolation(t *testing.T) {
	w := world.State{Turn: 1, Entities: []world.Entity{{ID: "raider-1", Pos: "1,1"}}}

	adj := New()
	_, err := adj.Adjudicate(context.Background(), w, testCard(), attackProposal("raider-1"))
	if err == nil {
		t.Fatal("expected setup error")
	}
	var v *Violation
	if errors.As(err, &v) {
		t.Fatalf("missing actor should not be a law violation, got %v", v)
	}
	if apperrors.CodeOf(err) != apperrors.CodeActorNotFound {
		t.Fatalf("code = %s, want ACTOR_NOT_FOUND", apperrors.CodeOf(err))
	}
}

func TestRepairedActionFailingAgainSurfacesOriginalCode(t *testing.T) {
	// Energy failure degrades attack to scan, but the actor is also under a
	// rule that forbids scanning, so the repair fails and the original E001
	// must surface.
	w := testWorld()
	w.Entities[0].Assets["energy"] = 5
	w.Rules = []world.Rule{{Name: "jamming_field", Expr: `action_type == "scan"`}}

	adj := New()
	_, err := adj.Adjudicate(context.Background(), w, testCard(), attackProposal("raider-1"))
	if err == nil {
		t.Fatal("expected violation")
	}
	if code := violationCode(t, err); code != apperrors.CodeResourceNegative {
		t.Fatalf("code = %s, want original E001_RESOURCE_NEGATIVE", code)
	}
}

func TestCustomCosts(t *testing.T) {
	w := testWorld()
	w.Entities[0].Assets["energy"] = 3

	adj := New(WithCosts(Costs{Attack: 2, Move: 1}))
	verdict, err := adj.Adjudicate(context.Background(), w, testCard(), attackProposal("raider-1"))
	if err != nil {
		t.Fatalf("adjudicate: %v", err)
	}
	if verdict.Repaired {
		t.Fatal("attack should be affordable under custom costs")
	}
}

func TestInvalidProposalIsNotViolation(t *testing.T) {
	p := attackProposal("raider-1")
	p.Intent = ""

	adj := New()
	_, err := adj.Adjudicate(context.Background(), testWorld(), testCard(), p)
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.CodeOf(err) != apperrors.CodeProposalInvalid {
		t.Fatalf("code = %s, want PROPOSAL_INVALID", apperrors.CodeOf(err))
	}
}
