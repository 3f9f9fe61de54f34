package perception

import (
	"testing"

	"github.com/emberfall/warcouncil/internal/sim/domain/persona"
	"github.com/emberfall/warcouncil/internal/sim/domain/world"
)

func threatWorld() world.State {
	return world.State{
		Entities: []world.Entity{
			{ID: "scout-1", Pos: "0,0"},
			{ID: "raider-close", Pos: "1,1"},
			{ID: "raider-medium", Pos: "2,2"},
			{ID: "raider-far", Pos: "3,3"},
			{ID: "raider-hidden", Pos: "50,50"},
			{ID: "merchant-1", Pos: "1,0"},
		},
		Relations: []world.Relation{
			{Src: "scout-1", Rel: "hostile_to", Dst: "raider-close"},
			{Src: "scout-1", Rel: "enemy_of", Dst: "raider-medium"},
			{Src: "scout-1", Rel: "hostile_to", Dst: "raider-far"},
			{Src: "scout-1", Rel: "hostile_to", Dst: "raider-hidden"},
			{Src: "scout-1", Rel: "trades_with", Dst: "merchant-1"},
			{Src: "merchant-1", Rel: "hostile_to", Dst: "scout-1"},
		},
	}
}

func TestAssessThreats(t *testing.T) {
	w := threatWorld()
	card := scoutCard(persona.Scope{Channel: persona.ChannelVisual, Range: 10})
	vis, err := ComputeVisibility(w, card)
	if err != nil {
		t.Fatalf("compute visibility: %v", err)
	}

	threats := AssessThreats(w, "scout-1", vis)
	if len(threats) != 3 {
		t.Fatalf("got %d threats, want 3: %v", len(threats), threats)
	}
	if threats[0].ID != "raider-close" || threats[0].Distance != DistanceClose {
		t.Fatalf("threat[0] = %+v, want raider-close/close", threats[0])
	}
	if threats[1].ID != "raider-medium" || threats[1].Distance != DistanceMedium {
		t.Fatalf("threat[1] = %+v, want raider-medium/medium", threats[1])
	}
	if threats[2].ID != "raider-far" || threats[2].Distance != DistanceFar {
		t.Fatalf("threat[2] = %+v, want raider-far/far", threats[2])
	}
}

func TestInvisibleHostileNeverReported(t *testing.T) {
	w := threatWorld()
	card := scoutCard(persona.Scope{Channel: persona.ChannelVisual, Range: 10})
	vis, err := ComputeVisibility(w, card)
	if err != nil {
		t.Fatalf("compute visibility: %v", err)
	}

	threats := AssessThreats(w, "scout-1", vis)
	for _, th := range threats {
		if th.ID == "raider-hidden" {
			t.Fatal("hostile outside the visible slice must not be reported")
		}
		if !vis.ContainsEntity(th.ID) {
			t.Fatalf("threat %s is not visible", th.ID)
		}
	}
}

func TestThreatCountBoundedByHostileCount(t *testing.T) {
	w := threatWorld()
	card := scoutCard(persona.Scope{Channel: persona.ChannelVisual, Range: 10})
	vis, err := ComputeVisibility(w, card)
	if err != nil {
		t.Fatalf("compute visibility: %v", err)
	}

	hostiles := 0
	for _, r := range w.Relations {
		if r.Src == "scout-1" && (r.Rel == "hostile_to" || r.Rel == "enemy_of") && vis.ContainsEntity(r.Dst) {
			hostiles++
		}
	}
	if got := len(AssessThreats(w, "scout-1", vis)); got > hostiles {
		t.Fatalf("threats %d exceed visible hostiles %d", got, hostiles)
	}
}

func TestNonHostileRelationProducesNoThreat(t *testing.T) {
	w := threatWorld()
	card := scoutCard(persona.Scope{Channel: persona.ChannelVisual, Range: 10})
	vis, err := ComputeVisibility(w, card)
	if err != nil {
		t.Fatalf("compute visibility: %v", err)
	}

	for _, th := range AssessThreats(w, "scout-1", vis) {
		if th.ID == "merchant-1" {
			t.Fatal("trades_with relation must not produce a threat")
		}
	}
}

func TestUnknownThreatPositionGradesFar(t *testing.T) {
	w := world.State{
		Entities: []world.Entity{
			{ID: "scout-1", Pos: "0,0", Faction: "league"},
			{ID: "wraith-1", Faction: "league"},
		},
		Relations: []world.Relation{{Src: "scout-1", Rel: "hostile_to", Dst: "wraith-1"}},
	}
	card := scoutCard(persona.Scope{Channel: persona.ChannelIntel})
	vis, err := ComputeVisibility(w, card)
	if err != nil {
		t.Fatalf("compute visibility: %v", err)
	}

	threats := AssessThreats(w, "scout-1", vis)
	if len(threats) != 1 || threats[0].Distance != DistanceFar {
		t.Fatalf("threats = %v, want single far-graded wraith-1", threats)
	}
}
