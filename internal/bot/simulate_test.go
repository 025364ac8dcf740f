package bot

import (
	"reflect"
	"testing"

	"buttonblitz/internal/app"
	"buttonblitz/internal/challenge"
	"buttonblitz/internal/domain"
)

func TestSimulateCountsEveryTurn(t *testing.T) {
	cfg := SimConfig{Games: 3, Players: 3, Level: LevelSmart, Rounds: 2, Seed: 7}
	res, err := Simulate(cfg)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(res.Games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(res.Games))
	}
	total := 0
	for i, g := range res.Games {
		if g.Reason != app.EndRoundsComplete {
			t.Fatalf("game %d ended with %q", i, g.Reason)
		}
		if len(g.Standings) != 3 || len(g.Winners) == 0 {
			t.Fatalf("game %d: unexpected summary %+v", i, g)
		}
		attempts := 0
		for _, k := range g.Kinds {
			attempts += k.Attempts
		}
		if attempts != 6 {
			t.Fatalf("game %d: expected 6 turns, got %d", i, attempts)
		}
		total += attempts
	}
	sum := 0
	for _, k := range res.Kinds {
		sum += k.Attempts
		if k.Successes > k.Attempts || k.Rate() < 0 || k.Rate() > 1 {
			t.Fatalf("bad stats %+v", k)
		}
	}
	if sum != total {
		t.Fatalf("aggregate %d != per-game %d", sum, total)
	}
}

func TestSimulateIsReproducible(t *testing.T) {
	cfg := SimConfig{Games: 2, Players: 2, Level: LevelGood, Rounds: 2, Seed: 42}
	a, err := Simulate(cfg)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	b, _ := Simulate(cfg)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different results")
	}
}

func TestSimulateRestrictsKinds(t *testing.T) {
	res, err := Simulate(SimConfig{Players: 2, Level: LevelGod, Rounds: 1, Kinds: []challenge.Kind{challenge.ButtonMash}})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(res.Kinds) != 1 || res.Kinds[0].Kind != challenge.ButtonMash || res.Kinds[0].Attempts != 2 {
		t.Fatalf("unexpected kinds %+v", res.Kinds)
	}
}

func TestSimulateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  SimConfig
	}{
		{"one player", SimConfig{Players: 1}},
		{"endless", SimConfig{Rounds: domain.EndlessRounds}},
		{"unknown kind", SimConfig{Kinds: []challenge.Kind{"juggle"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Simulate(tt.cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
