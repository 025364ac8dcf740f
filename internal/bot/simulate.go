package bot

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"buttonblitz/internal/app"
	"buttonblitz/internal/challenge"
	"buttonblitz/internal/domain"
)

// maxSimTicks bounds one simulated game.
const maxSimTicks = 500000

var ErrSimStalled = errors.New("simulated game did not finish")

// SimConfig describes a batch of all-bot games.
type SimConfig struct {
	Games   int
	Players int
	Level   Level
	Mode    domain.Mode
	Rounds  int
	Seed    int64
	// Kinds restricts the catalog; empty means every builtin kind.
	Kinds []challenge.Kind
	// Skill overrides the level's tuning when non-nil.
	Skill *Skill
	// FeedbackDelay is passed to every session; zero keeps the default.
	FeedbackDelay time.Duration
}

// KindStats counts challenge outcomes for one kind.
type KindStats struct {
	Kind      challenge.Kind
	Attempts  int
	Successes int
}

// Rate is the success ratio, 0 when the kind never came up.
func (k KindStats) Rate() float64 {
	if k.Attempts == 0 {
		return 0
	}
	return float64(k.Successes) / float64(k.Attempts)
}

// GameSummary is the outcome of one simulated game.
type GameSummary struct {
	Reason    string
	Standings []app.PlayerResult
	Winners   []string
	Kinds     []KindStats
	Duration  time.Duration
}

// SimResult aggregates a batch.
type SimResult struct {
	Games []GameSummary
	Kinds []KindStats
}

func (c *SimConfig) fill() error {
	if c.Games <= 0 {
		c.Games = 1
	}
	if c.Players == 0 {
		c.Players = domain.MinPlayers
	}
	if c.Players < domain.MinPlayers {
		return fmt.Errorf("simulate: need at least %d players", domain.MinPlayers)
	}
	if c.Mode == "" {
		c.Mode = domain.ModeParty
	}
	if c.Rounds == 0 {
		c.Rounds = domain.DefaultSettings().TotalRounds
	}
	if c.Rounds == domain.EndlessRounds {
		return errors.New("simulate: endless games cannot be simulated")
	}
	return nil
}

// Simulate plays cfg.Games games with every seat taken by a bot. Game g is
// seeded with cfg.Seed+g, so a batch is reproducible.
func Simulate(cfg SimConfig) (SimResult, error) {
	if err := cfg.fill(); err != nil {
		return SimResult{}, err
	}
	var specs []challenge.Spec
	if len(cfg.Kinds) > 0 {
		var err error
		if specs, err = challenge.Subset(cfg.Kinds...); err != nil {
			return SimResult{}, err
		}
	}
	var res SimResult
	totals := map[challenge.Kind]*KindStats{}
	for g := 0; g < cfg.Games; g++ {
		sum, err := simulateGame(cfg, specs, cfg.Seed+int64(g))
		if err != nil {
			return res, fmt.Errorf("game %d: %w", g+1, err)
		}
		for _, k := range sum.Kinds {
			t, ok := totals[k.Kind]
			if !ok {
				t = &KindStats{Kind: k.Kind}
				totals[k.Kind] = t
			}
			t.Attempts += k.Attempts
			t.Successes += k.Successes
		}
		res.Games = append(res.Games, sum)
	}
	res.Kinds = sortedStats(totals)
	return res, nil
}

func simulateGame(cfg SimConfig, specs []challenge.Spec, seed int64) (GameSummary, error) {
	rng := rand.New(rand.NewSource(seed))
	cat, err := challenge.NewCatalog(rng, specs...)
	if err != nil {
		return GameSummary{}, err
	}
	settings := domain.DefaultSettings()
	settings.GameMode = cfg.Mode
	settings.TotalRounds = cfg.Rounds
	settings.ShowHints = false
	s, err := app.NewSession(app.SessionConfig{Catalog: cat, Settings: settings, Rand: rng, FeedbackDelay: cfg.FeedbackDelay})
	if err != nil {
		return GameSummary{}, err
	}
	defer s.Close()

	agents := make([]*Agent, 0, cfg.Players)
	seats := make([]app.Seat, 0, cfg.Players)
	for i := 0; i < cfg.Players; i++ {
		id := GetBotIdentity(i)
		var a *Agent
		if cfg.Skill != nil {
			a = &Agent{ID: fmt.Sprintf("%s-%d", id.UserID, i), Name: id.DisplayName, Level: cfg.Level, Brain: NewBrainWithSkill(*cfg.Skill, rng)}
		} else {
			a, err = NewAgent(fmt.Sprintf("%s-%d", id.UserID, i), id.DisplayName, cfg.Level, rng)
			if err != nil {
				return GameSummary{}, err
			}
		}
		agents = append(agents, a)
		seats = append(seats, a.Seat(domain.ColorForIndex(i)))
	}

	events, err := s.Start(seats)
	if err != nil {
		return GameSummary{}, err
	}
	stats := map[challenge.Kind]*KindStats{}
	var current challenge.Kind
	for tick := 0; tick < maxSimTicks; tick++ {
		for _, ev := range events {
			switch p := ev.Payload.(type) {
			case app.ChallengeStartedPayload:
				current = p.Kind
			case app.ChallengeResolvedPayload:
				k, ok := stats[current]
				if !ok {
					k = &KindStats{Kind: current}
					stats[current] = k
				}
				k.Attempts++
				if p.Success {
					k.Successes++
				}
			case app.GameEndedPayload:
				return GameSummary{
					Reason:    p.Reason,
					Standings: p.Standings,
					Winners:   p.Winners,
					Kinds:     sortedStats(stats),
					Duration:  s.Clock(),
				}, nil
			}
		}
		events = nil
		for _, a := range agents {
			events = append(events, a.Play(s)...)
		}
		events = append(events, s.Tick(challenge.TickInterval)...)
	}
	return GameSummary{}, ErrSimStalled
}

func sortedStats(m map[challenge.Kind]*KindStats) []KindStats {
	out := make([]KindStats, 0, len(m))
	for _, k := range m {
		out = append(out, *k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
