package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"buttonblitz/internal/bot"
	"buttonblitz/internal/challenge"
	"buttonblitz/internal/domain"
	"buttonblitz/internal/store"

	"github.com/spf13/cobra"
)

type simulateFlags struct {
	games    int
	players  int
	level    string
	mode     string
	rounds   int
	seed     int64
	kinds    []string
	record   bool
	identity string
}

func newSimulateCmd(cfg *Config) *cobra.Command {
	f := &simulateFlags{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play all-bot games and report per-kind success rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.Context(), cfg, f)
		},
	}
	fs := cmd.Flags()
	fs.IntVarP(&f.games, "games", "n", 10, "number of games to play (env: BUTTONBLITZ_GAMES)")
	fs.IntVarP(&f.players, "players", "p", 4, "bots per game (env: BUTTONBLITZ_PLAYERS)")
	fs.StringVarP(&f.level, "level", "l", "smart", "bot skill: good, smart or god (env: BUTTONBLITZ_LEVEL)")
	fs.StringVarP(&f.mode, "mode", "m", string(domain.ModeParty), "game mode: chill, party or extreme (env: BUTTONBLITZ_MODE)")
	fs.IntVarP(&f.rounds, "rounds", "r", 10, "rounds per game (env: BUTTONBLITZ_ROUNDS)")
	fs.Int64Var(&f.seed, "seed", 1, "seed of the first game (env: BUTTONBLITZ_SEED)")
	fs.StringSliceVarP(&f.kinds, "kinds", "k", nil, "restrict to these challenge kinds (env: BUTTONBLITZ_KINDS)")
	fs.BoolVar(&f.record, "record", true, "save each game to the local history (env: BUTTONBLITZ_RECORD)")
	fs.StringVar(&f.identity, "bot-identities", "data/bot_identities.json", "bot names file (env: BUTTONBLITZ_BOT_IDENTITIES)")
	return cmd
}

func runSimulate(ctx context.Context, cfg *Config, f *simulateFlags) error {
	logger := newLogger(cfg)

	level, err := bot.ParseLevel(f.level)
	if err != nil {
		return err
	}
	mode := domain.Mode(f.mode)
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", f.mode)
	}
	if err := bot.LoadIdentities(f.identity); err != nil {
		logger.Warn("simulate: %v; using generated bot names", err)
	}
	gc, err := cfg.loadGameConfig()
	if err != nil {
		return err
	}

	kinds := make([]challenge.Kind, 0, len(f.kinds))
	for _, k := range f.kinds {
		kinds = append(kinds, challenge.Kind(k))
	}

	logger.Info("simulate: %d games, %d %s bots, %s mode, %d rounds", f.games, f.players, level, mode, f.rounds)
	res, err := bot.Simulate(bot.SimConfig{
		Games:         f.games,
		Players:       f.players,
		Level:         level,
		Mode:          mode,
		Rounds:        f.rounds,
		Seed:          f.seed,
		Kinds:         kinds,
		FeedbackDelay: gc.FeedbackDelay(),
	})
	if err != nil {
		return err
	}

	if f.record {
		st, err := cfg.openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		history := st.History()
		for i, g := range res.Games {
			id, err := history.Record(ctx, gameRecord(g, mode, f.rounds))
			if err != nil {
				return err
			}
			logger.Debug("simulate: recorded game %d as %s", i+1, id)
		}
	}

	return printSimResult(res)
}

func gameRecord(g bot.GameSummary, mode domain.Mode, rounds int) *store.GameRecord {
	rec := &store.GameRecord{
		Mode:      mode,
		Rounds:    rounds,
		Reason:    g.Reason,
		Standings: g.Standings,
		Winners:   g.Winners,
	}
	for _, k := range g.Kinds {
		rec.Challenges = append(rec.Challenges, store.ChallengeStat{Kind: k.Kind, Attempts: k.Attempts, Successes: k.Successes})
	}
	return rec
}

func printSimResult(res bot.SimResult) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tATTEMPTS\tSUCCESSES\tRATE")
	attempts, successes := 0, 0
	for _, k := range res.Kinds {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", k.Kind, k.Attempts, k.Successes, 100*k.Rate())
		attempts += k.Attempts
		successes += k.Successes
	}
	total := bot.KindStats{Attempts: attempts, Successes: successes}
	fmt.Fprintf(w, "TOTAL\t%d\t%d\t%.1f%%\n", attempts, successes, 100*total.Rate())
	if err := w.Flush(); err != nil {
		return err
	}

	wins := map[string]int{}
	for _, g := range res.Games {
		for _, id := range g.Winners {
			wins[id]++
		}
	}
	if len(res.Games) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "BOT\tNAME\tWINS")
		for _, p := range res.Games[0].Standings {
			fmt.Fprintf(w, "%s\t%s\t%d\n", p.ID, p.DisplayName, wins[p.ID])
		}
		return w.Flush()
	}
	return nil
}
