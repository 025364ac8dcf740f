package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"buttonblitz/internal/domain"
	"buttonblitz/internal/ports"

	"github.com/spf13/cobra"
)

func newSettingsCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change the local settings record",
	}
	cmd.AddCommand(newSettingsGetCmd(cfg), newSettingsSetCmd(cfg), newSettingsResetCmd(cfg))
	return cmd
}

func withSettings(cfg *Config, fn func(ctx context.Context, s ports.SettingsStore) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, err := cfg.openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		return fn(cmd.Context(), st.Settings())
	}
}

// current returns the saved settings or the defaults.
func current(ctx context.Context, s ports.SettingsStore) (domain.Settings, error) {
	saved, err := s.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if saved == nil {
		return domain.DefaultSettings(), nil
	}
	return *saved, nil
}

func printSettings(s domain.Settings) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func newSettingsGetCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the settings as JSON",
		Args:  cobra.NoArgs,
		RunE: withSettings(cfg, func(ctx context.Context, s ports.SettingsStore) error {
			settings, err := current(ctx, s)
			if err != nil {
				return err
			}
			return printSettings(settings)
		}),
	}
}

func newSettingsSetCmd(cfg *Config) *cobra.Command {
	var (
		next     domain.Settings
		gameMode string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the given settings and keep the rest",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.StringVar(&gameMode, "mode", "", "game mode: chill, party or extreme")
	fs.IntVar(&next.TotalRounds, "rounds", 0, "total rounds, -1 for endless")
	fs.Float64Var(&next.MasterVolume, "master-volume", 0, "master volume 0..1")
	fs.Float64Var(&next.MusicVolume, "music-volume", 0, "music volume 0..1")
	fs.Float64Var(&next.SfxVolume, "sfx-volume", 0, "sound effects volume 0..1")
	fs.BoolVar(&next.VibrationEnabled, "vibration", true, "enable haptics")
	fs.BoolVar(&next.ShowHints, "hints", true, "show challenge hints")
	fs.StringVar(&next.Theme, "theme", "", "ui theme")
	fs.StringVar(&next.Graphics, "graphics", "", "graphics quality")

	cmd.RunE = withSettings(cfg, func(ctx context.Context, s ports.SettingsStore) error {
		settings, err := current(ctx, s)
		if err != nil {
			return err
		}
		changed := 0
		apply := func(name string, fn func()) {
			if fs.Changed(name) {
				fn()
				changed++
			}
		}
		apply("mode", func() { settings.GameMode = domain.Mode(gameMode) })
		apply("rounds", func() { settings.TotalRounds = next.TotalRounds })
		apply("master-volume", func() { settings.MasterVolume = next.MasterVolume })
		apply("music-volume", func() { settings.MusicVolume = next.MusicVolume })
		apply("sfx-volume", func() { settings.SfxVolume = next.SfxVolume })
		apply("vibration", func() { settings.VibrationEnabled = next.VibrationEnabled })
		apply("hints", func() { settings.ShowHints = next.ShowHints })
		apply("theme", func() { settings.Theme = next.Theme })
		apply("graphics", func() { settings.Graphics = next.Graphics })
		if changed == 0 {
			return fmt.Errorf("nothing to change; pass at least one flag")
		}
		if err := s.Set(ctx, settings); err != nil {
			return err
		}
		return printSettings(settings)
	})
	return cmd
}

func newSettingsResetCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: withSettings(cfg, func(ctx context.Context, s ports.SettingsStore) error {
			settings := domain.DefaultSettings()
			if err := s.Set(ctx, settings); err != nil {
				return err
			}
			return printSettings(settings)
		}),
	}
}
