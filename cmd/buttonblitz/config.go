package main

import (
	"fmt"
	"strings"

	"buttonblitz/internal/config"
	"buttonblitz/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	db         string
	gameConfig string
	verbose    bool
}

func (c *Config) validate() error {
	if c.db == "" {
		return fmt.Errorf("--db must not be empty")
	}
	return nil
}

func (c *Config) openStore() (*store.Store, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return store.Open(c.db)
}

func (c *Config) loadGameConfig() (config.GameConfig, error) {
	return config.Read(c.gameConfig)
}

// bindEnv lets BUTTONBLITZ_* variables fill any flag not given on the
// command line.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BUTTONBLITZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "buttonblitz",
		Short:         "Operator tools for Button Blitz: catalog, simulations, local settings.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			bindEnv(v, cmd.Flags())
			return nil
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&cfg.db, "db", "buttonblitz.db", "path to the local sqlite database (env: BUTTONBLITZ_DB)")
	fs.StringVar(&cfg.gameConfig, "game-config", "data/game_config.json", "path to the game config file (env: BUTTONBLITZ_GAME_CONFIG)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: BUTTONBLITZ_VERBOSE)")

	cmd.AddCommand(
		newCatalogCmd(),
		newSimulateCmd(cfg),
		newHistoryCmd(cfg),
		newSettingsCmd(cfg),
		newInviteCmd(cfg),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("buttonblitz v{{.Version}}\n")
	cmd.SilenceUsage = true

	return cmd
}
