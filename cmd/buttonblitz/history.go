package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCmd(cfg *Config) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := cfg.openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			games, err := st.History().List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PLAYED\tMODE\tROUNDS\tREASON\tWINNERS")
			for _, g := range games {
				names := make([]string, 0, len(g.Winners))
				for _, id := range g.Winners {
					name := id
					for _, p := range g.Standings {
						if p.ID == id {
							name = p.DisplayName
						}
					}
					names = append(names, name)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", g.PlayedAt.Local().Format(logDate), g.Mode, g.Rounds, g.Reason, strings.Join(names, ", "))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of games to show (env: BUTTONBLITZ_LIMIT)")
	return cmd
}
