package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"buttonblitz/internal/challenge"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List every challenge kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tINPUT\tREVEAL\tINSTRUCTION\tHINT")
			for _, s := range challenge.Builtin() {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", s.Kind, s.Input, s.Reveal, s.Instruction, s.Hint)
			}
			return w.Flush()
		},
	}
}
