package main

import (
	"fmt"
	"os"

	"buttonblitz/internal/app/online"

	"github.com/spf13/cobra"
)

func newInviteCmd(cfg *Config) *cobra.Command {
	var (
		out  string
		size int
	)
	cmd := &cobra.Command{
		Use:   "invite CODE",
		Short: "Print a room's invite link and write its QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cfg)
			link, png, err := online.InviteQR(args[0], size)
			if err != nil {
				return err
			}
			fmt.Println(link)
			if out == "" {
				return nil
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("write qr: %w", err)
			}
			logger.Info("invite: wrote %d byte qr code to %s", len(png), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the QR code PNG here (env: BUTTONBLITZ_OUT)")
	cmd.Flags().IntVar(&size, "size", online.DefaultQRSize, "QR code edge in pixels (env: BUTTONBLITZ_SIZE)")
	return cmd
}
