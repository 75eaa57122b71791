package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slotbook/internal/service/booking"
)

func newOwnerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "owner",
		Short: "Manage calendar owners",
	}
	cmd.AddCommand(newOwnerCreateCmd())
	return cmd
}

func newOwnerCreateCmd() *cobra.Command {
	var username, displayName string

	c := &cobra.Command{
		Use:   "create",
		Short: "Register a calendar owner (no-op if the username exists)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			st, err := openStore(cmd.Context(), cfg, log, cfg.DBAutoMigrate)
			if err != nil {
				return err
			}
			defer st.Close()

			engine := booking.NewEngine(st.Owners(), st.Availability(), st.Appointments(),
				booking.WithLocation(cfg.Location),
				booking.WithLogger(log),
			)
			owner, err := engine.RegisterOwner(cmd.Context(), username, displayName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "owner %q (%s)\n", owner.Username, owner.ID)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "unique owner username")
	c.Flags().StringVar(&displayName, "display-name", "", "display name (defaults to the username)")
	_ = c.MarkFlagRequired("username")
	return c
}
