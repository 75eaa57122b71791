package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"slotbook/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if strings.EqualFold(cfg.DatabaseURL, config.MemoryDatabase) {
				return fmt.Errorf("migrate needs a SQL database, database.url is %q", cfg.DatabaseURL)
			}

			st, err := openStore(cmd.Context(), cfg, log, true)
			if err != nil {
				return err
			}
			return st.Close()
		},
	}
}
