package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m3rciful/taskbot/core/bootstrap"
	"github.com/m3rciful/taskbot/core/logger"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logger.Shutdown()

			res, err := bootstrap.Run(cmd.Context(), bootstrap.Options{
				Config:   &cfg.Config,
				Database: cfg.Database,
			})
			if err != nil {
				return err
			}
			defer res.DB.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schema version: %d -> %d\n", res.Migration.FromVersion, res.Migration.ToVersion)
			if len(res.Migration.Applied) > 0 {
				fmt.Fprintf(out, "applied: %s\n", strings.Join(res.Migration.Applied, ", "))
			}
			return nil
		},
	}
}
