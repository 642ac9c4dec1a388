package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/m3rciful/taskbot/app"
	corecmd "github.com/m3rciful/taskbot/core/cmd"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(*configPath)
		},
	}
}

func serve(configPath string) error {
	return corecmd.Run(corecmd.Options{
		ConfigPath:        configPath,
		DefaultConfigPath: defaultConfigPath,
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.LoadConfig(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.Service, error) {
			return app.New(ctx, cfg.(*app.Config), app.Options{})
		},
	})
}

// loadConfig resolves the path the same way serve does.
func loadConfig(configPath string) (*app.Config, error) {
	path, err := corecmd.ResolveConfigPath(configPath, "", defaultConfigPath)
	if err != nil {
		return nil, err
	}
	return app.LoadConfig(path)
}
