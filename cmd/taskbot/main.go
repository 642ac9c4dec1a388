// Command taskbot runs the task-management Telegram bot and its maintenance tools.
package main

import (
	"os"

	"github.com/spf13/cobra"

	corecmd "github.com/m3rciful/taskbot/core/cmd"
)

const defaultConfigPath = "configs/config.yaml"

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "taskbot",
		Short:         "taskbot is a Telegram bot for personal task lists",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to the YAML config (default $"+corecmd.DefaultConfigEnvVar+" or "+defaultConfigPath+")")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newFSMCmd(&configPath),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
