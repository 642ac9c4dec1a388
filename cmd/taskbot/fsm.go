package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/m3rciful/taskbot/app"
	"github.com/m3rciful/taskbot/core/fsm"
	"github.com/m3rciful/taskbot/core/logger"
)

func newFSMCmd(configPath *string) *cobra.Command {
	fsmCmd := &cobra.Command{
		Use:   "fsm",
		Short: "Inspect or reset stored conversation contexts",
	}

	withApp := func(cmd *cobra.Command, fn func(*app.App) error) error {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		defer logger.Shutdown()

		a, err := app.New(cmd.Context(), cfg, app.Options{SkipMigrations: true})
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(a)
	}

	fsmCmd.AddCommand(&cobra.Command{
		Use:   "show <user-id>",
		Short: "Print the state and data of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				return printRecord(cmd.OutOrStdout(), a.Engine(), userID)
			})
		},
	})
	fsmCmd.AddCommand(&cobra.Command{
		Use:   "purge <user-id>",
		Short: "Delete the stored context of a user while no bot is serving",
		Long: "Delete the stored context of a user.\n\n" +
			"Refuses to run while a bot process holds the writer lock, since its cache\n" +
			"would keep the purged state. Use the /purge admin command on a live bot.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				return a.Exclusive(cmd.Context(), func(e *fsm.Engine) error {
					if err := e.Delete(cmd.Context(), userID); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "context of %d purged\n", userID)
					return nil
				})
			})
		},
	})
	return fsmCmd
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func printRecord(w io.Writer, e *fsm.Engine, userID int64) error {
	state, ok := e.State(userID)
	if !ok {
		return fmt.Errorf("no context for user %d", userID)
	}
	data, err := json.MarshalIndent(e.Data(userID), "", "  ")
	if err != nil {
		return err
	}
	if state == "" {
		state = "<none>"
	}
	_, err = fmt.Fprintf(w, "state: %s\ndata: %s\n", state, data)
	return err
}
