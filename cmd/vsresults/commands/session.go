package commands

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	rootCmd.AddCommand(sessionCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspects or drops the persisted HTTP session.",
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drops the persisted session so the next scrape starts cold.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		store, closeStore, err := cfg.openSessionStore()
		if err != nil {
			return err
		}
		defer closeStore()

		err = clearSession(cmd.Context(), store)
		if err != nil {
			return err
		}
		slog.Info("cleared session", "backend", cfg.Session.Backend)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the user agent and cookie names of the persisted session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		store, closeStore, err := cfg.openSessionStore()
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		if store == nil {
			fmt.Fprintln(out, "sessions are disabled")
			return nil
		}
		state, ok, err := store.Load(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "no session saved")
			return nil
		}

		names := make([]string, len(state.Cookies))
		for i, c := range state.Cookies {
			names[i] = c.Name
		}
		fmt.Fprintf(out, "user agent: %s\n", state.UserAgent)
		fmt.Fprintf(out, "cookies: %s\n", strings.Join(names, ", "))
		fmt.Fprintf(out, "saved at: %s\n", state.SavedAt.Format(time.RFC3339))
		return nil
	},
}
