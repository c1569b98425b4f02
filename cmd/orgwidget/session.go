package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Short:   "Create and inspect storefront sessions",
	GroupID: "widget",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an anonymous session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := storefront.CreateSession(cmd.Context())
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		return printResult(snap, sessionTable(snap))
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a session snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := widgetCfg.SessionID
		if len(args) == 1 {
			id = args[0]
		}
		if id == "" {
			return fmt.Errorf("no session: pass an ID or set ORGWIDGET_SESSION_ID")
		}
		snap, err := storefront.GetSession(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("getting session %s: %w", id, err)
		}
		return printResult(snap, sessionTable(snap))
	},
}

var sessionActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "List sessions seen recently by the service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stale, _ := cmd.Flags().GetDuration("stale")
		entries, err := admin.ActiveSessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing active sessions: %w", err)
		}
		if stale > 0 {
			kept := entries[:0]
			for _, e := range entries {
				if time.Duration(e.IdleSecs*float64(time.Second)) <= stale {
					kept = append(kept, e)
				}
			}
			entries = kept
		}
		return printResult(entries, rosterTable(entries))
	},
}

func init() {
	sessionActiveCmd.Flags().Duration("stale", 0, "hide sessions idle for longer than this (0 = show all)")
	sessionCmd.AddCommand(sessionCreateCmd, sessionShowCmd, sessionActiveCmd)
}
