package main

import (
	"fmt"
	"io"

	"github.com/alfredjeanlab/orgwidget/internal/client"
	"github.com/alfredjeanlab/orgwidget/internal/session"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Log a storefront session in or out",
	GroupID: "widget",
}

var authLoginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Mark the session as logged in as email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProfile(cmd, &client.UpdateProfileRequest{Email: args[0], Authenticated: true})
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Mark the session as logged out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProfile(cmd, &client.UpdateProfileRequest{})
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session claim and the locally persisted auth flag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := newWidgetRun(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer run.Close()

		snap := run.source.CurrentSnapshot()
		status := struct {
			SessionID     string `json:"session_id"`
			Loaded        bool   `json:"session_loaded"`
			Authenticated bool   `json:"session_authenticated"`
			Flag          bool   `json:"flag"`
			FlagKey       string `json:"flag_key"`
		}{
			SessionID:     run.source.ID(),
			Loaded:        snap != nil,
			Authenticated: session.IsAuthenticated(snap),
			Flag:          run.flag.Read(),
			FlagKey:       run.flag.Key(),
		}
		return printResult(status, func(w io.Writer) {
			fmt.Fprintf(w, "Session:\t%s\n", status.SessionID)
			if status.Loaded {
				fmt.Fprintf(w, "Logged in:\t%v\n", status.Authenticated)
			} else {
				fmt.Fprintf(w, "Logged in:\tunknown (session not loaded)\n")
			}
			fmt.Fprintf(w, "Cached flag:\t%v (%s)\n", status.Flag, status.FlagKey)
		})
	},
}

func updateProfile(cmd *cobra.Command, req *client.UpdateProfileRequest) error {
	id, _ := cmd.Flags().GetString("session")
	if id == "" {
		id = widgetCfg.SessionID
	}
	if id == "" {
		return fmt.Errorf("no session: pass --session or set ORGWIDGET_SESSION_ID")
	}
	snap, err := storefront.UpdateSessionProfile(cmd.Context(), id, req)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", id, err)
	}
	return printResult(snap, sessionTable(snap))
}

func init() {
	for _, c := range []*cobra.Command{authLoginCmd, authLogoutCmd} {
		c.Flags().String("session", "", "storefront session ID (default $ORGWIDGET_SESSION_ID)")
	}
	addWidgetFlags(authStatusCmd)
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
}
