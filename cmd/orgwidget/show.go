package main

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show",
	Short:   "Render the organization widget once",
	GroupID: "widget",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		run, err := newWidgetRun(ctx, cmd)
		if err != nil {
			return err
		}
		defer run.Close()

		view := run.widget.Evaluate(ctx)
		if !view.Visible() {
			logger.Info("widget hidden", "session_id", run.source.ID())
		}
		return run.render(stdout, view)
	},
}

func init() {
	addWidgetFlags(showCmd)
}
