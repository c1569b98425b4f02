package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/events"
	"github.com/alfredjeanlab/orgwidget/internal/widget"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

// directoryTopics change the records the widget shows.
var directoryTopics = []string{
	events.TopicOrganizationUpdated,
	events.TopicCostCenterCreated,
	events.TopicUserUpdated,
}

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Render the organization widget and re-render on changes",
	GroupID: "widget",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		run, err := newWidgetRun(ctx, cmd)
		if err != nil {
			return err
		}
		defer run.Close()

		triggers := make(chan widget.Trigger, 8)
		send := func(t widget.Trigger) {
			select {
			case triggers <- t:
			case <-ctx.Done():
			}
		}

		if widgetCfg.NATSURL != "" {
			if err := watchNATS(ctx, widgetCfg.NATSURL, run, send); err != nil {
				return err
			}
		} else {
			go watchPoll(ctx, interval, run, send)
		}

		emit := func(v widget.View) {
			if !jsonOutput {
				fmt.Fprintf(stdout, "--- %s %s\n", time.Now().Format(time.TimeOnly), v.State)
			}
			if err := run.render(stdout, v); err != nil {
				logger.Error("render failed", "err", err)
			}
		}
		err = run.widget.Run(ctx, triggers, emit)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

// watchNATS pushes session and directory events into the widget. A NATS
// reconnect triggers a full refresh since events may have been missed.
func watchNATS(ctx context.Context, url string, run *widgetRun, send func(widget.Trigger)) error {
	sub, err := events.NewNATSSubscriber(url,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
			go func() {
				if _, err := run.source.Refresh(ctx); err == nil {
					send(widget.TriggerSession)
				}
				send(widget.TriggerData)
			}()
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	run.closers = append(run.closers, sub.Close)

	go func() {
		if err := run.source.Watch(ctx, sub, func() { send(widget.TriggerSession) }); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("session watch stopped", "err", err)
		}
	}()

	for _, topic := range directoryTopics {
		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return err
		}
		go func() {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-ch:
					if !ok {
						return
					}
					logger.Debug("directory changed", "topic", topic)
					send(widget.TriggerData)
				}
			}
		}()
	}
	logger.Debug("watching events", "nats_url", url)
	return nil
}

// watchPoll reloads the session and the records every interval.
func watchPoll(ctx context.Context, interval time.Duration, run *widgetRun, send func(widget.Trigger)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := run.source.Refresh(ctx); err == nil {
				send(widget.TriggerSession)
			}
			send(widget.TriggerData)
		}
	}
}

func init() {
	addWidgetFlags(watchCmd)
	watchCmd.Flags().Duration("interval", 5*time.Second, "poll interval when NATS is not configured")
}
