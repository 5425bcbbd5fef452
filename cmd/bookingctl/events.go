package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/spf13/cobra"
)

func eventsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail booking events until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(c.cfg.Kafka.Brokers) == 0 || c.cfg.Kafka.BookingEventsTopic == "" {
				return errors.New("kafka.brokers and kafka.booking_events_topic are required")
			}
			group, _ := cmd.Flags().GetString("group")
			if group == "" {
				group = c.cfg.Kafka.GroupID
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			consumer := kafka.NewConsumer(c.cfg.Kafka.Brokers, group, c.cfg.Kafka.BookingEventsTopic, c.log)
			defer consumer.Close()

			err := consumer.Consume(ctx, func(_ context.Context, event kafka.BookingEvent) error {
				return printJSON(cmd.OutOrStdout(), event)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("consume booking events: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("group", "", "consumer group (default kafka.group_id)")
	return cmd
}
