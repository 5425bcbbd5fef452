package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Domenick1991/skybooking/internal/remote"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func bookCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "book [request.yaml]",
		Short: "Create a booking from a YAML request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}
			var payload remote.BookingPayload
			if err := yaml.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("parse request: %w", err)
			}

			comm, err := c.communicator(cmd.Context())
			if err != nil {
				return err
			}
			created, err := remote.NewBookingsClient(comm).CreateBooking(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}
}

func getCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get [booking-id]",
		Short: "Show a committed booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid booking id: %w", err)
			}

			comm, err := c.communicator(cmd.Context())
			if err != nil {
				return err
			}
			found, err := remote.NewBookingsClient(comm).GetBooking(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), found)
		},
	}
}

func flightCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "flight [flight-id]",
		Short: "Look up a flight in the flights service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid flight id: %w", err)
			}

			comm, err := c.communicator(cmd.Context())
			if err != nil {
				return err
			}
			flight, err := remote.NewFlightsClient(comm, nil, c.log).GetFlight(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), flight)
		},
	}
}
