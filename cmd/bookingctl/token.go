package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func tokenCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Authenticate the configured identity and print the bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			comm, err := c.communicator(cmd.Context())
			if err != nil {
				return err
			}
			if err := comm.RequestAuthorization(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, comm.CurrentToken())
			if expiry := comm.Manager().Expiry(); !expiry.IsZero() {
				fmt.Fprintf(out, "expires %s\n", expiry.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}
