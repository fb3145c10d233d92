package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show (creating if needed) the current anonymous user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile

			if err := client.Get("/api/user/me/", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newPointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Points commands",
	}

	cmd.AddCommand(newPointsAddCmd())

	return cmd
}

func newPointsAddCmd() *cobra.Command {
	var amount int64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add points to the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if cmd.Flags().Changed("amount") {
				if amount < 1 {
					return fmt.Errorf("--amount must be a positive integer")
				}
				req["amount"] = amount
			}

			var result Profile
			if err := client.Post("/api/user/me/points/", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 1, "Points to add (server default 1)")

	return cmd
}
