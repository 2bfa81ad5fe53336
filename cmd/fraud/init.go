package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fraud-desk/internal/cli"
	"github.com/Veraticus/fraud-desk/internal/model"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create and seed the case database",
		Long: `Create the fraud_cases table if it does not exist and insert the sample
cases when the table is empty. Existing data is never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cleanup, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			total, err := store.CountCases(ctx)
			if err != nil {
				return fmt.Errorf("failed to count cases: %w", err)
			}
			pending, err := store.CountCasesByStatus(ctx, model.StatusPendingReview)
			if err != nil {
				return fmt.Errorf("failed to count pending cases: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Case database ready at %s", store.Path())))
			fmt.Fprintf(out, "%d cases, %d pending review\n", total, pending)
			return nil
		},
	}
}
