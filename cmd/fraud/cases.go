package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fraud-desk/internal/cli"
	"github.com/Veraticus/fraud-desk/internal/common"
	"github.com/Veraticus/fraud-desk/internal/model"
)

func casesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Inspect and resolve fraud cases",
		Long:  `Look up pending fraud cases, record outcomes, and list the case table.`,
	}

	// Subcommands
	cmd.AddCommand(casesListCmd())
	cmd.AddCommand(casesFindCmd())
	cmd.AddCommand(casesShowCmd())
	cmd.AddCommand(casesUpdateCmd())
	cmd.AddCommand(casesVerifyCmd())

	return cmd
}

func casesListCmd() *cobra.Command {
	var (
		filter model.CaseFilter
		status string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fraud cases, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cleanup, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			filter.Status = model.CaseStatus(status)
			cases, err := store.ListCases(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list cases: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cases)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("Fraud cases (%d)", len(cases))))
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCaseTable(cases))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only cases with this status")
	cmd.Flags().StringVar(&filter.UserName, "user", "", "only cases for this user (case-insensitive)")
	cmd.Flags().StringVar(&filter.Category, "category", "", "only cases in this transaction category")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of cases (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func casesFindCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "find <username>",
		Short: "Find the most recent pending case for a user",
		Long: `Find the most recently created case still pending review for a user.
The user name is matched case-insensitively.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, cleanup, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := store.FindPendingCaseByUsername(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to find case: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, c)
			}
			if c == nil {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("No pending case for %q", args[0])))
				return nil
			}

			fmt.Fprintln(out, cli.RenderCaseDetail(c))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON (null when no case is pending)")

	return cmd
}

func casesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a case by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCaseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, cleanup, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := store.GetCase(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get case: %w", err)
			}
			if c == nil {
				return common.NewUserError(fmt.Sprintf("case %d does not exist", id), common.ErrNotFound)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCaseDetail(c))
			return nil
		},
	}
}

func casesUpdateCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "update <id> <status>",
		Short: "Record the outcome of a case",
		Long: `Set the status and outcome note of a case and refresh its updatedAt.

Common statuses: pending_review, confirmed_fraud, not_fraud, verification_failed.
Other values are accepted unless --strict-status is set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCaseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, cleanup, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			status := model.CaseStatus(args[1])
			updated, err := store.UpdateCaseStatus(ctx, id, status, note)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("could not update case %d", id), err)
			}

			out := cmd.OutOrStdout()
			if !updated {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("No case with id %d; nothing updated", id)))
				return nil
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Case %d is now %s", id, cli.StatusStyle(status).Render(string(status)))))
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "outcome note to record")

	return cmd
}

func casesVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id> <answer>",
		Short: "Check a customer's answer to the case security question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCaseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, cleanup, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ok, err := store.VerifySecurityAnswer(ctx, id, args[1])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("could not verify case %d", id), err)
			}

			out := cmd.OutOrStdout()
			if ok {
				fmt.Fprintln(out, cli.FormatSuccess("Security answer verified"))
			} else {
				fmt.Fprintln(out, cli.FormatError("Security answer does not match"))
			}
			return nil
		},
	}
}
