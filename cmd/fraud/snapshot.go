package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fraud-desk/internal/cli"
	"github.com/Veraticus/fraud-desk/internal/common"
	"github.com/Veraticus/fraud-desk/internal/storage"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and restore copies of the case database",
		Long: `Snapshots are full copies of the case database kept next to it in a
"snapshots" directory. Restore one to reset demo state.`,
	}

	cmd.AddCommand(snapshotCreateCmd())
	cmd.AddCommand(snapshotListCmd())
	cmd.AddCommand(snapshotRestoreCmd())
	cmd.AddCommand(snapshotDeleteCmd())

	return cmd
}

// withSnapshots opens storage and a snapshot manager for the duration of fn.
func withSnapshots(cmd *cobra.Command, fn func(sm *storage.SnapshotManager) error) error {
	store, cleanup, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	sm, err := store.NewSnapshotManager()
	if err != nil {
		return common.NewUserError("could not open snapshots", err)
	}
	return fn(sm)
}

func snapshotCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create [tag]",
		Short: "Create a snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := ""
			if len(args) == 1 {
				tag = args[0]
			}

			return withSnapshots(cmd, func(sm *storage.SnapshotManager) error {
				snap, err := sm.Create(cmd.Context(), tag, description)
				if err != nil {
					return common.NewUserError("could not create snapshot", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
					fmt.Sprintf("Created snapshot %s (%d cases, %d pending)", snap.ID, snap.CaseCount, snap.PendingCount)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "snapshot description")

	return cmd
}

func snapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSnapshots(cmd, func(sm *storage.SnapshotManager) error {
				snapshots, err := sm.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list snapshots: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(snapshots) == 0 {
					fmt.Fprintln(out, cli.FormatInfo("No snapshots"))
					return nil
				}
				for _, s := range snapshots {
					fmt.Fprintf(out, "%s  %s  %d cases  %s\n",
						cli.BoldStyle.Render(s.ID),
						s.CreatedAt.Format("2006-01-02 15:04"),
						s.CaseCount,
						cli.SubtleStyle.Render(s.Description))
				}
				return nil
			})
		},
	}
}

func snapshotRestoreCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <tag>",
		Short: "Replace the case database with a snapshot",
		Long: `Replace the case database with a snapshot.

Every case change since the snapshot was taken is lost. You will be asked
to confirm unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSnapshots(cmd, func(sm *storage.SnapshotManager) error {
				exists, err := sm.Exists(args[0])
				if err == nil && !exists {
					err = storage.ErrSnapshotNotFound
				}
				if err != nil {
					return common.NewUserError(fmt.Sprintf("could not restore snapshot %s", args[0]), err)
				}

				if !force {
					ok, err := cli.Confirm(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(),
						fmt.Sprintf("Replace all cases with snapshot %s?", args[0]))
					if err != nil {
						return fmt.Errorf("failed to read confirmation: %w", err)
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Restore canceled"))
						return nil
					}
				}

				if err := sm.Restore(cmd.Context(), args[0]); err != nil {
					return common.NewUserError(fmt.Sprintf("could not restore snapshot %s", args[0]), err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Restored snapshot %s", args[0])))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "restore without asking for confirmation")

	return cmd
}

func snapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tag>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSnapshots(cmd, func(sm *storage.SnapshotManager) error {
				if err := sm.Delete(cmd.Context(), args[0]); err != nil {
					return common.NewUserError(fmt.Sprintf("could not delete snapshot %s", args[0]), err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted snapshot %s", args[0])))
				return nil
			})
		},
	}
}
