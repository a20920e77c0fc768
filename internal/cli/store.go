package cli

import (
	"github.com/spf13/cobra"
)

// buildStoreCmds returns the shard-store lifecycle commands spec.md §6
// lists as top-level siblings: write (flush in-memory edits to the shard
// store file), persist/backup/restore (shell-hook delegation), and reload
// (re-read the file, discarding any unsaved in-memory state).
func buildStoreCmds(app *App) []*cobra.Command {
	write := &cobra.Command{
		Use:   "write",
		Short: "Flush the shard store to disk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Shards.Save(); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "shard store written")
			return nil
		},
	}

	persist := &cobra.Command{
		Use:   "persist",
		Short: "Run the configured persistShards hook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Runner.Persist(cmd.Context()); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "shards persisted")
			return nil
		},
	}

	backup := &cobra.Command{
		Use:   "backup",
		Short: "Run the configured backupShards hook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Runner.Backup(cmd.Context()); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "shards backed up")
			return nil
		},
	}

	restore := &cobra.Command{
		Use:   "restore",
		Short: "Run the configured restoreBackup hook, then reload the shard store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Runner.Restore(cmd.Context()); err != nil {
				return err
			}
			if err := app.Shards.Load(); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "shards restored")
			return nil
		},
	}

	reload := &cobra.Command{
		Use:   "reload",
		Short: "Re-read the shard store file, discarding unsaved in-memory edits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Shards.Load(); err != nil {
				return err
			}
			outln(cmd.OutOrStdout(), "shard store reloaded")
			return nil
		},
	}

	return []*cobra.Command{write, persist, backup, restore, reload}
}
