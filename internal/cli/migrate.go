package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Rewrite the stored snapshot in the current format",
	Long: `Load the snapshot, upgrading a legacy bare array or filling in missing
weekdays, and write it back as a versioned envelope.

A missing or unreadable snapshot is replaced by the seed plans.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		sess, err := openSession(ctx, cmd)
		if err != nil {
			return err
		}
		clients := sess.store.Clients()
		if err := sess.Close(ctx); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}

		// The writer logs failures instead of returning them, so check the result.
		raw, found, err := sess.kv.Get(ctx, sess.store.Key())
		if err != nil {
			return err
		}
		if !found || raw == "" {
			return fmt.Errorf("snapshot %q was not written", sess.store.Key())
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "snapshot %q written with %d clients\n", sess.store.Key(), len(clients))
		for _, line := range summary(clients) {
			fmt.Fprintf(out, "  %s\n", line)
		}
		return nil
	},
}
