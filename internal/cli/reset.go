package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the stored snapshot",
	Long: `Delete the persisted plan snapshot. The server falls back to the seed
plans on its next start.

You are asked to confirm unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetForce && !promptConfirm(cmd, "Delete all stored plans?") {
			return errors.New("reset cancelled by user")
		}

		ctx := context.Background()
		sess, err := openSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer sess.Close(ctx)

		if err := sess.store.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "snapshot %q deleted\n", sess.store.Key())
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Delete without confirmation")
}

// promptConfirm prompts the user for a yes/no confirmation.
func promptConfirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
