package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"alcyxob/palestra-app/internal/domain"
	"alcyxob/palestra-app/internal/planstore"
	"alcyxob/palestra-app/internal/seed"

	"github.com/spf13/cobra"
)

var showClientID string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored plans as JSON",
	Long: `Print the plan snapshot in the current envelope format without
writing anything back.

When no snapshot is stored, the seed plans are printed. Use --client to print
a single client.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, kv, closeBackend, _, err := openKV(ctx, cmd)
		if err != nil {
			return err
		}
		defer closeBackend()

		raw, found, err := kv.Get(ctx, storageKey(cfg))
		if err != nil {
			return err
		}

		snap := domain.Snapshot{Version: planstore.StoreVersion, Clients: seed.Clients()}
		if found {
			if snap, _, err = planstore.Decode(raw); err != nil {
				return fmt.Errorf("stored snapshot %q is unreadable: %w", storageKey(cfg), err)
			}
		}

		if showClientID == "" {
			return writeJSON(cmd, snap)
		}
		for _, c := range snap.Clients {
			if c.ID == showClientID {
				return writeJSON(cmd, c)
			}
		}
		return fmt.Errorf("client %q not found", showClientID)
	},
}

func init() {
	showCmd.Flags().StringVar(&showClientID, "client", "", "Only print this client")
}

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// summary is one line per client for the human readable outputs.
func summary(clients []domain.Client) []string {
	lines := make([]string, 0, len(clients))
	for _, c := range clients {
		exercises := 0
		for _, d := range c.PlanDays {
			exercises += len(d.Exercises)
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t%d days\t%d exercises", c.ID, c.Name, len(c.PlanDays), exercises))
	}
	return lines
}
