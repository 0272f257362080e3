package cli

import (
	"errors"
	"fmt"
	"time"

	"alcyxob/palestra-app/internal/api"
	"alcyxob/palestra-app/internal/domain"

	"github.com/spf13/cobra"
)

var (
	tokenUser string
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for local testing",
	Long: `Sign a token with the configured jwt.secret.

For clients the user id must be the client id in the plan store.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if err := cfg.ValidateServer(); err != nil {
			return err
		}

		role := domain.Role(tokenRole)
		if !role.Valid() {
			return fmt.Errorf("invalid role %q", tokenRole)
		}
		if tokenUser == "" {
			return errors.New("--user is required")
		}

		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.JWT.Expiration
		}

		token, err := api.GenerateToken(cfg.JWT.Secret, tokenUser, role, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "User id, the client id for clients")
	tokenCmd.Flags().StringVarP(&tokenRole, "role", "r", string(domain.RoleTrainer), "trainer or client")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime, defaults to jwt.expiration")
}
