// Package cli implements planctl, the operator tool for the persisted plan
// snapshot.
package cli

import (
	"context"
	"io"

	"alcyxob/palestra-app/internal/backend"
	"alcyxob/palestra-app/internal/config"
	"alcyxob/palestra-app/internal/logging"
	"alcyxob/palestra-app/internal/planstore"
	"alcyxob/palestra-app/internal/seed"
	"alcyxob/palestra-app/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Replaced in tests.
	loadConfig  = config.LoadConfig
	openBackend = backend.Open
)

// rootCmd is the root command for planctl.
var rootCmd = &cobra.Command{
	Use:     "planctl",
	Version: "dev",
	Short:   "Inspect and maintain the persisted workout plan snapshot",
	Long: `planctl works directly on the storage backend the palestra server uses.

It can print the stored plans, rewrite a legacy snapshot in the current
format, delete the snapshot so the next start uses the seed, and issue
bearer tokens for local testing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config directory or yaml file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log storage activity to stderr")

	rootCmd.AddCommand(showCmd, migrateCmd, resetCmd, tokenCmd)
}

// session is an opened backend with a plan store on top of it.
type session struct {
	cfg   config.Config
	kv    storage.KeyValueStore
	store *planstore.Store
	close backend.CloseFunc
}

func newLogger(out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logging.GetLevel("debug"))
	}
	return log
}

// openKV loads config and opens the configured backend.
func openKV(ctx context.Context, cmd *cobra.Command) (config.Config, storage.KeyValueStore, backend.CloseFunc, *logrus.Logger, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return cfg, nil, nil, nil, err
	}

	log := newLogger(cmd.ErrOrStderr())
	kv, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return cfg, nil, nil, nil, err
	}
	return cfg, kv, closeBackend, log, nil
}

// openSession opens the backend and hydrates a plan store on top of it.
func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, kv, closeBackend, log, err := openKV(ctx, cmd)
	if err != nil {
		return nil, err
	}

	store := planstore.New(kv, seed.Clients,
		planstore.WithLogger(log),
		planstore.WithStorageKey(storageKey(cfg)),
		planstore.WithPersistTimeout(cfg.Persist.Timeout),
	)
	if err := store.Hydrate(ctx); err != nil {
		_ = store.Close(ctx)
		_ = closeBackend()
		return nil, err
	}

	return &session{cfg: cfg, kv: kv, store: store, close: closeBackend}, nil
}

// Close flushes pending writes and releases the backend.
func (s *session) Close(ctx context.Context) error {
	err := s.store.Close(ctx)
	if cerr := s.close(); err == nil {
		err = cerr
	}
	return err
}

func storageKey(cfg config.Config) string {
	if cfg.Storage.Key == "" {
		return planstore.DefaultStorageKey
	}
	return cfg.Storage.Key
}
