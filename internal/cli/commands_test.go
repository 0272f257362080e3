package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"alcyxob/palestra-app/internal/backend"
	"alcyxob/palestra-app/internal/config"
	"alcyxob/palestra-app/internal/domain"
	"alcyxob/palestra-app/internal/planstore"
	"alcyxob/palestra-app/internal/storage"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testSecret = "planctl-test-secret"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// useMemoryBackend points every command at kv for the duration of the test.
func useMemoryBackend(t *testing.T, kv storage.KeyValueStore) {
	t.Helper()
	origLoad, origOpen := loadConfig, openBackend
	t.Cleanup(func() {
		loadConfig, openBackend = origLoad, origOpen
	})

	loadConfig = func(string) (config.Config, error) {
		return config.Config{
			Storage: config.StorageConfig{Backend: storage.BackendMemory, Key: planstore.DefaultStorageKey},
			JWT:     config.JWTConfig{Secret: testSecret, Expiration: time.Hour},
			Persist: config.PersistConfig{Timeout: time.Second},
		}, nil
	}
	openBackend = func(context.Context, config.Config, logrus.FieldLogger) (storage.KeyValueStore, backend.CloseFunc, error) {
		return kv, func() error { return nil }, nil
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	showClientID, resetForce = "", false
	tokenUser, tokenRole, tokenTTL = "", string(domain.RoleTrainer), 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestShow_SeedWhenEmpty(t *testing.T) {
	kv := storage.NewMemoryStore()
	useMemoryBackend(t, kv)

	out, err := run(t, "", "show")
	require.NoError(t, err)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, planstore.StoreVersion, snap.Version)
	assert.Len(t, snap.Clients, 3)

	// show never writes
	_, found, err := kv.Get(context.Background(), planstore.DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestShow_Client(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), planstore.DefaultStorageKey,
		`[{"id":"c9","name":"Anna","status":"active","planDays":[{"id":"thu_1","title":"Giovedì","exercises":[]}]}]`))
	useMemoryBackend(t, kv)

	out, err := run(t, "", "show", "--client", "c9")
	require.NoError(t, err)

	var c domain.Client
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, "Anna", c.Name)
	assert.Equal(t, domain.Thursday, c.PlanDays[0].Weekday)

	_, err = run(t, "", "show", "--client", "c1")
	assert.ErrorContains(t, err, `client "c1" not found`)
}

func TestShow_Corrupted(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), planstore.DefaultStorageKey, `{"clients":`))
	useMemoryBackend(t, kv)

	_, err := run(t, "", "show")
	assert.ErrorContains(t, err, "unreadable")
}

func TestMigrate_UpgradesLegacy(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, planstore.DefaultStorageKey,
		`[{"id":"c9","name":"Anna","status":"active","planDays":[{"id":"fri_1","title":"Venerdì"}]}]`))
	useMemoryBackend(t, kv)

	out, err := run(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "written with 1 clients")
	assert.Contains(t, out, "c9\tAnna\t1 days\t0 exercises")

	raw, found, err := kv.Get(ctx, planstore.DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"version":1,"clients":[{"id":"c9","name":"Anna","status":"active","planDays":[
		{"id":"fri_1","weekday":"fri","title":"Venerdì","exercises":[]}]}]}`, raw)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, planstore.DefaultStorageKey, `{"version":1,"clients":[]}`))
	useMemoryBackend(t, kv)

	_, err := run(t, "n\n", "reset")
	require.Error(t, err)
	_, found, _ := kv.Get(ctx, planstore.DefaultStorageKey)
	assert.True(t, found)

	out, err := run(t, "", "reset", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
	_, found, err = kv.Get(ctx, planstore.DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestToken(t *testing.T) {
	useMemoryBackend(t, storage.NewMemoryStore())

	out, err := run(t, "", "token", "--user", "c1", "--role", "client", "--ttl", "10m")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "c1", claims["uid"])
	assert.Equal(t, "client", claims["role"])

	_, err = run(t, "", "token", "--user", "c1", "--role", "admin")
	assert.ErrorContains(t, err, "invalid role")

	_, err = run(t, "", "token")
	assert.ErrorContains(t, err, "--user")
}

func TestOpenSession_BackendError(t *testing.T) {
	useMemoryBackend(t, storage.NewMemoryStore())
	openBackend = func(context.Context, config.Config, logrus.FieldLogger) (storage.KeyValueStore, backend.CloseFunc, error) {
		return nil, nil, errors.New("redis down")
	}

	_, err := run(t, "", "migrate")
	assert.ErrorContains(t, err, "redis down")
}

func TestRootCommand_Help(t *testing.T) {
	out, err := run(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "planctl")
	assert.Contains(t, out, "migrate")
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, planstore.DefaultStorageKey, storageKey(config.Config{}))
	assert.Equal(t, "custom", storageKey(config.Config{Storage: config.StorageConfig{Key: "custom"}}))
}
