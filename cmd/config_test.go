package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ORDERFLOW_DB_USER", "orderflow")
	t.Setenv("ORDERFLOW_DB_NAME", "orders")
	t.Setenv("ORDERFLOW_REDIS_ADDR", "localhost:6379")
	t.Setenv("ORDERFLOW_JWT_SECRET", "secret")
	t.Setenv("ORDERFLOW_WEBHOOK_TOKEN", "hook")
	t.Setenv("ORDERFLOW_PROVIDER_MODE", "fake")
	t.Setenv("ORDERFLOW_PROVIDER_ID", "7")
	t.Setenv("ORDERFLOW_PROVIDER_STATUS_MAP", "1:dispatched,4:in_transit,9:delivered")
}

func TestLoadConfig(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTP.Port)
		assert.Equal(t, 5*time.Second, cfg.DB.RotationLockTimeout)
		assert.Equal(t, "0 */5 * * * *", cfg.Jobs.ReconcileSchedule)
		assert.Equal(t, 100, cfg.Jobs.RelayBatchSize)
		assert.Equal(t, "orderflow:order-events", cfg.Outbox.Stream)
		assert.Equal(t, int64(7), cfg.Provider.ID)

		statuses, err := cfg.Provider.StatusMap()
		require.NoError(t, err)
		assert.Equal(t, order.DeliveryInTransit, statuses[4])
	})

	t.Run("should read env file", func(t *testing.T) {
		setRequiredEnv(t)
		envFile := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(envFile, []byte("ORDERFLOW_HTTP_PORT=9090\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("ORDERFLOW_HTTP_PORT") })

		cfg, err := LoadConfig(envFile)

		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.HTTP.Port)
	})

	t.Run("should fail without required keys", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ORDERFLOW_JWT_SECRET", "")
		require.NoError(t, os.Unsetenv("ORDERFLOW_JWT_SECRET"))

		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

		require.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Redis:    RedisConfig{Address: "localhost:6379"},
			Provider: ProviderConfig{Mode: ProviderModeFake, ID: 7, RawStatusMap: "1:dispatched"},
			Jobs:     JobsConfig{ReconcileBatchSize: 100, RelayBatchSize: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "fake provider", mutate: func(*Config) {}},
		{
			name: "http provider with url and key",
			mutate: func(c *Config) {
				c.Provider.Mode = ProviderModeHTTP
				c.Provider.BaseURL = "https://api.provider.test"
				c.Provider.APIKey = "key"
			},
		},
		{
			name:    "http provider without url",
			mutate:  func(c *Config) { c.Provider.Mode = ProviderModeHTTP; c.Provider.APIKey = "key" },
			wantErr: true,
		},
		{name: "unknown mode", mutate: func(c *Config) { c.Provider.Mode = "smtp" }, wantErr: true},
		{name: "bad status map", mutate: func(c *Config) { c.Provider.RawStatusMap = "1:teleported" }, wantErr: true},
		{name: "reconcile batch too large", mutate: func(c *Config) { c.Jobs.ReconcileBatchSize = 501 }, wantErr: true},
		{name: "relay batch zero", mutate: func(c *Config) { c.Jobs.RelayBatchSize = 0 }, wantErr: true},
		{name: "no redis", mutate: func(c *Config) { c.Redis = RedisConfig{} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	dsn := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "orders", SSLMode: "disable"}.DSN()

	assert.Equal(t, "host=db port=5432 user=u dbname=orders sslmode=disable password=p", dsn)
}
