package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0 * * * * *", cfg.Scheduler.Cron)
	assert.Equal(t, time.Duration(0), cfg.Scheduler.Lookahead)
	assert.Equal(t, 55*time.Second, cfg.Scheduler.LockTTL)
	assert.False(t, cfg.Scheduler.Embedded)
	assert.Equal(t, 48*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RECURRING_CRON", "*/30 * * * * *")
	t.Setenv("RECURRING_LOOKAHEAD", "216h")
	t.Setenv("SCHEDULER_EMBEDDED", "true")
	t.Setenv("SCHEDULER_TIMEZONE", "UTC")
	t.Setenv("DATABASE_URL", "postgres://app@db/invoices")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "*/30 * * * * *", cfg.Scheduler.Cron)
	assert.Equal(t, 9*24*time.Hour, cfg.Scheduler.Lookahead)
	assert.True(t, cfg.Scheduler.Embedded)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, "postgres://app@db/invoices", cfg.Database.DSN())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing jwt secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "five field cron", env: map[string]string{"JWT_SECRET": "s", "RECURRING_CRON": "* * * * *"}},
		{name: "negative lookahead", env: map[string]string{"JWT_SECRET": "s", "RECURRING_LOOKAHEAD": "-1h"}},
		{name: "unknown timezone", env: map[string]string{"JWT_SECRET": "s", "SCHEDULER_TIMEZONE": "Nowhere/City"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestDatabaseConfig_DSNFromParts(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "app", Password: "pw", Name: "invoices", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=app password=pw dbname=invoices sslmode=disable", d.DSN())
}
