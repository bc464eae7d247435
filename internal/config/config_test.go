package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(8080, cfg.Port)
	req.Equal(54*time.Second, cfg.PingPeriod)
	req.Equal(2.0, cfg.Sync.DriftThreshold)
	req.Equal(2*time.Second, cfg.Sync.BootstrapTimeout)
	req.Equal(3*time.Second, cfg.Directory.Timeout)
	req.Equal("none", cfg.Directory.Driver)
	req.Equal(30, cfg.RateLimit.Events)
	req.Equal(time.Second, cfg.RateLimit.Interval)
	req.Equal(2*time.Second, cfg.Sync.MaxClockSkew)
}

func TestLoad_EnvOverrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("WATCH_PORT", "9090")
	t.Setenv("WATCH_SYNC_DRIFT_THRESHOLD", "1.5")
	t.Setenv("WATCH_SYNC_BOOTSTRAP_TIMEOUT", "500ms")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(9090, cfg.Port)
	req.Equal(1.5, cfg.Sync.DriftThreshold)
	req.Equal(500*time.Millisecond, cfg.Sync.BootstrapTimeout)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("unknown directory driver", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("CONFIG_ENV", "missing")
		t.Setenv("WATCH_DIRECTORY_DRIVER", "mongo")

		_, err := Load()
		req.Error(err)
	})

	t.Run("postgres needs a dsn", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("CONFIG_ENV", "missing")
		t.Setenv("WATCH_DIRECTORY_DRIVER", "postgres")

		_, err := Load()
		req.ErrorContains(err, "dsn")
	})

	t.Run("rate limit must allow events", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("CONFIG_ENV", "missing")
		t.Setenv("WATCH_RATE_LIMIT_EVENTS", "0")

		_, err := Load()
		req.ErrorContains(err, "rate_limit.events")
	})

	t.Run("rate limit interval must be positive", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("CONFIG_ENV", "missing")
		t.Setenv("WATCH_RATE_LIMIT_INTERVAL", "0s")

		_, err := Load()
		req.ErrorContains(err, "rate_limit.interval")
	})

	t.Run("clock skew must be positive", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("CONFIG_ENV", "missing")
		t.Setenv("WATCH_SYNC_MAX_CLOCK_SKEW", "0s")

		_, err := Load()
		req.ErrorContains(err, "sync.max_clock_skew")
	})
}
