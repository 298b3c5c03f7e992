package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setNotifierEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NOTIFIER_DELAY", "1m")
	t.Setenv("NOTIFIER_CHECK_WINDOW", "1m")
	t.Setenv("NOTIFIER_UTC_OFFSET_HOURS", "0")
}

func TestLoadDefaults(t *testing.T) {
	setNotifierEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
}

func TestLoadOverrides(t *testing.T) {
	setNotifierEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NOTIFIER_DELAY", "30s")
	t.Setenv("NOTIFIER_CHECK_WINDOW", "5m")
	t.Setenv("NOTIFIER_UTC_OFFSET_HOURS", "5.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Notifier.Delay)
	assert.Equal(t, 5*time.Minute, cfg.Notifier.CheckWindow)
	assert.Equal(t, 5*time.Hour+30*time.Minute, cfg.Notifier.UTCOffset)
}

func TestLoadNotifierVarsRequired(t *testing.T) {
	cases := []struct {
		name string
		skip string
	}{
		{"missing delay", "NOTIFIER_DELAY"},
		{"missing window", "NOTIFIER_CHECK_WINDOW"},
		{"missing offset", "NOTIFIER_UTC_OFFSET_HOURS"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setNotifierEnv(t)
			t.Setenv(tc.skip, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.skip)
		})
	}
}

func TestLoadNotifierRejectsInvalidValues(t *testing.T) {
	setNotifierEnv(t)
	t.Setenv("NOTIFIER_DELAY", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTIFIER_DELAY")
}

func TestLoadNotifierRejectsNonPositive(t *testing.T) {
	setNotifierEnv(t)
	t.Setenv("NOTIFIER_CHECK_WINDOW", "-1m")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTIFIER_CHECK_WINDOW")
}

func TestNegativeUTCOffsetAllowed(t *testing.T) {
	setNotifierEnv(t)
	t.Setenv("NOTIFIER_UTC_OFFSET_HOURS", "-4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, -4*time.Hour, cfg.Notifier.UTCOffset)
}
