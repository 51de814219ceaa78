package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Bot.Size)
	assert.Equal(t, 0.70, cfg.Bot.StopFraction)
	assert.Equal(t, 1.35, cfg.Bot.StopRaise)
	assert.Equal(t, []float64{1.10, 1.20, 1.60, 2.00, 2.50, 3.00}, cfg.Bot.Scale)
	assert.Equal(t, "https://api.tdameritrade.com/v1", cfg.Broker.BaseUrl)
	assert.Equal(t, "trades.csv", cfg.Runtime.Journal)
	assert.False(t, cfg.Runtime.DryRun)
}

func TestLoadRejectsBadSize(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("bot.size", 0)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsShortScale(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("bot.size", 3)
	viper.Set("bot.scale", []float64{1.1, 1.2})

	_, err := Load()
	assert.Error(t, err)
}

func TestEnvSubstitution(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("TD_REFRESH", "secret-token")
	viper.Set("broker.refresh_token", "${TD_REFRESH}")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "secret-token", cfg.Broker.RefreshToken)
}
