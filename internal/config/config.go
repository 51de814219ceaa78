package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Broker  BrokerConfig
	Bot     BotConfig
	Runtime RuntimeConfig
}

type BrokerConfig struct {
	BaseUrl      string
	AuthUrl      string
	ClientKey    string
	RefreshToken string
	AccountID    string
}

type BotConfig struct {
	Size         int
	StopFraction float64
	Scale        []float64
	StopRaise    float64
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type RuntimeConfig struct {
	Log     LogConfig
	DryRun  bool
	Journal string
}

func Load() (*Config, error) {

	cfg := &Config{}
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	viper.ReadInConfig()

	viper.SetDefault("bot.size", 2)
	viper.SetDefault("bot.stop_fraction", 0.70)
	viper.SetDefault("bot.stop_raise", 1.35)
	viper.SetDefault("bot.scale", []float64{1.10, 1.20, 1.60, 2.00, 2.50, 3.00})
	viper.SetDefault("broker.base_url", "https://api.tdameritrade.com/v1")
	viper.SetDefault("broker.auth_url", "https://api.tdameritrade.com/v1/oauth2/token")
	viper.SetDefault("runtime.journal", "trades.csv")

	cfg.Broker = BrokerConfig{
		BaseUrl:      viper.GetString("broker.base_url"),
		AuthUrl:      viper.GetString("broker.auth_url"),
		ClientKey:    envSub("broker.client_key"),
		RefreshToken: envSub("broker.refresh_token"),
		AccountID:    envSub("broker.account_id"),
	}

	cfg.Bot = BotConfig{
		Size:         viper.GetInt("bot.size"),
		StopFraction: viper.GetFloat64("bot.stop_fraction"),
		Scale:        floats(viper.GetStringSlice("bot.scale")),
		StopRaise:    viper.GetFloat64("bot.stop_raise"),
	}

	cfg.Runtime = RuntimeConfig{
		Log: LogConfig{
			Level:      viper.GetString("runtime.log.level"),
			Format:     viper.GetString("runtime.log.format"),
			File:       viper.GetString("runtime.log.file"),
			MaxSize:    viper.GetInt("runtime.log.max_size"),
			MaxBackups: viper.GetInt("runtime.log.max_backups"),
			MaxAge:     viper.GetInt("runtime.log.max_age"),
			Compress:   viper.GetBool("runtime.log.compress"),
		},
		DryRun:  viper.GetBool("runtime.dry_run"),
		Journal: viper.GetString("runtime.journal"),
	}

	if cfg.Bot.Size < 1 {
		return nil, fmt.Errorf("Некорректный размер позиции: %d", cfg.Bot.Size)
	}
	if len(cfg.Bot.Scale) < cfg.Bot.Size {
		return nil, fmt.Errorf("Недостаточно целей в scale: %d < %d", len(cfg.Bot.Scale), cfg.Bot.Size)
	}

	return cfg, nil
}

func floats(values []string) []float64 {
	var result []float64
	for _, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		result = append(result, f)
	}
	return result
}

func envSub(key string) string {
	val := viper.GetString(key)
	if val == "" {
		return ""
	}

	re := regexp.MustCompile(`\$\{(\w+)\}`)
	return re.ReplaceAllStringFunc(val, func(match string) string {
		envKey := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(envKey)
	})
}
