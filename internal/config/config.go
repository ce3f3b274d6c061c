package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken    string       `yaml:"discord_token"`
	DatabasePath    string       `yaml:"database_path"`
	LogLevel        string       `yaml:"log_level"`
	CommandPrefix   string       `yaml:"command_prefix"`
	DefaultLanguage string       `yaml:"default_language"`
	MutedRoleName   string       `yaml:"muted_role_name"`
	Confirmation    Confirmation `yaml:"confirmation"`
	EmbedColors     EmbedColors  `yaml:"embed_colors"`
}

type Confirmation struct {
	ConfirmEmoji string `yaml:"confirm_emoji"`
	SilentEmoji  string `yaml:"silent_emoji"`
}

type EmbedColors struct {
	Punishment int `yaml:"punishment"`
	Success    int `yaml:"success"`
	Error      int `yaml:"error"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:    "/data/warden.db",
		LogLevel:        "info",
		CommandPrefix:   "+",
		DefaultLanguage: "en-us",
		MutedRoleName:   "Muted",
		Confirmation: Confirmation{
			ConfirmEmoji: "✅",
			SilentEmoji:  "\U0001F507",
		},
		EmbedColors: EmbedColors{
			Punishment: 0xDD0000,
			Success:    0x43B581,
			Error:      0xF04747,
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = "+"
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.CommandPrefix = envString("COMMAND_PREFIX", cfg.CommandPrefix)
	cfg.DefaultLanguage = envString("DEFAULT_LANGUAGE", cfg.DefaultLanguage)
	cfg.MutedRoleName = envString("MUTED_ROLE_NAME", cfg.MutedRoleName)
	cfg.EmbedColors.Punishment = envInt("EMBED_COLOR_PUNISHMENT", cfg.EmbedColors.Punishment)
	cfg.EmbedColors.Success = envInt("EMBED_COLOR_SUCCESS", cfg.EmbedColors.Success)
	cfg.EmbedColors.Error = envInt("EMBED_COLOR_ERROR", cfg.EmbedColors.Error)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
