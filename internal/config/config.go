package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/veto"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type OAuth struct {
	DiscordKey         string
	DiscordSecret      string
	DiscordCallbackURL string
	GoogleKey          string
	GoogleSecret       string
	GoogleCallbackURL  string
}

type Config struct {
	Port     int
	DBPath   string
	LogLevel slog.Level
	// Origins allowed to call the API from a browser
	AllowedOrigins []string
	// Sustained score and veto submissions allowed per caller per second
	ActionRate float64
	Defaults   TournamentDefaults
	OAuth      OAuth
}

// TournamentDefaults apply to tournaments created without their own settings
type TournamentDefaults struct {
	Format  bracket.Format       `yaml:"format"`
	BestOf  bracket.BestOfPolicy `yaml:"best_of"`
	MapPool []string             `yaml:"map_pool"`
}

func DefaultTournamentDefaults() TournamentDefaults {
	return TournamentDefaults{
		Format:  bracket.Format{Kind: bracket.SingleElimination},
		BestOf:  bracket.DefaultBestOfPolicy(),
		MapPool: veto.DefaultPool,
	}
}

// Load reads the environment, optionally seeded from a .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		DBPath:         envOr("DB_PATH", "bracket_engine.db"),
		AllowedOrigins: splitList(envOr("ALLOWED_ORIGINS", "*")),
		OAuth: OAuth{
			DiscordKey:         os.Getenv("DISCORD_KEY"),
			DiscordSecret:      os.Getenv("DISCORD_SECRET"),
			DiscordCallbackURL: os.Getenv("DISCORD_CALLBACK_URL"),
			GoogleKey:          os.Getenv("GOOGLE_KEY"),
			GoogleSecret:       os.Getenv("GOOGLE_SECRET"),
			GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		},
	}

	port, err := strconv.Atoi(envOr("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	cfg.Port = port

	rate, err := strconv.ParseFloat(envOr("ACTION_RATE", "5"), 64)
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("invalid ACTION_RATE %q", os.Getenv("ACTION_RATE"))
	}
	cfg.ActionRate = rate

	if err := cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg.Defaults = DefaultTournamentDefaults()
	if path := os.Getenv("TOURNAMENT_DEFAULTS"); path != "" {
		defaults, err := LoadDefaults(path)
		if err != nil {
			return nil, err
		}
		cfg.Defaults = defaults
	}

	return cfg, nil
}

// LoadDefaults reads tournament defaults from a YAML file. Fields left out keep the built-in values.
func LoadDefaults(path string) (TournamentDefaults, error) {
	defaults := DefaultTournamentDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("reading tournament defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return defaults, fmt.Errorf("parsing tournament defaults %s: %w", path, err)
	}

	switch defaults.Format.Kind {
	case bracket.SingleElimination, bracket.DoubleElimination, bracket.RoundRobin:
	default:
		return defaults, errors.New("tournament defaults: unknown format kind " + strconv.Quote(string(defaults.Format.Kind)))
	}
	defaults.MapPool = veto.PoolOrDefault(defaults.MapPool)
	return defaults, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
