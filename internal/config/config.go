package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/tierlist"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port         string
	DBPath       string
	TierListPath string
	LogLevel     log.Level
	AdminToken   string       // Bearer token for settings changes, empty leaves them open
	Seed         uint64       // 0 seeds from the clock
	LowestTier   *roster.Tier // nil leaves the restriction off
}

// Load reads configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DBPath:       getEnv("DATABASE_PATH", "./data/roulette.db"),
		TierListPath: getEnv("TIERLIST_PATH", "./tierlist.ini"),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),
	}

	level, err := log.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if raw := getEnv("RANDOM_SEED", ""); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("RANDOM_SEED %q is not an unsigned integer", raw)
		}
		cfg.Seed = seed
	}

	if raw := getEnv("LOWEST_TIER", ""); raw != "" {
		t, err := ParseTier(raw)
		if err != nil {
			return nil, fmt.Errorf("LOWEST_TIER: %w", err)
		}
		cfg.LowestTier = &t
	}

	fields := log.Fields{
		"port":      cfg.Port,
		"db_path":   cfg.DBPath,
		"tier_list": cfg.TierListPath,
		"log_level": cfg.LogLevel.String(),
		"admin":     cfg.AdminToken != "",
	}
	if cfg.LowestTier != nil {
		fields["lowest_tier"] = cfg.LowestTier.String()
	}
	log.WithFields(fields).Info("configuration loaded")

	return cfg, nil
}

// ParseTier accepts a sub-tier index ("9") or its tier-list key ("upper_b").
func ParseTier(s string) (roster.Tier, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		t := roster.Tier(n)
		return t, roster.CheckTier(t)
	}
	for t := roster.Tier(0); t < roster.NumTiers; t++ {
		if strings.EqualFold(tierlist.TierKey(t), s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", roster.ErrTierOutOfRange, s)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
