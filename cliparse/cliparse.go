package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	ClientURL    string
	IPHashSalt   string
	ResetDelay   time.Duration
	CheckDelay   time.Duration
}

const (
	defaultPort       = 3001
	defaultResetDelay = 3 * time.Second
	defaultCheckDelay = 1 * time.Second
)

// ParseFlags validates flags and fills in environment fallbacks.
// A .env file in the working directory is loaded first if present.
func ParseFlags(args []string) (Config, error) {
	// Missing .env is fine; explicit env vars and flags still apply.
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("knockout", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or file path")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.ClientURL, "client-url", "", "Base URL voters open in their browser")
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "Salt for vote origin hashing (prefer env)")

	// Timing knobs for the elimination engine
	fs.DurationVar(&cfg.ResetDelay, "reset-delay", 0, "Delay between elimination and round reset")
	fs.DurationVar(&cfg.CheckDelay, "check-delay", 0, "Delay between a vote and the elimination check")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "sqlite" {
			cfg.DatabaseURL = "voting.db"
		} else {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
	}

	if cfg.ClientURL == "" {
		cfg.ClientURL = os.Getenv("CLIENT_URL")
		if cfg.ClientURL == "" {
			cfg.ClientURL = "http://localhost:3000"
		}
	}

	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	if cfg.ResetDelay == 0 {
		d, err := durationEnv("RESET_DELAY", defaultResetDelay)
		if err != nil {
			return Config{}, err
		}
		cfg.ResetDelay = d
	}
	if cfg.CheckDelay == 0 {
		d, err := durationEnv("CHECK_DELAY", defaultCheckDelay)
		if err != nil {
			return Config{}, err
		}
		cfg.CheckDelay = d
	}

	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.New("invalid " + key + " env variable")
	}
	return d, nil
}
