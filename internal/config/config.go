package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string
	DBPath          string
	StockfishPath   string
	StockfishDepth  int
	EnginePoolSize  int
	LogLevel        string
	BookHorizon     int
	BuildWorkers    int
	BuildQueueSize  int
	LegendsFile     string
	SnapshotDir     string
	DefaultBotLevel int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:            envOr("ADDR", ":8080"),
		DBPath:          envOr("DB_PATH", "file:chesslegends.db"),
		StockfishPath:   envOr("STOCKFISH_PATH", "stockfish"),
		StockfishDepth:  envIntOr("STOCKFISH_DEPTH", 14),
		EnginePoolSize:  envIntOr("ENGINE_POOL_SIZE", 2),
		LogLevel:        envOr("LOG_LEVEL", "INFO"),
		BookHorizon:     envIntOr("BOOK_HORIZON", 18),
		BuildWorkers:    envIntOr("BUILD_WORKERS", 4),
		BuildQueueSize:  envIntOr("BUILD_QUEUE_SIZE", 16),
		LegendsFile:     envOr("LEGENDS_FILE", ""),
		SnapshotDir:     envOr("SNAPSHOT_DIR", ""),
		DefaultBotLevel: envIntOr("DEFAULT_BOT_LEVEL", 10),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if c.StockfishPath != "" {
		if _, err := exec.LookPath(c.StockfishPath); err != nil {
			errs = append(errs, fmt.Errorf("STOCKFISH_PATH %q not found: %w", c.StockfishPath, err))
		}
	}
	if c.StockfishDepth < 1 || c.StockfishDepth > 30 {
		errs = append(errs, fmt.Errorf("STOCKFISH_DEPTH must be between 1 and 30, got %d", c.StockfishDepth))
	}
	if c.EnginePoolSize < 1 {
		errs = append(errs, fmt.Errorf("ENGINE_POOL_SIZE must be positive, got %d", c.EnginePoolSize))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	if c.BookHorizon < 1 || c.BookHorizon > 60 {
		errs = append(errs, fmt.Errorf("BOOK_HORIZON must be between 1 and 60, got %d", c.BookHorizon))
	}
	if c.BuildWorkers < 1 {
		errs = append(errs, fmt.Errorf("BUILD_WORKERS must be positive, got %d", c.BuildWorkers))
	}
	if c.BuildQueueSize < 1 {
		errs = append(errs, fmt.Errorf("BUILD_QUEUE_SIZE must be positive, got %d", c.BuildQueueSize))
	}
	if c.LegendsFile != "" {
		if _, err := os.Stat(c.LegendsFile); err != nil {
			errs = append(errs, fmt.Errorf("LEGENDS_FILE %q: %w", c.LegendsFile, err))
		}
	}
	if c.SnapshotDir != "" {
		if fi, err := os.Stat(c.SnapshotDir); err != nil {
			errs = append(errs, fmt.Errorf("SNAPSHOT_DIR %q: %w", c.SnapshotDir, err))
		} else if !fi.IsDir() {
			errs = append(errs, fmt.Errorf("SNAPSHOT_DIR %q is not a directory", c.SnapshotDir))
		}
	}
	if c.DefaultBotLevel < 0 || c.DefaultBotLevel > 20 {
		errs = append(errs, fmt.Errorf("DEFAULT_BOT_LEVEL must be between 0 and 20, got %d", c.DefaultBotLevel))
	}

	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
