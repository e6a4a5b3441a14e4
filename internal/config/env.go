package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables read by Load.
const (
	EnvCatalog        = "CIT_CATALOG"
	EnvOutputDir      = "CIT_OUTPUT_DIR"
	EnvOutputFile     = "CIT_OUTPUT_FILE"
	EnvConcurrency    = "CIT_CONCURRENCY"
	EnvTimeout        = "CIT_TIMEOUT"
	EnvSeed           = "CIT_SEED"
	EnvDatabasePrefix = "DB_DATABASE_PREFIX"
)

func envString(key string, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", key, err)
		}
		return i, nil
	}
	return def, nil
}

func envUint64(key string, def uint64) (uint64, error) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", key, err)
		}
		return u, nil
	}
	return def, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", key, err)
		}
		return d, nil
	}
	return def, nil
}
