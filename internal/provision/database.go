// Package provision prepares one MySQL database per executor worker so that
// command-backed predicates can run in parallel without sharing state.
package provision

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"combitest/internal/config"
)

// ServerConfig locates the MySQL server.
type ServerConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// ServerConfigFromEnv reads DB_HOST, DB_PORT, DB_USERNAME and DB_PASSWORD,
// after loading the project's .env file when present.
func ServerConfigFromEnv(projectPath string) ServerConfig {
	_ = godotenv.Load(filepath.Join(projectPath, config.DefaultEnvFile))

	return ServerConfig{
		Host:     envOr("DB_HOST", "127.0.0.1"),
		Port:     envOr("DB_PORT", "3306"),
		User:     envOr("DB_USERNAME", "root"),
		Password: os.Getenv("DB_PASSWORD"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// DSN connects to the server without selecting a database.
func (s ServerConfig) DSN() string {
	c := mysql.NewConfig()
	c.User = s.User
	c.Passwd = s.Password
	c.Net = "tcp"
	c.Addr = s.Host + ":" + s.Port
	c.Timeout = 5 * time.Second
	return c.FormatDSN()
}

// DatabaseManager manages per-worker test databases
type DatabaseManager struct {
	config *config.Config
	server ServerConfig
}

// NewDatabaseManager creates a new DatabaseManager
func NewDatabaseManager(cfg *config.Config, server ServerConfig) *DatabaseManager {
	return &DatabaseManager{config: cfg, server: server}
}

func (dm *DatabaseManager) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("mysql", dm.server.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}
	return db, nil
}

// EnsureDatabases creates the databases of workers 1..workerCount that do not
// exist yet and returns the worker IDs that have one.
func (dm *DatabaseManager) EnsureDatabases(ctx context.Context, workerCount int) ([]int, error) {
	db, err := dm.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	available := make([]int, 0, workerCount)
	for i := 1; i <= workerCount; i++ {
		name := dm.config.GetDatabaseName(i)
		if !IsValidDatabaseName(name) {
			return nil, fmt.Errorf("invalid database name: %s", name)
		}

		exists, err := databaseExists(ctx, db, name)
		if err != nil {
			return nil, fmt.Errorf("failed to check database %s: %w", name, err)
		}
		if !exists {
			if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
				return nil, fmt.Errorf("failed to create database %s: %w", name, err)
			}
		}
		available = append(available, i)
	}
	return available, nil
}

// DropDatabases removes the databases of workers 1..workerCount.
func (dm *DatabaseManager) DropDatabases(ctx context.Context, workerCount int) error {
	db, err := dm.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	for i := 1; i <= workerCount; i++ {
		name := dm.config.GetDatabaseName(i)
		if !IsValidDatabaseName(name) {
			return fmt.Errorf("invalid database name: %s", name)
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", name)); err != nil {
			return fmt.Errorf("failed to drop database %s: %w", name, err)
		}
	}
	return nil
}

func databaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}

// IsValidDatabaseName accepts names that are safe to interpolate into a
// backquoted identifier.
func IsValidDatabaseName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	upper := strings.ToUpper(name)
	for _, word := range []string{"DROP", "DELETE", "TRUNCATE"} {
		if strings.Contains(upper, word) {
			return false
		}
	}
	return true
}
