package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

// Connect opens the database behind the configured driver and verifies it
// answers. For sqlite the parent directory is created on first run; the
// DSN may carry pragma query parameters after the file path.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	if driver == "sqlite" {
		path, _, _ := strings.Cut(dsn, "?")
		err := os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	// sqlx.Connect pings before returning.
	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)

	slog.Info("database connected", "driver", driver)
	return conn, nil
}
