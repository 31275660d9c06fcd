package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/logging"
)

// InitPostgres connects with retries; the database may still be starting.
func InitPostgres(dsn string) (*sqlx.DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)
	for i := 0; i < 10; i++ {
		conn, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			conn.SetMaxOpenConns(20)
			conn.SetMaxIdleConns(5)
			conn.SetConnMaxLifetime(30 * time.Minute)
			logging.Info("Connected to Postgres", "attempt", i+1)
			return conn, nil
		}
		logging.Warn("Postgres not ready, retrying", "attempt", i+1, "error", err)
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to postgres: %w", err)
}

// Ping runs a trivial query; used by the health check.
func Ping(ctx context.Context, conn *sqlx.DB) error {
	var one int
	return conn.GetContext(ctx, &one, constants.PingQuery)
}
