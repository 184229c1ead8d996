package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"resume-studio/internal/shared/telemetry"
)

// Profile names the kind of process that owns a pool.
type Profile string

const (
	ProfileAPI     Profile = "api"
	ProfileCrawler Profile = "crawler"
	ProfileMigrate Profile = "migrate"
)

// Options controls pool sizing and the connect-time ping.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var openDB = sql.Open

// OptionsFor returns pool defaults for a process profile.
// The crawler only touches postings and tasks; migrations run on a single connection.
func OptionsFor(p Profile) Options {
	switch p {
	case ProfileCrawler:
		return Options{MaxOpenConns: 4, MaxIdleConns: 2, ConnMaxLifetime: 30 * time.Minute, ConnMaxIdleTime: time.Minute, PingTimeout: 5 * time.Second}
	case ProfileMigrate:
		return Options{MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: time.Hour, PingTimeout: 10 * time.Second}
	default:
		return Options{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour, ConnMaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second}
	}
}

// Override applies DB_* settings found through lookup (normally os.Getenv). Invalid values are logged and skipped.
func (o Options) Override(lookup func(string) string) Options {
	intVar := func(key string, dst *int) {
		raw := strings.TrimSpace(lookup(key))
		if raw == "" {
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			telemetry.Warn("db.env_invalid", map[string]any{"key": key, "value": raw})
			return
		}
		*dst = v
	}
	durVar := func(key string, dst *time.Duration) {
		raw := strings.TrimSpace(lookup(key))
		if raw == "" {
			return
		}
		v, err := time.ParseDuration(raw)
		if err != nil || v <= 0 {
			telemetry.Warn("db.env_invalid", map[string]any{"key": key, "value": raw})
			return
		}
		*dst = v
	}
	intVar("DB_MAX_OPEN_CONNS", &o.MaxOpenConns)
	intVar("DB_MAX_IDLE_CONNS", &o.MaxIdleConns)
	durVar("DB_CONN_MAX_LIFETIME", &o.ConnMaxLifetime)
	durVar("DB_CONN_MAX_IDLE_TIME", &o.ConnMaxIdleTime)
	durVar("DB_PING_TIMEOUT", &o.PingTimeout)
	if o.MaxIdleConns > o.MaxOpenConns {
		o.MaxIdleConns = o.MaxOpenConns
	}
	return o
}

// Connect opens a pgx-backed pool and pings it. Callers share the returned handle.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	sqlDB, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.connected", map[string]any{
		"max_open": opts.MaxOpenConns,
		"max_idle": opts.MaxIdleConns,
	})
	return sqlDB, nil
}

// WithTx runs fn in a transaction, committing when fn returns nil and rolling back otherwise.
func WithTx(ctx context.Context, sqlDB *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
