package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestOptionsForProfiles(t *testing.T) {
	if got := OptionsFor(ProfileMigrate).MaxOpenConns; got != 1 {
		t.Fatalf("migrate pool = %d", got)
	}
	if got := OptionsFor(ProfileCrawler).MaxOpenConns; got != 4 {
		t.Fatalf("crawler pool = %d", got)
	}
	if got := OptionsFor("unknown"); got != OptionsFor(ProfileAPI) {
		t.Fatalf("unknown profile should fall back to api, got %+v", got)
	}
}

func TestOverrideAppliesValidValuesOnly(t *testing.T) {
	opts := OptionsFor(ProfileAPI).Override(env(map[string]string{
		"DB_MAX_OPEN_CONNS":     "7",
		"DB_MAX_IDLE_CONNS":     "30",
		"DB_CONN_MAX_LIFETIME":  "20m",
		"DB_CONN_MAX_IDLE_TIME": "soon",
		"DB_PING_TIMEOUT":       "-1s",
	}))

	if opts.MaxOpenConns != 7 {
		t.Fatalf("MaxOpenConns = %d", opts.MaxOpenConns)
	}
	if opts.MaxIdleConns != 7 {
		t.Fatalf("idle conns should be capped at open conns, got %d", opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime != 20*time.Minute {
		t.Fatalf("ConnMaxLifetime = %s", opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime != 2*time.Minute || opts.PingTimeout != 5*time.Second {
		t.Fatalf("invalid values should keep defaults, got %+v", opts)
	}
}

func TestConnectAppliesPoolSettings(t *testing.T) {
	_, _, err := sqlmock.NewWithDSN("connect-pool")
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	prev := openDB
	openDB = func(_, dsn string) (*sql.DB, error) { return sql.Open("sqlmock", dsn) }
	defer func() { openDB = prev }()

	sqlDB, err := Connect(context.Background(), "connect-pool", Options{MaxOpenConns: 3, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 3 {
		t.Fatalf("MaxOpenConnections = %d", got)
	}
	_ = sqlDB.Close()
}

func TestConnectSurfacesOpenFailure(t *testing.T) {
	prev := openDB
	openDB = func(string, string) (*sql.DB, error) { return nil, driver.ErrBadConn }
	defer func() { openDB = prev }()

	if _, err := Connect(context.Background(), "postgres://x", OptionsFor(ProfileCrawler)); !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected wrapped ErrBadConn, got %v", err)
	}
	if _, err := Connect(context.Background(), "  ", OptionsFor(ProfileCrawler)); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE crawler_tasks").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	err = WithTx(context.Background(), sqlDB, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE crawler_tasks SET status = 'paused'")
		return err
	})
	if err != nil {
		t.Fatalf("commit path: %v", err)
	}

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()
	if err := WithTx(context.Background(), sqlDB, func(*sql.Tx) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
