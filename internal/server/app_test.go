package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

func stubOpenDB(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := openDB
	openDB = func(string) (*sql.DB, error) { return db, err }
	t.Cleanup(func() { openDB = orig })
}

func newPingDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	return db, mock
}

func TestNewApp_OpenError(t *testing.T) {
	stubOpenDB(t, nil, errors.New("bad dsn"))

	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestNewApp_PingError(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()
	stubOpenDB(t, db, nil)

	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_RedisUnavailable(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing()
	mock.ExpectClose()
	stubOpenDB(t, db, nil)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.OTPBackend = config.OTPBackendRedis
	cfg.RedisAddr = addr

	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_MigrationError(t *testing.T) {
	db, mock := newPingDB(t)
	mock.ExpectPing()
	stubOpenDB(t, db, nil)
	t.Cleanup(func() { db.Close() })

	// goose's first query is not expected by the mock and fails
	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations error")
}
