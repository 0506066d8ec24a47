package database

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jmylchreest/showbook/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func memoryConfig(level string) config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver:          "sqlite",
		DSN:             ":memory:",
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		LogLevel:        level,
	}
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(memoryConfig("silent"), nil)
	require.NoError(t, err)
	return db
}

func TestNew_SQLite(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	assert.NoError(t, db.Ping(context.Background()))
	assert.Equal(t, "sqlite", db.Driver())

	// In-memory databases are pinned to one connection.
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestNew_InvalidDriver(t *testing.T) {
	db, err := New(config.DatabaseConfig{Driver: "invalid", DSN: ":memory:"}, nil)
	assert.Nil(t, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNew_LogsPoolConfiguration(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	db, err := New(memoryConfig("silent"), log)
	require.NoError(t, err)
	defer db.Close()

	assert.Contains(t, buf.String(), "database connection pool configured")
}

func TestDB_Close(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		dsn    string
		prefix string
	}{
		{"showbook.db", "showbook.db?_pragma=busy_timeout(10000)&"},
		{"file:showbook.db?cache=shared", "file:showbook.db?cache=shared&_pragma=busy_timeout(10000)&"},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			got := sqliteDSN(tt.dsn)
			assert.Contains(t, got, tt.prefix)
			assert.Contains(t, got, "_pragma=foreign_keys(ON)")
		})
	}
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Error, gormLogLevel("error"))
	assert.Equal(t, logger.Warn, gormLogLevel("warn"))
	assert.Equal(t, logger.Info, gormLogLevel("info"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}

func TestSlogGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT * FROM shows", 3 }
	begin := time.Now()

	tests := []struct {
		name    string
		level   logger.LogLevel
		slow    bool
		err     error
		want    string
		wantLog bool
	}{
		{"error logged", logger.Error, false, assert.AnError, "database error", true},
		{"not found skipped", logger.Error, false, gorm.ErrRecordNotFound, "", false},
		{"slow logged at warn", logger.Warn, true, nil, "slow query", true},
		{"fast skipped at warn", logger.Warn, false, nil, "", false},
		{"info logs queries", logger.Info, false, nil, "database query", true},
		{"silent", logger.Silent, false, assert.AnError, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			l := newGormLogger("warn", log).LogMode(tt.level)

			start := begin
			if tt.slow {
				start = begin.Add(-2 * slowQueryThreshold)
			}
			l.Trace(context.Background(), start, sql, tt.err)

			if !tt.wantLog {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "SELECT * FROM shows")
		})
	}
}

func TestTruncateSQL(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, truncateSQL(short))

	long := string(bytes.Repeat([]byte("x"), maxSQLLogLength+10))
	got := truncateSQL(long)
	assert.Len(t, got, maxSQLLogLength+len("... (truncated)"))
}
