// Package database provides database connection management and migrations
// for showbook. It supports SQLite, PostgreSQL, and MySQL through GORM.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jmylchreest/showbook/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlitePragmas are applied to every pooled SQLite connection via the DSN.
var sqlitePragmas = []string{
	"busy_timeout(10000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
}

// DB wraps a GORM database connection.
type DB struct {
	*gorm.DB
	cfg    config.DatabaseConfig
	logger *slog.Logger
}

// New opens a connection for cfg and configures its pool.
func New(cfg config.DatabaseConfig, log *slog.Logger) (*DB, error) {
	if log == nil {
		log = slog.Default()
	}

	dialector, err := getDialector(cfg)
	if err != nil {
		return nil, fmt.Errorf("getting dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(cfg.LogLevel, log),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == "sqlite" && isMemoryDSN(cfg.DSN) {
		// Every connection to :memory: opens its own empty database.
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	log.Info("database connection pool configured",
		slog.String("driver", cfg.Driver),
		slog.String("dsn", cfg.DSN),
		slog.Int("max_open_conns", maxOpen),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
	)

	return &DB{DB: db, cfg: cfg, logger: log}, nil
}

// getDialector returns the GORM dialector for the configured driver.
func getDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(sqliteDSN(cfg.DSN)), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// sqliteDSN appends the pragma parameters understood by the pure Go driver.
func sqliteDSN(dsn string) string {
	params := make([]string, len(sqlitePragmas))
	for i, p := range sqlitePragmas {
		params[i] = "_pragma=" + p
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func isMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Driver returns the database driver name.
func (db *DB) Driver() string {
	return db.cfg.Driver
}

// gormLogLevel maps configured log levels to GORM logger levels.
func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// slowQueryThreshold is the elapsed time above which a query logs at warn.
const slowQueryThreshold = 500 * time.Millisecond

// maxSQLLogLength limits SQL string length in logs.
const maxSQLLogLength = 300

func newGormLogger(level string, log *slog.Logger) *slogGormLogger {
	return &slogGormLogger{logger: log, level: gormLogLevel(level)}
}

// slogGormLogger implements GORM's logger.Interface using slog.
type slogGormLogger struct {
	logger *slog.Logger
	level  logger.LogLevel
}

func (l *slogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &slogGormLogger{logger: l.logger, level: level}
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Trace logs failed queries at error, slow ones at warn and the rest at
// debug. Not-found lookups are expected by the repositories and are skipped.
func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	isError := err != nil && !errorsIsNotFound(err)
	isSlow := elapsed > slowQueryThreshold

	var level slog.Level
	switch {
	case isError && l.level >= logger.Error:
		level = slog.LevelError
	case isSlow && l.level >= logger.Warn:
		level = slog.LevelWarn
	case l.level >= logger.Info:
		level = slog.LevelDebug
	default:
		return
	}
	// fc renders the SQL with interpolated values; skip it when unused.
	if !l.logger.Enabled(ctx, level) {
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", truncateSQL(sql)),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}

	switch level {
	case slog.LevelError:
		attrs = append(attrs, slog.String("error", err.Error()))
		l.logger.LogAttrs(ctx, level, "database error", attrs...)
	case slog.LevelWarn:
		l.logger.LogAttrs(ctx, level, "slow query", attrs...)
	default:
		l.logger.LogAttrs(ctx, level, "database query", attrs...)
	}
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func truncateSQL(sql string) string {
	if len(sql) <= maxSQLLogLength {
		return sql
	}
	return sql[:maxSQLLogLength] + "... (truncated)"
}
