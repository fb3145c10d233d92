// Package sql is a relational implementation of the storage interface.
// It speaks MySQL (go-sql-driver/mysql) or PostgreSQL (pgx stdlib) through
// database/sql and applies its schema with embedded goose migrations.
package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mcoot/agame/internal/model"
	"github.com/mcoot/agame/internal/storage"
)

// Config holds SQL connection settings
type Config struct {
	Dialect Dialect
	DSN     string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Migrate applies pending schema migrations on startup
	Migrate bool
}

// DefaultConfig returns sensible defaults for SQL configuration
func DefaultConfig() Config {
	return Config{
		Dialect:         DialectMySQL,
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 30 * time.Minute,
		Migrate:         true,
	}
}

// Storage is a SQL-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
	q  queries
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open connects to the database, verifies the connection and optionally migrates
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	dsn, err := normalizeDSN(cfg.Dialect, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if cfg.Migrate {
		if err := RunMigrations(ctx, db, cfg.Dialect); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
	}

	return NewWithDB(db, cfg.Dialect)
}

// NewWithDB creates a SQL storage over an existing connection pool
func NewWithDB(db *sql.DB, dialect Dialect) (*Storage, error) {
	q, err := dialect.queries()
	if err != nil {
		return nil, err
	}
	return &Storage{db: db, q: q}, nil
}

// RunMigrations applies the embedded migrations for the dialect
func RunMigrations(ctx context.Context, db *sql.DB, dialect Dialect) error {
	fsys, dir := dialect.migrations()
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect.gooseDialect()); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, dir)
}

// normalizeDSN forces the MySQL driver to return UTC time.Time values
func normalizeDSN(dialect Dialect, dsn string) (string, error) {
	if dialect != DialectMySQL {
		return dsn, nil
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	err := WithTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, s.q.insertUser, string(user.ID), user.Name); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, s.q.insertAccount, string(user.ID))
		return err
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id model.UserID) (*model.Profile, error) {
	var (
		userID    string
		name      sql.NullString
		createdAt time.Time
		points    int64
	)
	err := s.db.QueryRowContext(ctx, s.q.selectProfile, string(id)).Scan(&userID, &name, &createdAt, &points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	profile := &model.Profile{
		UserID:    model.UserID(userID),
		Points:    points,
		CreatedAt: createdAt.UTC(),
	}
	if name.Valid {
		profile.Name = &name.String
	}
	return profile, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	err := WithTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, s.q.deleteAccount, string(id)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, s.q.deleteUser, string(id))
		return err
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Points operations

func (s *Storage) AddPoints(ctx context.Context, id model.UserID, amount int64) (int64, error) {
	if s.q.selectPoints == "" {
		// UPDATE ... RETURNING: increment and read in one statement
		var total int64
		err := s.db.QueryRowContext(ctx, s.q.addPoints, amount, string(id)).Scan(&total)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, model.ErrUserNotFound
			}
			if isOutOfRange(err) {
				return 0, model.ErrPointsOverflow
			}
			return 0, fmt.Errorf("db error: %w", err)
		}
		return total, nil
	}

	res, err := s.db.ExecContext(ctx, s.q.addPoints, amount, string(id))
	if err != nil {
		if isOutOfRange(err) {
			return 0, model.ErrPointsOverflow
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return 0, model.ErrUserNotFound
	}

	// The increment itself is atomic; this read may already include later
	// concurrent increments, which is fine for reporting.
	var total int64
	err = s.db.QueryRowContext(ctx, s.q.selectPoints, string(id)).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrUserNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

// MySQL ER_DATA_OUT_OF_RANGE and PostgreSQL numeric_value_out_of_range
const (
	mysqlOutOfRange    = 1690
	postgresOutOfRange = "22003"
)

// isOutOfRange reports whether err is the engine rejecting a BIGINT overflow
func isOutOfRange(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlOutOfRange
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresOutOfRange
	}
	return false
}
