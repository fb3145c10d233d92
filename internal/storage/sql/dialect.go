package sql

import (
	"fmt"
	"io/fs"

	"github.com/mcoot/agame/internal/storage/sql/migrations"
)

// Dialect selects driver, migrations and statement text for an engine
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// queries holds the statements the store issues. Table and column names
// are identical across engines; only placeholders and RETURNING differ.
type queries struct {
	insertUser    string
	insertAccount string
	selectProfile string
	addPoints     string
	selectPoints  string // empty when addPoints already returns the total
	deleteAccount string
	deleteUser    string
}

var mysqlQueries = queries{
	insertUser:    `INSERT INTO user_login (user_id, name) VALUES (?, ?)`,
	insertAccount: `INSERT INTO players (user_id, points) VALUES (?, 0)`,
	selectProfile: `SELECT ul.user_id, ul.name, ul.created_at, p.points FROM user_login ul JOIN players p ON ul.user_id = p.user_id WHERE ul.user_id = ?`,
	addPoints:     `UPDATE players SET points = points + ?, updated_at = CURRENT_TIMESTAMP(6) WHERE user_id = ?`,
	selectPoints:  `SELECT points FROM players WHERE user_id = ?`,
	deleteAccount: `DELETE FROM players WHERE user_id = ?`,
	deleteUser:    `DELETE FROM user_login WHERE user_id = ?`,
}

var postgresQueries = queries{
	insertUser:    `INSERT INTO user_login (user_id, name) VALUES ($1, $2)`,
	insertAccount: `INSERT INTO players (user_id, points) VALUES ($1, 0)`,
	selectProfile: `SELECT ul.user_id, ul.name, ul.created_at, p.points FROM user_login ul JOIN players p ON ul.user_id = p.user_id WHERE ul.user_id = $1`,
	addPoints:     `UPDATE players SET points = points + $1, updated_at = now() WHERE user_id = $2 RETURNING points`,
	deleteAccount: `DELETE FROM players WHERE user_id = $1`,
	deleteUser:    `DELETE FROM user_login WHERE user_id = $1`,
}

func (d Dialect) queries() (queries, error) {
	switch d {
	case DialectMySQL:
		return mysqlQueries, nil
	case DialectPostgres:
		return postgresQueries, nil
	default:
		return queries{}, fmt.Errorf("unsupported dialect %q", d)
	}
}

// driverName is the database/sql driver registered for the dialect
func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "mysql"
}

// gooseDialect is the dialect name understood by goose
func (d Dialect) gooseDialect() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "mysql"
}

// migrations returns the embedded migration FS and its root directory
func (d Dialect) migrations() (fs.FS, string) {
	if d == DialectPostgres {
		return migrations.Postgres, "postgres"
	}
	return migrations.MySQL, "mysql"
}
