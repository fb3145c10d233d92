// Package migrations embeds the goose schema migrations for each SQL dialect.
package migrations

import "embed"

// MySQL holds the MySQL migrations under the "mysql" directory
//
//go:embed mysql/*.sql
var MySQL embed.FS

// Postgres holds the PostgreSQL migrations under the "postgres" directory
//
//go:embed postgres/*.sql
var Postgres embed.FS
