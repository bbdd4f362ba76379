// Package migrations holds the SQL schema migrations applied at startup.
package migrations

import "embed"

// FS contains every *.sql migration, applied in version order by golang-migrate.
//
//go:embed *.sql
var FS embed.FS
