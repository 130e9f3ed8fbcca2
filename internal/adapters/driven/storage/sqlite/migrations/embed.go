// Package migrations holds the history database schema.
//
// Files are named NNN_description.up.sql and applied in NNN order. The
// matching .down.sql files are kept for manual rollback only.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
