package migrations

import "embed"

// FS contains embedded SQLite migrations for the match snapshot store.
//
//go:embed *.sql
var FS embed.FS
