// Package migrations embeds the SQL migration files that create and seed the
// preset catalog tables. They are applied with the goose programmatic API at
// server start-up and in integration tests.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
