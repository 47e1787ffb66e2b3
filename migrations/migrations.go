// Package migrations embeds the SQL schema applied by cmd/seed.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
