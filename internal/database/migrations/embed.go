// Package migrations embeds the goose SQL migrations shared by sqlite and
// postgres.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
