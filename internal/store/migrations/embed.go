// Package migrations embeds the SQL migrations applied to the history
// database by goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
