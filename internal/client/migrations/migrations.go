// Package migrations embeds the goose migrations of the bmctl session store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
