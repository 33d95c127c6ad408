// Package migrations embeds the per-backend schema migration files.
package migrations

import "embed"

//go:embed sqlite postgres
var FS embed.FS
