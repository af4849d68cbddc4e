// Package migrations embeds the goose SQL migrations for both supported
// database drivers. Each driver has its own directory because the dialects
// differ in type names and placeholder syntax.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
