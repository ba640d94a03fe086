// Package migrations embebe los archivos SQL de migración del esquema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
