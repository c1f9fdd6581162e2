// README: Embedded goose migrations for the catalog schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
