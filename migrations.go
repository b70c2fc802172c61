// Package propertydata embeds the SQL migrations for the Postgres page cache.
package propertydata

import "embed"

// Migrations holds the goose migration files under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS
