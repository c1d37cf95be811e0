package sql

import "embed"

// SchemaFS holds the DB migration files
//
//go:embed schema
var SchemaFS embed.FS
