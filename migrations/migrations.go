// Package migrations embeds the SQL schema for the storefront's own tables.
// The bookstore backend owns its schema; only the audit trail lives here.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
