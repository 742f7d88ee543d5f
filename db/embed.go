// Package db provides the embedded receipt journal schema.
package db

import _ "embed"

// Schema contains the DDL statements for the journal tables.
//
//go:embed migrations/001_schema.sql
var Schema string
