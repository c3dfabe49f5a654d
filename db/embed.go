// Package db embeds the database schema applied on startup.
package db

import _ "embed"

// Schema holds the DDL for every marketplace table. It is idempotent and is
// executed as a single statement batch by repository.RunMigrations.
//
//go:embed migrations/001_schema.sql
var Schema string
