package db

import "embed"

// MigrationFS carries the schema migrations (users, roles, permissions,
// role_permissions, sessions, audit_logs) compiled into every binary, so
// cmd/migrate and the runner need no files on disk.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
