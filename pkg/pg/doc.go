// Package pg provides PostgreSQL connection and migration plumbing: a
// retrying pgx pool constructor, goose-backed schema migrations, and
// helpers for classifying common query errors.
package pg
