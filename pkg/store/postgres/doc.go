// Package postgres implements the repositories on PostgreSQL through pgx.
//
// Migrations embeds the schema; apply it with pg.Migrate before serving.
// Key subscriptions are stored as a text[] column and subscription
// metadata as jsonb.
package postgres
