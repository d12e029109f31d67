package postgres

import (
	"context"
	"embed"
	"errors"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations is the schema of every repository in this package.
var Migrations fs.FS = mustSub(migrations, "migrations")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Querier is the subset of *pgxpool.Pool the repositories use.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB groups the repositories over one pool.
type DB struct {
	q Querier
}

func New(q Querier) *DB {
	if q == nil {
		panic("postgres: Querier is required")
	}
	return &DB{q: q}
}

func (db *DB) Subscriptions() *Subscriptions { return &Subscriptions{q: db.q} }
func (db *DB) APIKeys() *APIKeys { return &APIKeys{q: db.q} }
func (db *DB) Plans() *Plans { return &Plans{q: db.q} }
func (db *DB) Applications() *Applications { return &Applications{q: db.q} }
func (db *DB) ContentPages() *ContentPages { return &ContentPages{q: db.q} }

// notFound maps an empty result to domain.ErrNotFound.
func notFound(err error) error {
	if pg.IsNotFoundError(err) {
		return domain.ErrNotFound
	}
	return err
}

var errNoRowsAffected = errors.New("no rows affected")

func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.Join(domain.ErrNotFound, errNoRowsAffected)
	}
	return nil
}
