package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

const keyColumns = `id, key, application, subscriptions, environment_id, revoked, revoked_at, paused, expire_at, created_at, updated_at`

// APIKeys is the API key repository.
type APIKeys struct {
	q Querier
}

func (r *APIKeys) FindByID(ctx context.Context, id string) (domain.APIKey, error) {
	key, err := scanKey(r.q.QueryRow(ctx, `SELECT `+keyColumns+` FROM api_keys WHERE id = $1`, id))
	if err != nil {
		return domain.APIKey{}, notFound(err)
	}
	return key, nil
}

func (r *APIKeys) FindByKey(ctx context.Context, key string) ([]domain.APIKey, error) {
	return r.list(ctx, `WHERE key = $1`, key)
}

// FindByKeyAndAPI returns the newest key with value key bound to a
// subscription of apiID.
func (r *APIKeys) FindByKeyAndAPI(ctx context.Context, key, apiID string) (domain.APIKey, error) {
	row := r.q.QueryRow(ctx, `SELECT `+prefixed("k.", keyColumns)+` FROM api_keys k
		WHERE k.key = $1 AND EXISTS (
			SELECT 1 FROM subscriptions s WHERE s.id = ANY(k.subscriptions) AND s.api = $2
		)
		ORDER BY k.created_at DESC LIMIT 1`, key, apiID)
	found, err := scanKey(row)
	if err != nil {
		return domain.APIKey{}, notFound(err)
	}
	return found, nil
}

func (r *APIKeys) FindBySubscription(ctx context.Context, subscriptionID string) ([]domain.APIKey, error) {
	return r.list(ctx, `WHERE $1 = ANY(subscriptions)`, subscriptionID)
}

func (r *APIKeys) FindByApplication(ctx context.Context, applicationID string) ([]domain.APIKey, error) {
	return r.list(ctx, `WHERE application = $1`, applicationID)
}

func (r *APIKeys) FindByCriteria(ctx context.Context, q domain.APIKeyQuery) ([]domain.APIKey, error) {
	f := keyFilter(q)
	return r.list(ctx, f.where(), f.args...)
}

func (r *APIKeys) Create(ctx context.Context, k domain.APIKey) (domain.APIKey, error) {
	_, err := r.q.Exec(ctx, `INSERT INTO api_keys (`+keyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, keyArgs(k)...)
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("insert api key: %w", err)
	}
	return k, nil
}

func (r *APIKeys) Update(ctx context.Context, k domain.APIKey) (domain.APIKey, error) {
	err := affected(r.q.Exec(ctx, `UPDATE api_keys SET
		key = $2, application = $3, subscriptions = $4, environment_id = $5, revoked = $6, revoked_at = $7,
		paused = $8, expire_at = $9, created_at = $10, updated_at = $11
		WHERE id = $1`, keyArgs(k)...))
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("update api key: %w", err)
	}
	return k, nil
}

func (r *APIKeys) Delete(ctx context.Context, id string) error {
	if err := affected(r.q.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)); err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	return nil
}

// list runs a filtered select, newest first.
func (r *APIKeys) list(ctx context.Context, where string, args ...any) ([]domain.APIKey, error) {
	rows, err := r.q.Query(ctx, `SELECT `+keyColumns+` FROM api_keys `+where+` ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query api keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.APIKey, error) {
		return scanKey(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan api keys: %w", err)
	}
	return keys, nil
}

func keyArgs(k domain.APIKey) []any {
	subs := k.Subscriptions
	if subs == nil {
		subs = []string{}
	}
	return []any{k.ID, k.Key, k.Application, subs, k.EnvironmentID, k.Revoked, k.RevokedAt, k.Paused, k.ExpireAt, k.CreatedAt, k.UpdatedAt}
}

func scanKey(row pgx.Row) (domain.APIKey, error) {
	var k domain.APIKey
	err := row.Scan(&k.ID, &k.Key, &k.Application, &k.Subscriptions, &k.EnvironmentID, &k.Revoked, &k.RevokedAt, &k.Paused, &k.ExpireAt, &k.CreatedAt, &k.UpdatedAt)
	return k, err
}
