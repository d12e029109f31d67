package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

const subscriptionColumns = `id, api, plan, application, environment_id, client_id, status, request, reason, metadata,
	subscribed_by, processed_by, gc_accepted, gc_page_id, gc_revision,
	created_at, updated_at, processed_at, starting_at, ending_at, paused_at, closed_at`

// Subscriptions is the subscription repository.
type Subscriptions struct {
	q Querier
}

func (r *Subscriptions) FindByID(ctx context.Context, id string) (domain.Subscription, error) {
	row := r.q.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	sub, err := scanSubscription(row)
	if err != nil {
		return domain.Subscription{}, notFound(err)
	}
	return sub, nil
}

func (r *Subscriptions) FindByIDs(ctx context.Context, ids []string) ([]domain.Subscription, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ANY($1) ORDER BY array_position($1, id)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	return collectSubscriptions(rows)
}

// Search returns the page of subscriptions matching q, newest first.
func (r *Subscriptions) Search(ctx context.Context, q domain.SubscriptionQuery, p domain.Pageable) (domain.Page[domain.Subscription], error) {
	f := subscriptionFilter(q)

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM subscriptions`+f.where(), f.args...).Scan(&total); err != nil {
		return domain.Page[domain.Subscription]{}, fmt.Errorf("count subscriptions: %w", err)
	}

	sql := `SELECT ` + subscriptionColumns + ` FROM subscriptions` + f.where() + ` ORDER BY created_at DESC, id`
	args := f.args
	if p.IsPaged() {
		sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, p.Size, p.Offset())
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return domain.Page[domain.Subscription]{}, fmt.Errorf("search subscriptions: %w", err)
	}
	subs, err := collectSubscriptions(rows)
	if err != nil {
		return domain.Page[domain.Subscription]{}, err
	}

	page := domain.Page[domain.Subscription]{Content: subs, PageNumber: max(p.Page, 1), PageElements: len(subs), TotalElements: total}
	return page, nil
}

func (r *Subscriptions) Create(ctx context.Context, s domain.Subscription) (domain.Subscription, error) {
	_, err := r.q.Exec(ctx, `INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		subscriptionArgs(s)...)
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("insert subscription: %w", err)
	}
	return s, nil
}

func (r *Subscriptions) Update(ctx context.Context, s domain.Subscription) (domain.Subscription, error) {
	err := affected(r.q.Exec(ctx, `UPDATE subscriptions SET
		api = $2, plan = $3, application = $4, environment_id = $5, client_id = $6, status = $7, request = $8,
		reason = $9, metadata = $10, subscribed_by = $11, processed_by = $12, gc_accepted = $13, gc_page_id = $14,
		gc_revision = $15, created_at = $16, updated_at = $17, processed_at = $18, starting_at = $19,
		ending_at = $20, paused_at = $21, closed_at = $22
		WHERE id = $1`, subscriptionArgs(s)...))
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("update subscription: %w", err)
	}
	return s, nil
}

func (r *Subscriptions) Delete(ctx context.Context, id string) error {
	if err := affected(r.q.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func subscriptionArgs(s domain.Subscription) []any {
	metadata := s.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return []any{
		s.ID, s.API, s.Plan, s.Application, s.EnvironmentID, s.ClientID, string(s.Status), s.Request, s.Reason, metadata,
		s.SubscribedBy, s.ProcessedBy, s.GeneralConditionsAccepted, s.GeneralConditionsContentPageID, s.GeneralConditionsContentRevision,
		s.CreatedAt, s.UpdatedAt, s.ProcessedAt, s.StartingAt, s.EndingAt, s.PausedAt, s.ClosedAt,
	}
}

func scanSubscription(row pgx.Row) (domain.Subscription, error) {
	var (
		s      domain.Subscription
		status string
	)
	err := row.Scan(
		&s.ID, &s.API, &s.Plan, &s.Application, &s.EnvironmentID, &s.ClientID, &status, &s.Request, &s.Reason, &s.Metadata,
		&s.SubscribedBy, &s.ProcessedBy, &s.GeneralConditionsAccepted, &s.GeneralConditionsContentPageID, &s.GeneralConditionsContentRevision,
		&s.CreatedAt, &s.UpdatedAt, &s.ProcessedAt, &s.StartingAt, &s.EndingAt, &s.PausedAt, &s.ClosedAt,
	)
	s.Status = domain.SubscriptionStatus(status)
	return s, err
}

func collectSubscriptions(rows pgx.Rows) ([]domain.Subscription, error) {
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Subscription, error) {
		return scanSubscription(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan subscriptions: %w", err)
	}
	return subs, nil
}
