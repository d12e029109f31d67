package subscription

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

// csvHeader is the first line of ExportCSV output.
var csvHeader = []string{"Plan", "Application", "Creation date", "Process date", "Start date", "End date", "Status"}

const csvDateLayout = time.RFC3339

// Search returns a page of subscriptions. A query on an API key value is
// resolved through the key manager and always yields a single page.
func (s *service) Search(ctx context.Context, q domain.SubscriptionQuery, p domain.Pageable, opts SearchOptions) (domain.Page[domain.Subscription], error) {
	var (
		page domain.Page[domain.Subscription]
		err  error
	)
	if q.APIKey != "" {
		page, err = s.searchByKey(ctx, q)
	} else {
		page, err = s.subs.Search(ctx, q, p)
		err = domain.Technical("search subscriptions", err)
	}
	if err != nil {
		return domain.Page[domain.Subscription]{}, err
	}

	if opts.Security {
		plans, err := s.plansOf(ctx, page.Content)
		if err != nil {
			return domain.Page[domain.Subscription]{}, err
		}
		for i := range page.Content {
			page.Content[i].Security = plans[page.Content[i].Plan].Security
		}
	}
	if opts.Keys {
		for i := range page.Content {
			keys, err := s.activeKeys(ctx, page.Content[i])
			if err != nil {
				return domain.Page[domain.Subscription]{}, domain.Technical("find api keys of subscription "+page.Content[i].ID, err)
			}
			page.Content[i].Keys = keys
		}
	}
	return page, nil
}

func (s *service) searchByKey(ctx context.Context, q domain.SubscriptionQuery) (domain.Page[domain.Subscription], error) {
	keys, err := s.keys.FindByKey(ctx, q.APIKey)
	if err != nil {
		return domain.Page[domain.Subscription]{}, domain.Technical("find api keys by value", err)
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, k := range keys {
		for _, id := range k.Subscriptions {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	subs, err := s.FindByIDs(ctx, ids)
	if err != nil {
		return domain.Page[domain.Subscription]{}, err
	}
	matched := make([]domain.Subscription, 0, len(subs))
	for _, sub := range subs {
		if q.Matches(sub) {
			matched = append(matched, sub)
		}
	}
	return domain.NewPage(matched, domain.Pageable{}), nil
}

// FullTextSearch queries the subscription index and returns up to size
// matching subscriptions in relevance order.
func (s *service) FullTextSearch(ctx context.Context, text string, size int) ([]domain.Subscription, error) {
	if s.index == nil {
		return nil, domain.Technicalf("full text search: no index configured")
	}
	ids, err := s.index.Search(ctx, text, size)
	if err != nil {
		return nil, domain.Technical("full text search", err)
	}
	return s.FindByIDs(ctx, ids)
}

// ExportCSV writes subs as ';' separated values with plan and application
// names resolved.
func (s *service) ExportCSV(ctx context.Context, w io.Writer, subs []domain.Subscription) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	planNames := make(map[string]string)
	appNames := make(map[string]string)
	for _, sub := range subs {
		plan, ok := planNames[sub.Plan]
		if !ok {
			plan = sub.Plan
			if p, err := s.plan(ctx, sub.Plan); err == nil {
				plan = p.Name
			}
			planNames[sub.Plan] = plan
		}
		app, ok := appNames[sub.Application]
		if !ok {
			app = sub.Application
			if a, err := s.application(ctx, sub.Application); err == nil {
				app = a.Name
			}
			appNames[sub.Application] = app
		}

		record := []string{
			plan,
			app,
			sub.CreatedAt.UTC().Format(csvDateLayout),
			formatDate(sub.ProcessedAt),
			formatDate(sub.StartingAt),
			formatDate(sub.EndingAt),
			string(sub.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(csvDateLayout)
}
