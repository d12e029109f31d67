package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

// filter accumulates WHERE conditions with positional arguments.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, fmt.Sprintf(cond, len(f.args)))
}

func (f *filter) anyOf(column string, values []string) {
	if len(values) > 0 {
		f.add(column+" = ANY($%d)", values)
	}
}

func (f *filter) timeAfter(column string, t *time.Time) {
	if t != nil {
		f.add(column+" >= $%d", *t)
	}
}

func (f *filter) timeBefore(column string, t *time.Time) {
	if t != nil {
		f.add(column+" <= $%d", *t)
	}
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

func subscriptionFilter(q domain.SubscriptionQuery) *filter {
	f := &filter{}
	f.anyOf("api", q.APIs)
	f.anyOf("application", q.Applications)
	f.anyOf("plan", q.Plans)
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			statuses[i] = string(s)
		}
		f.anyOf("status", statuses)
	}
	f.timeAfter("created_at", q.CreatedFrom)
	f.timeBefore("created_at", q.CreatedTo)
	f.timeAfter("ending_at", q.EndingAtAfter)
	f.timeBefore("ending_at", q.EndingAtBefore)
	return f
}

func keyFilter(q domain.APIKeyQuery) *filter {
	f := &filter{}
	if !q.IncludeRevoked {
		f.conds = append(f.conds, "revoked = FALSE")
	}
	if q.EnvironmentID != "" {
		f.add("environment_id = $%d", q.EnvironmentID)
	}
	if len(q.Subscriptions) > 0 {
		f.add("subscriptions && $%d", q.Subscriptions)
	}
	f.timeAfter("updated_at", q.From)
	f.timeBefore("updated_at", q.To)
	f.timeAfter("expire_at", q.ExpireAfter)
	f.timeBefore("expire_at", q.ExpireBefore)
	return f
}
