package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

// Plans is the read-only plan repository.
type Plans struct {
	q Querier
}

func (r *Plans) FindByID(ctx context.Context, id string) (domain.Plan, error) {
	var (
		p                            domain.Plan
		status, security, validation string
	)
	err := r.q.QueryRow(ctx, `SELECT id, api, name, status, security, validation, general_conditions, excluded_groups
		FROM plans WHERE id = $1`, id).
		Scan(&p.ID, &p.API, &p.Name, &status, &security, &validation, &p.GeneralConditions, &p.ExcludedGroups)
	if err != nil {
		return domain.Plan{}, notFound(err)
	}
	p.Status = domain.PlanStatus(status)
	p.Security = domain.PlanSecurity(security)
	p.Validation = domain.ValidationMode(validation)
	return p, nil
}

// Applications is the application repository.
type Applications struct {
	q Querier
}

func (r *Applications) FindByID(ctx context.Context, id string) (domain.Application, error) {
	var (
		a                 domain.Application
		status, typ, mode string
	)
	err := r.q.QueryRow(ctx, `SELECT id, name, status, type, api_key_mode, owner_id, owner_email, owner_display_name,
		client_id, oauth_client_id, environment_id FROM applications WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &status, &typ, &mode, &a.PrimaryOwner.ID, &a.PrimaryOwner.Email, &a.PrimaryOwner.DisplayName,
			&a.ClientID, &a.OAuthClientID, &a.EnvironmentID)
	if err != nil {
		return domain.Application{}, notFound(err)
	}
	a.Status = domain.ApplicationStatus(status)
	a.Type = domain.ApplicationType(typ)
	a.APIKeyMode = domain.APIKeyMode(mode)
	return a, nil
}

// UpdateAPIKeyMode stores the settled key mode of an application.
func (r *Applications) UpdateAPIKeyMode(ctx context.Context, id string, mode domain.APIKeyMode) error {
	if err := affected(r.q.Exec(ctx, `UPDATE applications SET api_key_mode = $2 WHERE id = $1`, id, string(mode))); err != nil {
		return fmt.Errorf("update api key mode: %w", err)
	}
	return nil
}

// ContentPages is the read-only content page repository.
type ContentPages struct {
	q Querier
}

func (r *ContentPages) FindByID(ctx context.Context, id string) (domain.ContentPage, error) {
	var p domain.ContentPage
	err := r.q.QueryRow(ctx, `SELECT id, name, revision FROM content_pages WHERE id = $1`, id).Scan(&p.ID, &p.Name, &p.Revision)
	if err != nil {
		return domain.ContentPage{}, notFound(err)
	}
	return p, nil
}

// prefixed qualifies every column of a comma separated list.
func prefixed(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = prefix + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}
