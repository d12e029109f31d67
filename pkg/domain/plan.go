package domain

// PlanStatus is the publication state of a plan.
type PlanStatus string

const (
	PlanStaging    PlanStatus = "STAGING"
	PlanPublished  PlanStatus = "PUBLISHED"
	PlanDeprecated PlanStatus = "DEPRECATED"
	PlanClosed     PlanStatus = "CLOSED"
)

// PlanSecurity is the authentication scheme a plan enforces at the gateway.
type PlanSecurity string

const (
	SecurityKeyLess PlanSecurity = "KEY_LESS"
	SecurityAPIKey  PlanSecurity = "API_KEY"
	SecurityOAuth2  PlanSecurity = "OAUTH2"
	SecurityJWT     PlanSecurity = "JWT"
)

// IsTokenBased reports whether the security relies on an OAuth client id.
func (s PlanSecurity) IsTokenBased() bool {
	return s == SecurityOAuth2 || s == SecurityJWT
}

// ValidationMode decides whether subscriptions need a human approval.
type ValidationMode string

const (
	ValidationAuto   ValidationMode = "AUTO"
	ValidationManual ValidationMode = "MANUAL"
)

// Plan is a subscribable offering on an API.
type Plan struct {
	ID         string         `json:"id"`
	API        string         `json:"api"`
	Name       string         `json:"name"`
	Status     PlanStatus     `json:"status"`
	Security   PlanSecurity   `json:"security"`
	Validation ValidationMode `json:"validation"`
	// GeneralConditions is the id of the content page subscribers must accept.
	GeneralConditions string   `json:"general_conditions,omitempty"`
	ExcludedGroups    []string `json:"excluded_groups,omitempty"`
}

// ContentPage is the published document backing plan general conditions.
type ContentPage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Revision int    `json:"revision"`
}
