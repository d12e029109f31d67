package domain

// APIKeyMode is how an application uses API keys across its subscriptions.
type APIKeyMode string

const (
	APIKeyModeUnspecified APIKeyMode = "UNSPECIFIED"
	APIKeyModeExclusive   APIKeyMode = "EXCLUSIVE"
	APIKeyModeShared      APIKeyMode = "SHARED"
)

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

const (
	ApplicationActive   ApplicationStatus = "ACTIVE"
	ApplicationArchived ApplicationStatus = "ARCHIVED"
)

// ApplicationType selects where the application's OAuth client id lives.
type ApplicationType string

const (
	ApplicationSimple           ApplicationType = "SIMPLE"
	ApplicationBrowser          ApplicationType = "BROWSER"
	ApplicationWeb              ApplicationType = "WEB"
	ApplicationNative           ApplicationType = "NATIVE"
	ApplicationBackendToBackend ApplicationType = "BACKEND_TO_BACKEND"
)

// Owner identifies the primary owner of an application.
type Owner struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Application is a consumer of APIs.
type Application struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Status       ApplicationStatus `json:"status"`
	Type         ApplicationType   `json:"type"`
	APIKeyMode   APIKeyMode        `json:"api_key_mode"`
	PrimaryOwner Owner             `json:"primary_owner"`
	// ClientID is set on SIMPLE applications.
	ClientID string `json:"client_id,omitempty"`
	// OAuthClientID is set on applications registered with an OAuth server.
	OAuthClientID string `json:"oauth_client_id,omitempty"`
	EnvironmentID string `json:"environment_id,omitempty"`
}

// HasSharedAPIKey reports whether the application reuses one key across
// all of its subscriptions.
func (a Application) HasSharedAPIKey() bool {
	return a.APIKeyMode == APIKeyModeShared
}
