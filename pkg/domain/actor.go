package domain

// SystemValidator is the processor recorded on subscriptions accepted by
// automatic plan validation.
const SystemValidator = "system"

// Actor is the caller of a management operation. It is passed explicitly
// through every mutating call instead of being read from global state.
type Actor struct {
	UserID         string   `json:"user_id"`
	OrganizationID string   `json:"organization_id,omitempty"`
	EnvironmentID  string   `json:"environment_id,omitempty"`
	Role           string   `json:"role,omitempty"`
	Groups         []string `json:"groups,omitempty"`
}

// System returns the actor used for automatic transitions in the given
// environment.
func System(environmentID string) Actor {
	return Actor{UserID: SystemValidator, EnvironmentID: environmentID}
}
