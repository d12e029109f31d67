package rbac

// MaxInheritanceDepth bounds role inheritance chains.
const MaxInheritanceDepth = 10

// Role grants permissions directly and through the roles it inherits.
type Role struct {
	Permissions []string `json:"permissions"`
	Inherits    []string `json:"inherits,omitempty"`
}

const (
	RoleAdmin     = "ADMIN"
	RolePublisher = "API_PUBLISHER"
	RoleUser      = "USER"
)

const (
	PermissionEnvironmentAdmin   = "environment.admin"
	PermissionSubscriptionRead   = "subscription.read"
	PermissionSubscriptionCreate = "subscription.create"
	PermissionSubscriptionManage = "subscription.manage"
	PermissionAPIKeyManage       = "apikey.manage"
)

// DefaultRoles is the role set used when none is configured.
func DefaultRoles() map[string]Role {
	return map[string]Role{
		RoleUser: {
			Permissions: []string{PermissionSubscriptionRead, PermissionSubscriptionCreate},
		},
		RolePublisher: {
			Permissions: []string{"subscription.*", "apikey.*"},
			Inherits:    []string{RoleUser},
		},
		RoleAdmin: {
			Permissions: []string{"*"},
		},
	}
}
