package rbac

import (
	"fmt"
	"slices"
	"strings"
)

// Authorizer checks role permissions.
type Authorizer struct {
	permissions map[string][]string
}

// NewAuthorizer flattens the inheritance of roles. Unknown inherited roles
// are an error.
func NewAuthorizer(roles map[string]Role) (*Authorizer, error) {
	flat := make(map[string][]string, len(roles))
	for name := range roles {
		perms, err := collect(name, roles, nil)
		if err != nil {
			return nil, err
		}
		slices.Sort(perms)
		flat[name] = slices.Compact(perms)
	}
	return &Authorizer{permissions: flat}, nil
}

func collect(name string, roles map[string]Role, path []string) ([]string, error) {
	if slices.Contains(path, name) {
		return nil, fmt.Errorf("%w: %s", ErrCircularInheritance, strings.Join(append(path, name), " -> "))
	}
	if len(path) > MaxInheritanceDepth {
		return nil, fmt.Errorf("%w: %s", ErrInheritanceTooDeep, name)
	}
	role, ok := roles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, name)
	}

	perms := slices.Clone(role.Permissions)
	for _, parent := range role.Inherits {
		inherited, err := collect(parent, roles, append(path, name))
		if err != nil {
			return nil, err
		}
		perms = append(perms, inherited...)
	}
	return perms, nil
}

// Can returns nil when the role grants the permission.
func (a *Authorizer) Can(role, permission string) error {
	perms, ok := a.permissions[role]
	if !ok {
		return ErrInvalidRole
	}
	for _, granted := range perms {
		if matches(granted, permission) {
			return nil
		}
	}
	return ErrInsufficientPermissions
}

// Has is Can as a predicate.
func (a *Authorizer) Has(role, permission string) bool {
	return a.Can(role, permission) == nil
}

// Roles lists the known role names in lexical order.
func (a *Authorizer) Roles() []string {
	names := make([]string, 0, len(a.permissions))
	for name := range a.permissions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func matches(granted, permission string) bool {
	if granted == "*" || granted == permission {
		return true
	}
	if prefix, ok := strings.CutSuffix(granted, ".*"); ok {
		return strings.HasPrefix(permission, prefix+".")
	}
	return false
}
