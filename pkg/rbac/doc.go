// Package rbac maps roles to permissions with inheritance and wildcards.
//
// Permissions are dot separated scopes. A grant of "*" matches everything
// and "subscription.*" matches every permission under "subscription.".
// Inherited permissions are flattened once in NewAuthorizer so checks are
// plain lookups.
//
//	authz, err := rbac.NewAuthorizer(rbac.DefaultRoles())
//	if err := authz.Can(actor.Role, rbac.PermissionEnvironmentAdmin); err == nil {
//		// restricted plans are open to this actor
//	}
package rbac
