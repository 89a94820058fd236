package security

import "mescore/api/internal/models"

// Allow is the single policy decision point for role- and ownership-gated
// endpoints. It grants access when the caller's role is in the allowed set,
// or when an owner id is given and matches the caller. Admins always pass.
func Allow(callerRole models.UserRole, callerID string, ownerID string, allowed ...models.UserRole) bool {
	if callerRole == models.UserRoleAdmin {
		return true
	}
	if ownerID != "" && callerID == ownerID {
		return true
	}
	for _, role := range allowed {
		if callerRole == role {
			return true
		}
	}
	return false
}
