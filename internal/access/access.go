// Package access holds the caller identity produced by the authorization
// middleware and the tenant-boundary rules applied to resources.
package access

import (
	"time"

	"qrmenu/internal/apperrors"
)

// Role is the account role carried in tokens and on the user record.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// Scope is the tenant boundary a caller operates within. It is either
// unrestricted (superadmin) or bound to exactly one store (admin). The zero
// value is neither and admits nothing.
type Scope struct {
	storeID      string
	unrestricted bool
}

// Unrestricted is the scope of a superadmin.
func Unrestricted() Scope {
	return Scope{unrestricted: true}
}

// StoreScope binds a caller to a single store.
func StoreScope(storeID string) Scope {
	return Scope{storeID: storeID}
}

// IsUnrestricted reports whether the scope spans all tenants.
func (s Scope) IsUnrestricted() bool { return s.unrestricted }

// StoreID returns the bound store id, if any.
func (s Scope) StoreID() (string, bool) {
	if s.unrestricted || s.storeID == "" {
		return "", false
	}
	return s.storeID, true
}

// IsZero reports whether the scope was never resolved.
func (s Scope) IsZero() bool { return !s.unrestricted && s.storeID == "" }

// Principal is the authenticated caller.
type Principal struct {
	UserID   string
	Email    string
	Role     Role
	Scope    Scope
	IssuedAt time.Time
}

// IsSuperadmin reports whether the caller holds the superadmin role.
func (p Principal) IsSuperadmin() bool { return p.Role == RoleSuperadmin }

// AuthorizeResource admits a superadmin unconditionally and an admin only
// when storeRef names the admin's resolved store. A resource without a store
// reference is global and never accessible to an admin.
func (p Principal) AuthorizeResource(storeRef *string) error {
	if p.Role == RoleSuperadmin && p.Scope.IsUnrestricted() {
		return nil
	}
	if storeRef == nil || *storeRef == "" {
		return apperrors.Forbidden("global_resource")
	}
	return p.AuthorizeStore(*storeRef)
}

// AuthorizeStore applies the tenant rule to a raw store id.
func (p Principal) AuthorizeStore(storeID string) error {
	if p.Role == RoleSuperadmin && p.Scope.IsUnrestricted() {
		return nil
	}
	if p.Role != RoleAdmin {
		return apperrors.Forbidden("role_not_allowed")
	}
	own, ok := p.Scope.StoreID()
	if !ok {
		return apperrors.Forbidden("tenant_unresolved")
	}
	if storeID == "" || storeID != own {
		return apperrors.Forbidden("tenant_mismatch")
	}
	return nil
}
