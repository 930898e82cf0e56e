package domain

// Role is the authorization role carried by an authenticated caller.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal has administrative rights.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess reports whether the principal may act on a resource owned by ownerID.
func (p Principal) CanAccess(ownerID string) bool {
	return p.UserID == ownerID || p.IsAdmin()
}
