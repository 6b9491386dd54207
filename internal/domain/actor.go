package domain

// Role is the authorization level carried by an authenticated actor.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleUser     Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleOperator || r == RoleUser
}

// Actor is the caller of an operation as resolved by the auth gate.
type Actor struct {
	ID   string
	Role Role
}

// Elevated reports whether the actor may see and modify every service
// regardless of owner.
func (a Actor) Elevated() bool {
	return a.Role == RoleAdmin || a.Role == RoleOperator
}

// CanAccess reports whether the actor may read or modify a service owned by ownerID.
func (a Actor) CanAccess(ownerID string) bool {
	return a.Elevated() || (a.ID != "" && a.ID == ownerID)
}

// Scope restricts list and stats queries to the rows an actor may see.
// When All is false only rows owned by OwnerID match, so an empty OwnerID
// matches nothing.
type Scope struct {
	All     bool
	OwnerID string
}

// ScopeFor returns the visibility scope of a.
func ScopeFor(a Actor) Scope {
	if a.Elevated() {
		return Scope{All: true}
	}
	return Scope{OwnerID: a.ID}
}
