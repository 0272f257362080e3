package domain

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// Principal is the authenticated caller, taken from a verified bearer token.
// For clients, UserID is also their Client.ID in the plan store.
type Principal struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// IsTrainer reports whether the caller manages plans.
func (p Principal) IsTrainer() bool {
	return p.Role == RoleTrainer
}

// IsClient reports whether the caller is a trainee.
func (p Principal) IsClient() bool {
	return p.Role == RoleClient
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleTrainer || r == RoleClient
}
