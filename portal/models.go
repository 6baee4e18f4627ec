package portal

import "time"

// Role identifies which party an account acts as. These align with the
// due-diligence assignee roles, plus the client portal itself.
type Role string

const (
	RoleAgent     Role = "agent"
	RoleSolicitor Role = "solicitor"
	RoleBroker    Role = "broker"
	RoleInspector Role = "inspector"
	RoleClient    Role = "client"
)

// Account is the domain representation of a portal login. Its ID is the
// actor id attributed on stage transitions and match status changes.
// No JSON annotations so it can be reused by different presentation layers.
type Account struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Phone        *string
	AgencyID     *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterRequest contains account registration data supplied by callers.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// LoginRequest contains portal login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
