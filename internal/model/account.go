package model

type AccountStatus string

const (
	AccountStatusPending AccountStatus = "Pending"
	AccountStatusActive  AccountStatus = "Active"
)

// Roles returned by login.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Account is the caller-facing projection of a staff account. The password
// digest never leaves the service layer.
type Account struct {
	ID       string        `json:"id,omitempty"`
	FullName string        `json:"full_name"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Status   AccountStatus `json:"status"`
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ApproveRequest struct {
	Username string `json:"username" binding:"required"`
}

// LoginResult carries the assigned role and the session token.
type LoginResult struct {
	Role  string `json:"role"`
	Token string `json:"token"`
}

// BootstrapAdmin is the fixed, non-persisted credential pair that bypasses
// the approval gate. It is injected from configuration, never stored.
type BootstrapAdmin struct {
	Username string
	Password string
	FullName string
	Email    string
}
