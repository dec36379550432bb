package models

// User roles.
const (
	RoleAdmin       = "admin"
	RoleMaintenance = "maintenance"
	RolePlanner     = "planner"
)

type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"` // admin | maintenance | planner
	PasswordHash string `json:"-"`    // don't expose hash
}
