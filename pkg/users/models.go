package users

import (
	"time"

	"github.com/google/uuid"
)

// Role is the enumerated portal role
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// roleLevels defines the total order between roles: admin > teacher > student.
// Unknown roles rank below every valid role.
var roleLevels = map[Role]int{
	RoleStudent: 1,
	RoleTeacher: 2,
	RoleAdmin:   3,
}

// Level returns the numeric rank of the role, 0 for unknown roles
func (r Role) Level() int {
	return roleLevels[r]
}

// Valid reports whether r is one of the enumerated roles
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// AtLeast reports whether r ranks at or above required in the role order
func (r Role) AtLeast(required Role) bool {
	return r.Level() >= required.Level()
}

// ParseRole converts a raw string into a Role, defaulting to student when empty
func ParseRole(s string) (Role, bool) {
	if s == "" {
		return RoleStudent, true
	}
	r := Role(s)
	return r, r.Valid()
}

// User is a portal account. Accounts are never hard-deleted by this
// subsystem; deactivation is the Active flag.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Matricula    string     `json:"matricula"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	LastAccess   *time.Time `json:"last_access,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Profile is the public view of a user returned to clients
type Profile struct {
	ID         uuid.UUID  `json:"id"`
	Matricula  string     `json:"matricula"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	LastAccess *time.Time `json:"last_access,omitempty"`
}

// Profile returns the public view of the user
func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Matricula:  u.Matricula,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		LastAccess: u.LastAccess,
	}
}

// CreateUserParams carries the fields needed to insert a new user
type CreateUserParams struct {
	Matricula    string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}
