package models

import "time"

const (
	RoleClient  = "client"
	RoleTrainer = "trainer"
)

// ValidRole reports whether role is one of the two roles the app knows.
func ValidRole(role string) bool {
	return role == RoleClient || role == RoleTrainer
}

type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the user shape embedded in profile responses.
type PublicUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Role: u.Role}
}
