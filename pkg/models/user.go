package models

import (
	"strings"

	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
)

// User is an operator account registered with the gateway.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Teamname  string `json:"teamname"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func (u User) EntityID() int { return u.ID }

// UserForm holds the editable User fields.
type UserForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Teamname string `json:"teamname"`
}

// NewUserForm seeds a form from an existing user.
func NewUserForm(u User) UserForm {
	return UserForm{Username: u.Username, Email: u.Email, Teamname: u.Teamname}
}

// Validate requires username, email and teamname.
func (f UserForm) Validate() error {
	switch {
	case strings.TrimSpace(f.Username) == "":
		return apperrors.NewValidationError("username", "Username is required")
	case strings.TrimSpace(f.Email) == "":
		return apperrors.NewValidationError("email", "Email is required")
	case strings.TrimSpace(f.Teamname) == "":
		return apperrors.NewValidationError("teamname", "Teamname is required")
	}
	return nil
}
