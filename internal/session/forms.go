package session

import (
	"strings"

	"skillswap/internal/avatar"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up form. A blank Username is filled in from the
// local part of the email address after validation.
type Registration struct {
	FirstName       string   `json:"first_name" validate:"min=2"`
	LastName        string   `json:"last_name" validate:"min=2"`
	Email           string   `json:"email" validate:"required,email"`
	Username        string   `json:"username" validate:"omitempty,min=3,max=150"`
	Password        string   `json:"password" validate:"min=6"`
	ConfirmPassword string   `json:"confirm_password" validate:"eqfield=Password"`
	Location        string   `json:"location" validate:"omitempty,max=100"`
	Availability    []string `json:"availability" validate:"omitempty,dive,availability"`
	AcceptTerms     bool     `json:"terms" validate:"eq=true"`
}

func (r *Registration) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)
	r.Location = strings.TrimSpace(r.Location)
}

func (r *Registration) username() string {
	if r.Username != "" {
		return r.Username
	}
	local, _, _ := strings.Cut(r.Email, "@")
	return local
}

type registerRequest struct {
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Email        string   `json:"email"`
	Username     string   `json:"username"`
	Password     string   `json:"password"`
	Location     string   `json:"location,omitempty"`
	Availability []string `json:"availability,omitempty"`
}

type forgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

// ProfileUpdate replaces the editable profile fields. Avatar is optional and
// switches the request to multipart.
type ProfileUpdate struct {
	FirstName    string        `json:"first_name" validate:"min=2"`
	LastName     string        `json:"last_name" validate:"min=2"`
	Location     string        `json:"location,omitempty" validate:"omitempty,max=100"`
	Bio          string        `json:"bio,omitempty" validate:"omitempty,max=500"`
	Availability []string      `json:"availability" validate:"omitempty,dive,availability"`
	IsPrivate    bool          `json:"is_private"`
	Avatar       *avatar.Image `json:"-"`
}

func (p *ProfileUpdate) normalize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Location = strings.TrimSpace(p.Location)
	p.Bio = strings.TrimSpace(p.Bio)
}
