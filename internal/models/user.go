package models

import "time"

// UserProfile is the identity and marketplace attributes of a user. The
// backend owns it; the client only holds a read-through copy.
type UserProfile struct {
	ID             int64     `json:"id" validate:"required,gt=0"`
	Username       string    `json:"username"`
	Email          string    `json:"email,omitempty"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	ProfileImage   string    `json:"profile_image,omitempty"`
	Location       string    `json:"location,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Availability   []string  `json:"availability,omitempty"`
	IsActive       bool      `json:"is_active"`
	IsBanned       bool      `json:"is_banned"`
	IsPrivate      bool      `json:"is_private"`
	IsStaff        bool      `json:"is_staff"`
	Rating         float64   `json:"rating"`
	CompletedSwaps int       `json:"completed_swaps"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (u *UserProfile) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// HasAvailability reports whether tag is one of the user's availability tags.
func (u *UserProfile) HasAvailability(tag string) bool {
	for _, a := range u.Availability {
		if a == tag {
			return true
		}
	}
	return false
}

// Availability tags accepted by the backend.
const (
	AvailabilityWeekdays   = "weekdays"
	AvailabilityWeekends   = "weekends"
	AvailabilityMornings   = "mornings"
	AvailabilityAfternoons = "afternoons"
	AvailabilityEvenings   = "evenings"
	AvailabilityNights     = "nights"
)

// AvailabilityTags is the validator oneof list for availability tags.
const AvailabilityTags = "weekdays weekends mornings afternoons evenings nights monday tuesday wednesday thursday friday saturday sunday"

// TokenPair is the credential pair issued by login and registration.
type TokenPair struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshedToken is the response of the token refresh endpoint. Refresh is
// only present when the backend rotates refresh tokens.
type RefreshedToken struct {
	Access  string `json:"access" validate:"required"`
	Refresh string `json:"refresh,omitempty"`
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Count   int `json:"count" validate:"gte=0"`
	Results []T `json:"results" validate:"dive"`
}
