package models

import "time"

// User represents the authenticated account as returned by GET /users/me.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name,omitempty"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	Timezone         string    `json:"timezone"`
	SleepWindowStart string    `json:"sleep_window_start,omitempty"` // HH:mm
	SleepWindowEnd   string    `json:"sleep_window_end,omitempty"`   // HH:mm
	OnboardingDone   bool      `json:"onboarding_done"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest is the registration request body.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// AuthResponse is returned by /auth/login and /auth/register.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
