package response

import "time"

type SignupResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
