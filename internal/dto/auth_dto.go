package dto

import (
	"time"

	"github.com/noah-isme/schedmate-api/internal/models"
)

// RegisterRequest is the payload accepted by the register endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Role     string `json:"role" validate:"required,oneof=teacher student guru murid"`
}

// LoginRequest is the payload accepted by the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse carries a signed token for the authenticated user.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    uint      `json:"user_id"`
	Role      string    `json:"role"`
}

// ProfileUpdateRequest describes a partial profile update.
type ProfileUpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,max=50"`
	Password *string `json:"password" validate:"omitempty,min=6,max=100"`
}

// ProfileResponse is the public view of a user.
type ProfileResponse struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	PhotoURL *string `json:"photo_url"`
}

// NewProfileResponse converts a user model into its public view.
func NewProfileResponse(user models.User) ProfileResponse {
	return ProfileResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		PhotoURL: user.PhotoURL,
	}
}
