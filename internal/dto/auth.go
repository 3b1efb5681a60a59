package dto

import (
	"time"

	"github.com/accubooks/backoffice/internal/core/domain"
)

// LoginRequest carries the operator's credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the issued token and its expiry.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest registers a new operator.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID    string `json:"userID"`
	CompanyID string `json:"companyID"`
	Username  string `json:"username"`
	Name      string `json:"name"`
}

// ToUserResponse converts a domain.User to UserResponse DTO
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		CompanyID: u.CompanyID,
		Username:  u.Username,
		Name:      u.Name,
	}
}
