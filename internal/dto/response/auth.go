package response

import (
	"time"

	"course-platform/internal/data/entity"
)

type AuthResponse struct {
	UserID   int64  `json:"user_id"`
	Token    string `json:"token"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Helper converters
func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}

func AuthToResponse(user *entity.User, token string) AuthResponse {
	return AuthResponse{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Token:    token,
	}
}
