package domain

import "time"

type User struct {
	UserID        string    `json:"id" dynamodbav:"user_id"`
	Name          string    `json:"name" dynamodbav:"name"`
	Email         string    `json:"email" dynamodbav:"email"`
	PasswordHash  string    `json:"-" dynamodbav:"password_hash"`
	College       string    `json:"college" dynamodbav:"college"`
	Avatar        string    `json:"avatar,omitempty" dynamodbav:"avatar"`
	EmailVerified bool      `json:"email_verified" dynamodbav:"email_verified"`
	RefreshToken  string    `json:"-" dynamodbav:"refresh_token"`
	CreatedAt     time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// SafeUser is the client-facing user view. Password hash and refresh token
// never leave the store boundary.
type SafeUser struct {
	UserID        string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	College       string    `json:"college"`
	Avatar        string    `json:"avatar,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) Sanitize() *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		UserID:        u.UserID,
		Name:          u.Name,
		Email:         u.Email,
		College:       u.College,
		Avatar:        u.Avatar,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	College  string `json:"college" validate:"required,min=2,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=50"`
	College *string `json:"college" validate:"omitempty,min=2,max=100"`
	Avatar  *string `json:"avatar" validate:"omitempty,url"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}
