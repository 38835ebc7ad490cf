package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleGuest  = "guest"
	RoleMember = "member"
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
)

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleGuest, RoleMember, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// IsStaffRole reports whether role may moderate reviews and manage listings.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleOwner
}

type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email         string             `json:"email" bson:"email" validate:"required,email"`
	Password      string             `json:"password,omitempty" bson:"password"`
	Name          string             `json:"name" bson:"name" validate:"required"`
	Avatar        string             `json:"avatar,omitempty" bson:"avatar"`
	Phone         string             `json:"phone,omitempty" bson:"phone"`
	Role          string             `json:"role" bson:"role"`
	Provider      string             `json:"provider" bson:"provider"`
	EmailVerified bool               `json:"email_verified" bson:"email_verified"`
	IsActive      bool               `json:"is_active" bson:"is_active"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
}

type GoogleSignInRequest struct {
	Code string `json:"code" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateUserRequest changes profile fields. A changed email clears the
// verified flag until the new address is confirmed.
type UpdateUserRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Avatar string `json:"avatar"`
	Email  string `json:"email" validate:"omitempty,email"`
}

type UpsertUserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email" validate:"required,email"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}

type RoleResponse struct {
	Role string `json:"role"`
}
