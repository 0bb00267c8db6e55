package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account types carried in access tokens.
const (
	AccountTypeEmployee = "Employee"
	AccountTypeAdmin    = "Admin"
)

// Roles checked by RoleAuthMiddleware.
const (
	RoleEmployee   = "employee"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Admin is a back-office user.
type Admin struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password"`
	Role         string             `json:"role" bson:"role"`
	Active       bool               `json:"active" bson:"active"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Credentials for login request
type Credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Identity is the authenticated caller as read from the access token.
type Identity struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Role string `json:"role"`
}
