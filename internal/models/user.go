package models

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSeller  Role = "seller"
	RoleManager Role = "manager"
)

type User struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
}
