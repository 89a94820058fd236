package models

import "time"

type UserRole string

const (
	UserRoleGeneral UserRole = "general"
	UserRoleManager UserRole = "manager"
	UserRoleAdmin   UserRole = "admin"
)

func ValidRole(role UserRole) bool {
	switch role {
	case UserRoleGeneral, UserRoleManager, UserRoleAdmin:
		return true
	}
	return false
}

// UserStatus is the administrator-controlled approval gate. It is
// independent of credential validity: an unapproved admin still
// cannot log in.
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
)

func ValidStatus(status UserStatus) bool {
	switch status {
	case UserStatusPending, UserStatusApproved, UserStatusRejected:
		return true
	}
	return false
}

type User struct {
	ID                string
	Email             string
	PasswordHash      []byte
	FirstName         string
	LastName          string
	Phone             *string
	Department        string
	Position          string
	Role              UserRole
	Status            UserStatus
	EmailVerified     bool
	VerificationToken *string
	ResetToken        *string
	ResetTokenExpiry  *time.Time
	LastLoginAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
