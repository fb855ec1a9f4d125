package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleBeneficiary Role = "beneficiary"
	RoleConsultant  Role = "consultant"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleBeneficiary, RoleConsultant:
		return Role(s), true
	default:
		return "", false
	}
}

type User struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
