package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeletedAt time.Time `gorm:"index;default:NULL" json:"-" validate:"omitempty"`
	IsDeleted bool      `json:"isDeleted" default:"false"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

type UserRole string

const (
	UserRoleAdmin        UserRole = "ADMIN"
	UserRoleSalesManager UserRole = "SALES_MANAGER"
	UserRoleSalesPerson  UserRole = "SALES_PERSON"
	UserRoleUser         UserRole = "USER"
)

// IsValidUserRole checks if a given role is valid
func IsValidUserRole(role UserRole) bool {
	switch role {
	case UserRoleAdmin, UserRoleSalesManager, UserRoleSalesPerson, UserRoleUser:
		return true
	default:
		return false
	}
}

// GrantState tracks the lifecycle of a grant or membership row. Rows are
// never deleted; revocation flips the state and keeps the history.
type GrantState string

const (
	GrantStateActive  GrantState = "ACTIVE"
	GrantStateRevoked GrantState = "REVOKED"
)

func IsValidGrantState(state GrantState) bool {
	switch state {
	case GrantStateActive, GrantStateRevoked:
		return true
	default:
		return false
	}
}

// AccessType tags how a user came to hold access to an asset.
type AccessType string

const (
	AccessTypeEnrollment AccessType = "enrollment"
	AccessTypeDirect     AccessType = "direct"
)
