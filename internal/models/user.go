package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/policy"
	"gorm.io/gorm"
)

// User is a staff principal. Tenant attachment depends on role: clinicadmins
// carry a clinic, branchadmins and doctors carry a clinic and a branch,
// superadmins carry neither.
type User struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email          string      `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	FullName       string      `gorm:"type:varchar(255);not null" json:"full_name"`
	HashedPassword string      `gorm:"type:text;not null" json:"-"`
	Role           policy.Role `gorm:"type:varchar(50);not null;index" json:"role"`
	ClinicID       *uuid.UUID  `gorm:"type:uuid;index" json:"clinic_id,omitempty"`
	BranchID       *uuid.UUID  `gorm:"type:uuid;index" json:"branch_id,omitempty"`
	IsActive       bool        `gorm:"default:true" json:"is_active"`

	Clinic *Clinic `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`
	Branch *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Caller converts the row into the identity shape the policy engine takes.
func (u *User) Caller() policy.Caller {
	caller := policy.Caller{
		UserID: u.ID,
		Role:   u.Role,
	}
	if u.ClinicID != nil {
		caller.ClinicID = *u.ClinicID
	}
	if u.BranchID != nil {
		caller.BranchID = *u.BranchID
	}
	return caller
}

// UserRequest represents a request to create/update a user
type UserRequest struct {
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Password string      `json:"password,omitempty"`
	Role     policy.Role `json:"role,omitempty"`
	ClinicID *uuid.UUID  `json:"clinic_id,omitempty"`
	BranchID *uuid.UUID  `json:"branch_id,omitempty"`
	IsActive *bool       `json:"is_active,omitempty"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the safe user view
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ChangePasswordRequest represents a password change for the current user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}
