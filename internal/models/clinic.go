package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Clinic is the top of the tenant hierarchy. A clinic owns branches and
// users; it cannot be deleted while either exists.
type Clinic struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Address      string    `gorm:"type:text;not null" json:"address"`
	ContactEmail string    `gorm:"type:varchar(255);not null" json:"contact_email"`
	ContactPhone string    `gorm:"type:varchar(50);not null" json:"contact_phone"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Clinic) TableName() string {
	return "clinics"
}

// BeforeCreate hook
func (c *Clinic) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Branch belongs to exactly one clinic. Its clinic never changes except by a
// superadmin.
type Branch struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID     uuid.UUID `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Address      string    `gorm:"type:text;not null" json:"address"`
	ContactEmail string    `gorm:"type:varchar(255);not null" json:"contact_email"`
	ContactPhone string    `gorm:"type:varchar(50);not null" json:"contact_phone"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`

	Clinic *Clinic `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Branch) TableName() string {
	return "branches"
}

// BeforeCreate hook
func (b *Branch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ClinicRequest represents a request to create/update a clinic
type ClinicRequest struct {
	Name         string `json:"name" binding:"required"`
	Address      string `json:"address" binding:"required"`
	ContactEmail string `json:"contact_email" binding:"required"`
	ContactPhone string `json:"contact_phone" binding:"required"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// BranchRequest represents a request to create/update a branch
type BranchRequest struct {
	Name         string    `json:"name" binding:"required"`
	Address      string    `json:"address" binding:"required"`
	ContactEmail string    `json:"contact_email" binding:"required"`
	ContactPhone string    `json:"contact_phone" binding:"required"`
	ClinicID     uuid.UUID `json:"clinic_id"`
	IsActive     *bool     `json:"is_active,omitempty"`
}
