package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Patient belongs to the branch of the doctor who created it; the branch is
// fixed at creation and never moves.
type Patient struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	BranchID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"branch_id"`
	Name            string         `gorm:"type:varchar(255);not null" json:"name"`
	GuardianName    string         `gorm:"type:varchar(255)" json:"guardian_name,omitempty"`
	Address         string         `gorm:"type:text;not null" json:"address"`
	Age             int            `gorm:"not null" json:"age"`
	Sex             string         `gorm:"type:varchar(10);not null" json:"sex"`
	Occupation      string         `gorm:"type:varchar(255)" json:"occupation,omitempty"`
	MobileNumber    string         `gorm:"type:varchar(50);not null" json:"mobile_number"`
	ChiefComplaints string         `gorm:"type:text;not null" json:"chief_complaints"`

	MedicalHistory   datatypes.JSON `gorm:"type:jsonb" json:"medical_history,omitempty"`
	PhysicalGenerals datatypes.JSON `gorm:"type:jsonb" json:"physical_generals,omitempty"`
	MenstrualHistory datatypes.JSON `gorm:"type:jsonb" json:"menstrual_history,omitempty"`
	FoodAndHabit     datatypes.JSON `gorm:"type:jsonb" json:"food_and_habit,omitempty"`

	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Branch         *Branch         `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Investigations []Investigation `gorm:"foreignKey:PatientID" json:"investigations,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Patient) TableName() string {
	return "patients"
}

// BeforeCreate hook
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Investigation is owned by a patient and inherits its branch transitively.
type Investigation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	Type      string    `gorm:"type:varchar(255);not null" json:"type"`
	Details   string    `gorm:"type:text" json:"details,omitempty"`
	Date      time.Time `gorm:"not null" json:"date"`
	FileURL   string    `gorm:"type:text" json:"file_url,omitempty"`
	Doctor    string    `gorm:"type:varchar(255)" json:"doctor,omitempty"`

	FollowUpNeeded bool       `gorm:"not null;default:false" json:"follow_up_needed"`
	FollowUpDate   *time.Time `json:"follow_up_date,omitempty"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Investigation) TableName() string {
	return "investigations"
}

// BeforeCreate hook
func (i *Investigation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// PatientRequest represents a request to create/update a patient
type PatientRequest struct {
	Name             string         `json:"name" binding:"required"`
	GuardianName     string         `json:"guardian_name,omitempty"`
	Address          string         `json:"address" binding:"required"`
	Age              int            `json:"age" binding:"required"`
	Sex              string         `json:"sex" binding:"required"`
	Occupation       string         `json:"occupation,omitempty"`
	MobileNumber     string         `json:"mobile_number" binding:"required"`
	ChiefComplaints  string         `json:"chief_complaints" binding:"required"`
	MedicalHistory   datatypes.JSON `json:"medical_history,omitempty"`
	PhysicalGenerals datatypes.JSON `json:"physical_generals,omitempty"`
	MenstrualHistory datatypes.JSON `json:"menstrual_history,omitempty"`
	FoodAndHabit     datatypes.JSON `json:"food_and_habit,omitempty"`
}

// InvestigationRequest represents a request to create/update an investigation
type InvestigationRequest struct {
	Type           string     `json:"type" binding:"required"`
	Details        string     `json:"details,omitempty"`
	Date           time.Time  `json:"date"`
	FileURL        string     `json:"file_url,omitempty"`
	Doctor         string     `json:"doctor,omitempty"`
	FollowUpNeeded *bool      `json:"follow_up_needed,omitempty"`
	FollowUpDate   *time.Time `json:"follow_up_date,omitempty"`
}
