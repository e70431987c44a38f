package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/policy"
)

// JWTClaims represents custom JWT claims
type JWTClaims struct {
	UserID   uuid.UUID   `json:"user_id"`
	Role     policy.Role `json:"role"`
	ClinicID *uuid.UUID  `json:"clinic_id,omitempty"`
	BranchID *uuid.UUID  `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}
