package auth

import (
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
// CustomerID is set for customer tokens; BranchID for staff working a branch.
type AccessTokenPayload struct {
	SubjectID  uuid.UUID
	BusinessID uuid.UUID
	CustomerID *uuid.UUID
	BranchID   *uuid.UUID
	Role       enums.ActorRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued by the session service.
type AccessTokenClaims struct {
	SubjectID  uuid.UUID       `json:"sub_id"`
	BusinessID uuid.UUID       `json:"business_id"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	BranchID   *uuid.UUID      `json:"branch_id,omitempty"`
	Role       enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
