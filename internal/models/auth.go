package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ResetRequest is the body of POST /forgot.
type ResetRequest struct {
	Email string `form:"email"`
}

// Input returns the request as the field bag handed to the validation engine.
func (r ResetRequest) Input() map[string]any {
	return map[string]any{"email": r.Email}
}

// ResetSubmission is the body of POST /forgot/reset.
type ResetSubmission struct {
	Email                string `form:"email"`
	Password             string `form:"password"`
	PasswordConfirmation string `form:"password_confirmation"`
	Token                string `form:"token"`
}

func (s ResetSubmission) Input() map[string]any {
	return map[string]any{
		"email":                 s.Email,
		"password":              s.Password,
		"password_confirmation": s.PasswordConfirmation,
		"token":                 s.Token,
	}
}

type UserClaimKey struct{}

// SessionClaims are carried by the signed session cookie of a logged-in user.
type SessionClaims struct {
	Email  string    `json:"email"`
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}
