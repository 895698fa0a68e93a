package helpers

import (
	"errors"
	"time"

	"portal/internal/configuration"
	"portal/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSession = errors.New("invalid session")

// NewSessionToken signs the session cookie value of a logged-in user.
func NewSessionToken(jwtSecret string, user *models.User, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := models.SessionClaims{
		Email:  user.Email,
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    configuration.AppName,
			Audience:  jwt.ClaimStrings{configuration.AudienceSession},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
}

// ParseSessionToken accepts only unexpired HS256 session tokens issued by
// this application.
func ParseSessionToken(jwtSecret string, value string) (models.SessionClaims, error) {
	if value == "" {
		return models.SessionClaims{}, ErrInvalidSession
	}

	var claims models.SessionClaims
	_, err := jwt.ParseWithClaims(value, &claims,
		func(*jwt.Token) (any, error) { return []byte(jwtSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(configuration.AudienceSession),
		jwt.WithIssuer(configuration.AppName),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.SessionClaims{}, errors.Join(ErrInvalidSession, err)
	}
	return claims, nil
}
