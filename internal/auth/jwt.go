package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"boq_engine/internal/models"
)

// ErrInvalidCredentials is returned when the email/password pair does not
// match an enabled admin account.
var ErrInvalidCredentials = errors.New("invalid credentials")

const adminTokenTTL = 1 * time.Hour

// AdminClaims are the JWT claims carried by an admin token
type AdminClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// AdminStore is the subset of the admin user repository the login flow needs
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// AuthenticateAdmin verifies the email/password pair against the store and
// issues a token on success. Disabled accounts and unknown emails both map to
// ErrInvalidCredentials.
func AuthenticateAdmin(ctx context.Context, store AdminStore, email, password string, secret []byte) (string, int64, error) {
	user, err := store.GetByEmail(ctx, email)
	if err != nil {
		return "", 0, ErrInvalidCredentials
	}
	if !user.IsValid() {
		return "", 0, ErrInvalidCredentials
	}
	if !CheckPassword(password, user.PasswordHash) {
		return "", 0, ErrInvalidCredentials
	}

	token, expiresAt, err := GenerateAdminJWT(user, secret)
	if err != nil {
		return "", 0, err
	}

	// Best effort; login still succeeds if the timestamp write fails.
	_ = store.UpdateLastLogin(ctx, user.ID)

	return token, expiresAt, nil
}

// GenerateAdminJWT creates a signed short-lived token for an admin user
func GenerateAdminJWT(user *models.AdminUser, secret []byte) (string, int64, error) {
	expiresAt := time.Now().Add(adminTokenTTL)

	claims := AdminClaims{
		Email: user.Email,
		Roles: user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt.Unix(), nil
}

// ValidateAdminJWT verifies a token and returns its claims
func ValidateAdminJWT(tokenString string, secret []byte) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
