package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"boq_engine/internal/models"
	"boq_engine/internal/storage"
)

var testSecret = []byte("test-secret-key-for-testing")

// MockAdminStore for testing
type MockAdminStore struct {
	users      map[string]*models.AdminUser
	lastLogins map[uuid.UUID]int
}

func NewMockAdminStore() *MockAdminStore {
	return &MockAdminStore{
		users:      make(map[string]*models.AdminUser),
		lastLogins: make(map[uuid.UUID]int),
	}
}

func (m *MockAdminStore) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if user, ok := m.users[email]; ok {
		return user, nil
	}
	return nil, storage.ErrAdminUserNotFound
}

func (m *MockAdminStore) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	m.lastLogins[id]++
	return nil
}

func newTestUser(t *testing.T, email, password string, enabled bool) *models.AdminUser {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return &models.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Roles:        pq.StringArray{"admin"},
		Enabled:      enabled,
	}
}

func TestGenerateAndValidateAdminJWT(t *testing.T) {
	user := newTestUser(t, "admin@example.com", "password-123", true)

	token, expTime, err := GenerateAdminJWT(user, testSecret)
	if err != nil {
		t.Fatalf("GenerateAdminJWT() error = %v", err)
	}
	if token == "" {
		t.Error("GenerateAdminJWT() returned empty token")
	}
	if expTime <= time.Now().Unix() {
		t.Error("GenerateAdminJWT() expiration time is in the past")
	}

	claims, err := ValidateAdminJWT(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateAdminJWT() error = %v", err)
	}
	if claims.Email != user.Email {
		t.Errorf("claims.Email = %q, want %q", claims.Email, user.Email)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("claims.Subject = %q, want %q", claims.Subject, user.ID.String())
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "admin" {
		t.Errorf("claims.Roles = %v, want [admin]", claims.Roles)
	}
}

func TestValidateAdminJWTWrongSecret(t *testing.T) {
	user := newTestUser(t, "admin@example.com", "password-123", true)

	token, _, err := GenerateAdminJWT(user, testSecret)
	if err != nil {
		t.Fatalf("GenerateAdminJWT() error = %v", err)
	}

	if _, err := ValidateAdminJWT(token, []byte("another-secret")); err == nil {
		t.Error("ValidateAdminJWT() error = nil, want error for wrong secret")
	}
}

func TestValidateAdminJWTGarbage(t *testing.T) {
	if _, err := ValidateAdminJWT("not-a-token", testSecret); err == nil {
		t.Error("ValidateAdminJWT() error = nil, want error for garbage input")
	}
}

func TestAuthenticateAdmin(t *testing.T) {
	ctx := context.Background()
	store := NewMockAdminStore()
	password := "correct-horse-battery"
	user := newTestUser(t, "admin@example.com", password, true)
	store.users[user.Email] = user
	disabled := newTestUser(t, "disabled@example.com", password, false)
	store.users[disabled.Email] = disabled

	t.Run("valid credentials", func(t *testing.T) {
		token, expTime, err := AuthenticateAdmin(ctx, store, user.Email, password, testSecret)
		if err != nil {
			t.Fatalf("AuthenticateAdmin() error = %v", err)
		}
		if token == "" {
			t.Error("AuthenticateAdmin() returned empty token")
		}
		if expTime <= time.Now().Unix() {
			t.Error("AuthenticateAdmin() expiration time is in the past")
		}
		if store.lastLogins[user.ID] == 0 {
			t.Error("AuthenticateAdmin() did not record last login")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := AuthenticateAdmin(ctx, store, user.Email, "wrong-password", testSecret)
		if err != ErrInvalidCredentials {
			t.Errorf("AuthenticateAdmin() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := AuthenticateAdmin(ctx, store, "nobody@example.com", password, testSecret)
		if err != ErrInvalidCredentials {
			t.Errorf("AuthenticateAdmin() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("disabled account", func(t *testing.T) {
		_, _, err := AuthenticateAdmin(ctx, store, disabled.Email, password, testSecret)
		if err != ErrInvalidCredentials {
			t.Errorf("AuthenticateAdmin() error = %v, want ErrInvalidCredentials", err)
		}
	})
}
