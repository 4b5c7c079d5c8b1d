package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"boq_engine/internal/auth"
	"boq_engine/internal/config"
	"boq_engine/internal/models"
	"boq_engine/internal/storage"
)

// init-admin creates the bootstrap admin account for a fresh deployment.
// It is idempotent: an existing account with the same email is left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	email := os.Getenv("ADMIN_BOOTSTRAP_EMAIL")
	password := os.Getenv("ADMIN_BOOTSTRAP_PASSWORD")

	if email == "" || password == "" {
		fmt.Fprintf(os.Stderr, "ERROR: ADMIN_BOOTSTRAP_EMAIL and ADMIN_BOOTSTRAP_PASSWORD must be set\n")
		os.Exit(1)
	}
	if !strings.Contains(email, "@") {
		fmt.Fprintf(os.Stderr, "ERROR: Invalid email format: %s\n", email)
		os.Exit(1)
	}
	if len(password) < 8 {
		fmt.Fprintf(os.Stderr, "ERROR: Password must be at least 8 characters long\n")
		os.Exit(1)
	}

	db, err := storage.NewDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := db.NewAdminUserRepository()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	existing, err := repo.GetByEmail(ctx, email)
	if err != nil && err != storage.ErrAdminUserNotFound {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to check for existing user: %v\n", err)
		os.Exit(1)
	}
	if existing != nil {
		fmt.Printf("Admin user %s already exists, nothing to do\n", email)
		os.Exit(0)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        []string{auth.RoleAdmin.String()},
		Enabled:      true,
	}

	if err := repo.Create(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to create admin user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created admin user %s (%s)\n", user.Email, user.ID)
}
