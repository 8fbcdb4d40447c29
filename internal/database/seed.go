package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates an admin account and a "General" category if no users
// exist yet. Calling it against a populated database is a no-op.
func Seed(ctx context.Context, db *sql.DB, adminEmail, adminPassword string) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	adminID := uuid.New()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, totp_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'admin', FALSE, $5, $5)
	`, adminID, "Admin", adminEmail, string(hash), now)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO categories (id, name, slug, description, author_id, created_at, updated_at)
		VALUES ($1, 'General', 'general', 'Posts that do not fit anywhere else', $2, $3, $3)
		ON CONFLICT DO NOTHING
	`, uuid.New(), adminID, now)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin user", "email", adminEmail)
	return nil
}
