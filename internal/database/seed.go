package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user, one category, and one published post so the public site
// has something to render. No-op if users already exist. The admin will
// be prompted to set up 2FA on first login (totp_enabled = false).
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "admin@blogpress.local", string(hash), "Admin", "admin", false).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	var categoryID string
	err = db.QueryRow(`
		INSERT INTO categories (name, slug, description, meta_description)
		VALUES ($1, $2, $3, $3)
		RETURNING id
	`, "General", "general", "Posts that fit nowhere else.").Scan(&categoryID)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO posts (title, slug, author_id, content, excerpt, category_id,
		                   status, meta_title, meta_description)
		VALUES ($1, $2, $3, $4, $5, $6, 'published', $1, $5)
	`, "Welcome to BlogPress", "welcome-to-blogpress", adminID,
		"Your blog is up and running. Log in at `/admin` to write your first post.",
		"Your blog is up and running.", categoryID)
	if err != nil {
		return fmt.Errorf("seed insert post: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@blogpress.local",
		"password", "admin",
	)

	return nil
}
