// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"blogpress/internal/models"
)

// CommentStore handles all comment-related database operations.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// ListActiveByPost returns the approved comments for a post, oldest
// first, as shown under the public post detail.
func (s *CommentStore) ListActiveByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, name, email, content, active, created_at
		FROM comments
		WHERE post_id = $1 AND active = true
		ORDER BY created_at
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list active comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.Name, &c.Email, &c.Content, &c.Active, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ListPending returns unapproved comments across all posts, newest first,
// with the post title for the moderation queue.
func (s *CommentStore) ListPending() ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.post_id, c.name, c.email, c.content, c.active, c.created_at,
		       p.title
		FROM comments c
		JOIN posts p ON p.id = c.post_id
		WHERE c.active = false
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.Name, &c.Email, &c.Content, &c.Active,
			&c.CreatedAt, &c.PostTitle,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Create inserts a new comment in the inactive state. Comments become
// visible only after approval; there is no way to create one active.
func (s *CommentStore) Create(postID uuid.UUID, name, email, content string) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, name, email, content, active)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id, post_id, name, email, content, active, created_at
	`, postID, name, email, content).Scan(
		&c.ID, &c.PostID, &c.Name, &c.Email, &c.Content, &c.Active, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// Approve sets active = true on exactly the given comments in one
// statement. Returns the number of comments flipped. There is no
// un-approve operation.
func (s *CommentStore) Approve(ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	updateSQL, args, err := psql.Update("comments").
		Set("active", true).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build approve query: %w", err)
	}

	res, err := s.db.Exec(updateSQL, args...)
	if err != nil {
		return 0, fmt.Errorf("approve comments: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// CountActiveByPost returns the number of approved comments on a post.
func (s *CommentStore) CountActiveByPost(postID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM comments WHERE post_id = $1 AND active = true`, postID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active comments: %w", err)
	}
	return count, nil
}

// CountPending returns the size of the moderation queue for the dashboard.
func (s *CommentStore) CountPending() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE active = false`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending comments: %w", err)
	}
	return count, nil
}
