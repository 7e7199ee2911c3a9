// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"blogpress/internal/models"
	"blogpress/internal/seo"
)

// PageSize is the number of posts per page on every public listing.
const PageSize = 6

// psql builds queries with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// ListOptions narrows a public post listing. Zero values mean no filter.
type ListOptions struct {
	CategoryID *uuid.UUID // only posts in this category
	Query      string     // case-insensitive substring search
	Page       int        // 1-based; out-of-range pages clamp
}

// PostPage is one page of a post listing plus the numbers the pagination
// controls need.
type PostPage struct {
	Posts      []models.Post
	Number     int
	TotalPages int
	TotalCount int
}

// HasPrev reports whether an earlier page exists.
func (p *PostPage) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a later page exists.
func (p *PostPage) HasNext() bool { return p.Number < p.TotalPages }

// PrevNumber returns the previous page number.
func (p *PostPage) PrevNumber() int { return p.Number - 1 }

// NextNumber returns the next page number.
func (p *PostPage) NextNumber() int { return p.Number + 1 }

const postColumns = `p.id, p.title, p.slug, p.author_id, p.content, p.excerpt,
	p.category_id, p.status, p.featured_image, p.meta_title, p.meta_description,
	p.keywords, p.views_count, p.created_at, p.updated_at`

// scanPost scans a post row including the joined category and author names.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var catName, authorName sql.NullString
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Content, &p.Excerpt,
		&p.CategoryID, &p.Status, &p.FeaturedImage, &p.MetaTitle,
		&p.MetaDescription, &p.Keywords, &p.ViewsCount, &p.CreatedAt, &p.UpdatedAt,
		&catName, &authorName,
	)
	if err != nil {
		return nil, err
	}
	p.CategoryName = catName.String
	p.AuthorName = authorName.String
	return &p, nil
}

// publishedFilter returns the WHERE conditions for a public listing.
func publishedFilter(opts ListOptions) sq.And {
	cond := sq.And{sq.Eq{"p.status": models.PostStatusPublished}}
	if opts.CategoryID != nil {
		cond = append(cond, sq.Eq{"p.category_id": *opts.CategoryID})
	}
	if opts.Query != "" {
		pattern := "%" + opts.Query + "%"
		cond = append(cond, sq.Or{
			sq.ILike{"p.title": pattern},
			sq.ILike{"p.content": pattern},
			sq.ILike{"p.excerpt": pattern},
			sq.ILike{"p.keywords": pattern},
		})
	}
	return cond
}

// ListPublished returns one page of published posts, newest first,
// optionally narrowed by category or search query. Out-of-range page
// numbers clamp to the nearest valid page.
func (s *PostStore) ListPublished(opts ListOptions) (*PostPage, error) {
	where := publishedFilter(opts)

	countSQL, countArgs, err := psql.Select("COUNT(*)").
		From("posts p").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := s.db.QueryRow(countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	totalPages := (total + PageSize - 1) / PageSize
	page := opts.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	listSQL, listArgs, err := psql.Select(postColumns, "c.name", "u.display_name").
		From("posts p").
		LeftJoin("categories c ON c.id = p.category_id").
		LeftJoin("users u ON u.id = p.author_id").
		Where(where).
		OrderBy("p.created_at DESC").
		Limit(PageSize).
		Offset(uint64((page - 1) * PageSize)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.Query(listSQL, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	defer rows.Close()

	result := &PostPage{Number: page, TotalPages: totalPages, TotalCount: total}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		result.Posts = append(result.Posts, *p)
	}
	return result, rows.Err()
}

// List returns all posts regardless of status, newest first. Used by the
// admin posts table.
func (s *PostStore) List() ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT ` + postColumns + `, c.name, u.display_name
		FROM posts p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a post by its UUID regardless of status. Returns
// nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+`, c.name, u.display_name
		FROM posts p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published post by its slug. Used for
// public detail rendering; drafts come back nil like missing posts.
func (s *PostStore) FindPublishedBySlug(slugVal string) (*models.Post, error) {
	row := s.db.QueryRow(`
		SELECT `+postColumns+`, c.name, u.display_name
		FROM posts p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.slug = $1 AND p.status = 'published'
	`, slugVal)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// Create inserts a new post after filling its derived fields. A duplicate
// title produces a duplicate slug and fails with the database's
// uniqueness violation; there is no automatic disambiguation.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	seo.ApplyPostDefaults(p)

	result := &models.Post{}
	err := s.db.QueryRow(`
		INSERT INTO posts (title, slug, author_id, content, excerpt, category_id,
		                   status, featured_image, meta_title, meta_description, keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, title, slug, author_id, content, excerpt, category_id,
		          status, featured_image, meta_title, meta_description,
		          keywords, views_count, created_at, updated_at
	`, p.Title, p.Slug, p.AuthorID, p.Content, p.Excerpt, p.CategoryID,
		p.Status, p.FeaturedImage, p.MetaTitle, p.MetaDescription, p.Keywords,
	).Scan(
		&result.ID, &result.Title, &result.Slug, &result.AuthorID, &result.Content,
		&result.Excerpt, &result.CategoryID, &result.Status, &result.FeaturedImage,
		&result.MetaTitle, &result.MetaDescription, &result.Keywords,
		&result.ViewsCount, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies an existing post. Derived fields are re-filled only
// where still blank; a field with a value keeps it. views_count is never
// written here — IncrementViews owns that column.
func (s *PostStore) Update(p *models.Post) error {
	seo.ApplyPostDefaults(p)

	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, content = $3, excerpt = $4, category_id = $5,
			status = $6, featured_image = $7, meta_title = $8,
			meta_description = $9, keywords = $10, updated_at = NOW()
		WHERE id = $11
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.CategoryID, p.Status,
		p.FeaturedImage, p.MetaTitle, p.MetaDescription, p.Keywords, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post. Its comments go with it (ON DELETE CASCADE).
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter by one in a single atomic update.
// It deliberately touches nothing else: no updated_at, no re-derivation.
// Lost increments under concurrent reads of the same post are tolerable;
// this is analytics, not accounting.
func (s *PostStore) IncrementViews(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE posts SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// SitemapEntry is the slug and last-modified pair the sitemap needs.
type SitemapEntry struct {
	Slug      string
	UpdatedAt time.Time
}

// ListPublishedForSitemap returns every published post's slug and
// last-modified time, newest first.
func (s *PostStore) ListPublishedForSitemap() ([]SitemapEntry, error) {
	rows, err := s.db.Query(`
		SELECT slug, updated_at FROM posts
		WHERE status = 'published'
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list posts for sitemap: %w", err)
	}
	defer rows.Close()

	var items []SitemapEntry
	for rows.Next() {
		var e SitemapEntry
		if err := rows.Scan(&e.Slug, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sitemap entry: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// Count returns the number of posts, optionally restricted to one status.
func (s *PostStore) Count(status models.PostStatus) (int, error) {
	query := psql.Select("COUNT(*)").From("posts")
	if status != "" {
		query = query.Where(sq.Eq{"status": status})
	}
	countSQL, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int
	if err := s.db.QueryRow(countSQL, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}
