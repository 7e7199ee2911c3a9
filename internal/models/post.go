// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Post is a blog article. The slug, meta title, and meta description are
// filled in automatically at save time when the author leaves them blank;
// once set they are never recomputed.
type Post struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	AuthorID      uuid.UUID  `json:"author_id"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	Status        PostStatus `json:"status"`
	FeaturedImage string     `json:"featured_image"`

	// SEO fields. Auto-derived on save when blank.
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	Keywords        string `json:"keywords"`

	ViewsCount int       `json:"views_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Virtual fields populated by store list queries.
	CategoryName string `json:"category_name,omitempty"`
	AuthorName   string `json:"author_name,omitempty"`
}

// IsPublished returns true if the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}
