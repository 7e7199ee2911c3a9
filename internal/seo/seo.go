// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seo derives the search-engine metadata that authors usually
// leave blank: slugs, meta titles, and meta descriptions. All derivations
// are pure functions applied before persistence. A derivation only fills
// a blank target field; a field the author set (or a previous save
// derived) is never recomputed, even if its source changes later.
package seo

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"blogpress/internal/models"
	"blogpress/internal/slug"
)

// Field limits, matching the database columns. A source longer than the
// limit is cut at limit-3 runes and suffixed with "...".
const (
	MetaTitleMax       = 70
	MetaDescriptionMax = 160
)

// stripPolicy removes every HTML tag, leaving only text content.
var stripPolicy = bluemonday.StrictPolicy()

// StripTags returns the text content of markup, with entities decoded.
func StripTags(s string) string {
	return html.UnescapeString(stripPolicy.Sanitize(s))
}

// Truncate shortens s to fit max runes, replacing the tail with "..."
// when the original is too long. Strings within the limit come back
// verbatim.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// ApplyCategoryDefaults fills the blank derived fields of a category.
// Idempotent: a second application to the same category changes nothing.
func ApplyCategoryDefaults(c *models.Category) {
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}
	if c.MetaDescription == "" && c.Description != "" {
		c.MetaDescription = Truncate(c.Description, MetaDescriptionMax)
	}
}

// ApplyPostDefaults fills the blank derived fields of a post: the slug
// from the title, the meta title from the title, and the meta description
// from the excerpt or, failing that, the tag-stripped content.
func ApplyPostDefaults(p *models.Post) {
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Title)
	}
	if p.MetaTitle == "" {
		p.MetaTitle = Truncate(p.Title, MetaTitleMax)
	}
	if p.MetaDescription == "" {
		desc := p.Excerpt
		if desc == "" {
			desc = StripTags(p.Content)
		}
		p.MetaDescription = Truncate(strings.TrimSpace(desc), MetaDescriptionMax)
	}
}

// wordsPerMinute is the assumed reading speed for the read-time estimate.
const wordsPerMinute = 200

// ReadTime estimates reading time in minutes for the given content,
// rounding up and never reporting less than one minute. Computed on
// demand; never persisted.
func ReadTime(content string) int {
	words := len(strings.Fields(StripTags(content)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
