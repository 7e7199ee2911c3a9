// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for blogpress. Handlers
// are grouped by concern (public, admin, auth) and receive their
// dependencies through narrow interfaces so tests can substitute
// in-memory fakes for the database and cache.
package handlers

import (
	"context"
	"encoding/xml"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogpress/internal/markdown"
	"blogpress/internal/models"
	"blogpress/internal/render"
	"blogpress/internal/seo"
	"blogpress/internal/store"
)

// PostReader is the slice of the post store the public site needs.
type PostReader interface {
	ListPublished(opts store.ListOptions) (*store.PostPage, error)
	FindPublishedBySlug(slug string) (*models.Post, error)
	IncrementViews(id uuid.UUID) error
	ListPublishedForSitemap() ([]store.SitemapEntry, error)
}

// CategoryReader resolves category slugs for the category listing page.
type CategoryReader interface {
	FindBySlug(slug string) (*models.Category, error)
}

// CategoryNav supplies the cached category list rendered in the
// navigation of every public page.
type CategoryNav interface {
	Get(ctx context.Context) ([]models.Category, error)
}

// CommentAccess is the slice of the comment store the public site needs.
type CommentAccess interface {
	ListActiveByPost(postID uuid.UUID) ([]models.Comment, error)
	Create(postID uuid.UUID, name, email, content string) (*models.Comment, error)
}

// Public groups the handlers for the reader-facing site.
type Public struct {
	renderer   *render.Renderer
	posts      PostReader
	categories CategoryReader
	nav        CategoryNav
	comments   CommentAccess
	baseURL    string
}

// NewPublic creates a new Public handler group. baseURL is the absolute
// site root used in the sitemap and robots.txt.
func NewPublic(renderer *render.Renderer, posts PostReader, categories CategoryReader, nav CategoryNav, comments CommentAccess, baseURL string) *Public {
	return &Public{
		renderer:   renderer,
		posts:      posts,
		categories: categories,
		nav:        nav,
		comments:   comments,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// navCategories returns the cached category list, falling back to an
// empty navigation when even the database is down. A broken sidebar is
// not worth failing the whole page.
func (p *Public) navCategories(ctx context.Context) []models.Category {
	cats, err := p.nav.Get(ctx)
	if err != nil {
		slog.Error("load categories failed", "error", err)
		return nil
	}
	return cats
}

// pageParam parses the 1-based ?page= query parameter.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Home renders the paginated list of published posts.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	page, err := p.posts.ListPublished(store.ListOptions{Page: pageParam(r)})
	if err != nil {
		slog.Error("list published posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderer.Page(w, r, "site/home", &render.PageData{
		Title:   "Home",
		Section: "home",
		Data: map[string]any{
			"Page":       page,
			"Categories": p.navCategories(r.Context()),
		},
	})
}

// Category renders the published posts of one category.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	category, err := p.categories.FindBySlug(slugParam)
	if err != nil {
		slog.Error("find category failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.NotFound(w, r)
		return
	}

	page, err := p.posts.ListPublished(store.ListOptions{
		CategoryID: &category.ID,
		Page:       pageParam(r),
	})
	if err != nil {
		slog.Error("list category posts failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderer.Page(w, r, "site/home", &render.PageData{
		Title:   category.Name,
		Section: category.Slug,
		Data: map[string]any{
			"Category":        category,
			"Page":            page,
			"Categories":      p.navCategories(r.Context()),
			"MetaDescription": category.MetaDescription,
		},
	})
}

// Search renders posts matching the q query parameter. The match is a
// case-insensitive substring test against title, content, excerpt, and
// keywords.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	page := &store.PostPage{Number: 1}
	if query != "" {
		var err error
		page, err = p.posts.ListPublished(store.ListOptions{
			Query: query,
			Page:  pageParam(r),
		})
		if err != nil {
			slog.Error("search posts failed", "error", err, "query", query)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	p.renderer.Page(w, r, "site/search", &render.PageData{
		Title:   "Search",
		Section: "search",
		Data: map[string]any{
			"Query":      query,
			"Page":       page,
			"Categories": p.navCategories(r.Context()),
		},
	})
}

// About renders the static about page.
func (p *Public) About(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "site/about", &render.PageData{
		Title:   "About",
		Section: "about",
		Data: map[string]any{
			"Categories": p.navCategories(r.Context()),
		},
	})
}

// PostDetail renders a published post with its approved comments and
// comment form. A successful read bumps the view counter.
func (p *Public) PostDetail(w http.ResponseWriter, r *http.Request) {
	post := p.findPost(w, r)
	if post == nil {
		return
	}

	if err := p.posts.IncrementViews(post.ID); err != nil {
		// The reader still gets the page; only the counter is lost.
		slog.Warn("increment views failed", "error", err, "slug", post.Slug)
	} else {
		post.ViewsCount++
	}

	p.renderPost(w, r, post, nil)
}

// CommentSubmit handles the comment form on the post detail page. A valid
// submission stores an inactive comment and redirects back to the post so
// a refresh cannot resubmit; an invalid one re-renders the page with the
// entered values and an inline error, persisting nothing.
func (p *Public) CommentSubmit(w http.ResponseWriter, r *http.Request) {
	post := p.findPost(w, r)
	if post == nil {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	content := strings.TrimSpace(r.FormValue("content"))

	if name == "" || email == "" || content == "" {
		p.renderPost(w, r, post, map[string]any{
			"CommentError":   "Name, email, and comment are all required.",
			"CommentName":    name,
			"CommentEmail":   email,
			"CommentContent": content,
		})
		return
	}

	if _, err := p.comments.Create(post.ID, name, email, content); err != nil {
		slog.Error("create comment failed", "error", err, "slug", post.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render.SetFlash(w, "success", "Your comment has been added! It will appear after moderation.")
	http.Redirect(w, r, "/post/"+post.Slug, http.StatusSeeOther)
}

// findPost resolves the {slug} route parameter to a published post,
// writing the 404 or 500 response itself when there is nothing to render.
func (p *Public) findPost(w http.ResponseWriter, r *http.Request) *models.Post {
	slugParam := chi.URLParam(r, "slug")

	post, err := p.posts.FindPublishedBySlug(slugParam)
	if err != nil {
		slog.Error("find post failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if post == nil {
		http.NotFound(w, r)
		return nil
	}
	return post
}

// renderPost renders the post detail page. extra carries comment form
// state on a failed submission.
func (p *Public) renderPost(w http.ResponseWriter, r *http.Request, post *models.Post, extra map[string]any) {
	comments, err := p.comments.ListActiveByPost(post.ID)
	if err != nil {
		slog.Error("list comments failed", "error", err, "slug", post.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	contentHTML, err := markdown.ToHTML(post.Content)
	if err != nil {
		slog.Error("render post content failed", "error", err, "slug", post.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Post":            post,
		"Comments":        comments,
		"ContentHTML":     template.HTML(contentHTML),
		"ReadTime":        seo.ReadTime(post.Content),
		"Categories":      p.navCategories(r.Context()),
		"MetaTitle":       post.MetaTitle,
		"MetaDescription": post.MetaDescription,
		"Keywords":        post.Keywords,
	}
	for k, v := range extra {
		data[k] = v
	}

	p.renderer.Page(w, r, "site/post_detail", &render.PageData{
		Title:   post.Title,
		Section: "",
		Data:    data,
	})
}

// sitemapURL is one <url> entry in the sitemap.
type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// sitemapSet is the <urlset> root of the sitemap document.
type sitemapSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap serves /sitemap.xml with the static pages, categories, and
// published posts.
func (p *Public) Sitemap(w http.ResponseWriter, r *http.Request) {
	set := sitemapSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: p.baseURL + "/", ChangeFreq: "weekly", Priority: "0.8"},
			{Loc: p.baseURL + "/about", ChangeFreq: "monthly", Priority: "0.5"},
		},
	}

	for _, c := range p.navCategories(r.Context()) {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        p.baseURL + "/category/" + c.Slug,
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}

	entries, err := p.posts.ListPublishedForSitemap()
	if err != nil {
		slog.Error("sitemap post list failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for _, e := range entries {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        p.baseURL + "/post/" + e.Slug,
			LastMod:    e.UpdatedAt.Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   "0.9",
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		slog.Error("sitemap encode failed", "error", err)
	}
}

// Robots serves /robots.txt, allowing crawlers and pointing at the sitemap.
func (p *Public) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", p.baseURL)
}
