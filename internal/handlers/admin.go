// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/render"
	"blogpress/internal/store"
)

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer      *render.Renderer
	postStore     *store.PostStore
	categoryStore *store.CategoryStore
	commentStore  *store.CommentStore
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, postStore *store.PostStore, categoryStore *store.CategoryStore, commentStore *store.CommentStore) *Admin {
	return &Admin{
		renderer:      renderer,
		postStore:     postStore,
		categoryStore: categoryStore,
		commentStore:  commentStore,
	}
}

// Dashboard renders the admin dashboard with content and moderation stats.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	published, _ := a.postStore.Count(models.PostStatusPublished)
	drafts, _ := a.postStore.Count(models.PostStatusDraft)
	categories, _ := a.categoryStore.Count()
	pending, _ := a.commentStore.CountPending()

	a.renderer.Page(w, r, "admin/dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"PublishedCount":  published,
			"DraftCount":      drafts,
			"CategoryCount":   categories,
			"PendingComments": pending,
		},
	})
}

// --- Posts ---

// PostsList renders the posts management table.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	posts, err := a.postStore.List()
	if err != nil {
		slog.Error("list posts failed", "error", err)
	}

	a.renderer.Page(w, r, "admin/posts_list", &render.PageData{
		Title:   "Posts",
		Section: "posts",
		Data:    map[string]any{"Items": posts},
	})
}

// PostNew renders the new post form.
func (a *Admin) PostNew(w http.ResponseWriter, r *http.Request) {
	a.renderPostForm(w, r, &models.Post{Status: models.PostStatusDraft}, true, "")
}

// PostCreate handles the new post form submission. The author is the
// signed-in user; slug and SEO fields left blank are derived at save.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	post := &models.Post{AuthorID: sess.UserID}
	a.fillPostForm(post, r)

	if msg := validatePost(post); msg != "" {
		a.renderPostForm(w, r, post, true, msg)
		return
	}

	created, err := a.postStore.Create(post)
	if err != nil {
		if store.IsUniqueViolation(err) {
			slog.Error("post slug conflict", "error", err, "slug", post.Slug)
		} else {
			slog.Error("create post failed", "error", err)
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render.SetFlash(w, "success", "Post created.")
	http.Redirect(w, r, "/admin/posts/"+created.ID.String(), http.StatusSeeOther)
}

// PostEdit renders the edit form for an existing post.
func (a *Admin) PostEdit(w http.ResponseWriter, r *http.Request) {
	post := a.findPost(w, r)
	if post == nil {
		return
	}
	a.renderPostForm(w, r, post, false, "")
}

// PostUpdate handles the edit post form submission.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	post := a.findPost(w, r)
	if post == nil {
		return
	}

	a.fillPostForm(post, r)

	if msg := validatePost(post); msg != "" {
		a.renderPostForm(w, r, post, false, msg)
		return
	}

	if err := a.postStore.Update(post); err != nil {
		if store.IsUniqueViolation(err) {
			slog.Error("post slug conflict", "error", err, "slug", post.Slug)
		} else {
			slog.Error("update post failed", "error", err)
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render.SetFlash(w, "success", "Post saved.")
	http.Redirect(w, r, "/admin/posts/"+post.ID.String(), http.StatusSeeOther)
}

// PostDelete removes a post and, through the cascade, its comments.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := a.postStore.Delete(id); err != nil {
		slog.Error("delete post failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render.SetFlash(w, "success", "Post deleted.")
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

// fillPostForm copies the submitted form values onto the post. Blank SEO
// fields stay blank here; derivation happens in the store at save time.
func (a *Admin) fillPostForm(post *models.Post, r *http.Request) {
	post.Title = strings.TrimSpace(r.FormValue("title"))
	post.Slug = strings.TrimSpace(r.FormValue("slug"))
	post.Content = r.FormValue("content")
	post.Excerpt = strings.TrimSpace(r.FormValue("excerpt"))
	post.FeaturedImage = strings.TrimSpace(r.FormValue("featured_image"))
	post.MetaTitle = strings.TrimSpace(r.FormValue("meta_title"))
	post.MetaDescription = strings.TrimSpace(r.FormValue("meta_description"))
	post.Keywords = strings.TrimSpace(r.FormValue("keywords"))

	post.Status = models.PostStatusDraft
	if r.FormValue("status") == string(models.PostStatusPublished) {
		post.Status = models.PostStatusPublished
	}

	post.CategoryID = nil
	if raw := r.FormValue("category_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			post.CategoryID = &id
		}
	}
}

// renderPostForm renders the post editor with the category dropdown.
func (a *Admin) renderPostForm(w http.ResponseWriter, r *http.Request, post *models.Post, isNew bool, errMsg string) {
	categories, err := a.categoryStore.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	action := "/admin/posts"
	if !isNew {
		action = "/admin/posts/" + post.ID.String()
	}

	a.renderer.Page(w, r, "admin/post_form", &render.PageData{
		Title:   "Post",
		Section: "posts",
		Data: map[string]any{
			"Post":       post,
			"Categories": categories,
			"IsNew":      isNew,
			"Action":     action,
			"Error":      errMsg,
		},
	})
}

// findPost resolves the {id} route parameter, handling 404s itself.
func (a *Admin) findPost(w http.ResponseWriter, r *http.Request) *models.Post {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil
	}

	post, err := a.postStore.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if post == nil {
		http.NotFound(w, r)
		return nil
	}
	return post
}

// --- Categories ---

// CategoriesList renders the category management table.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categoryStore.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}

	a.renderer.Page(w, r, "admin/categories_list", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Data:    map[string]any{"Items": categories},
	})
}

// CategoryNew renders the new category form.
func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	a.renderCategoryForm(w, r, &models.Category{}, true, "")
}

// CategoryCreate handles the new category form submission.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	category := &models.Category{}
	fillCategoryForm(category, r)

	if category.Name == "" {
		a.renderCategoryForm(w, r, category, true, "Name is required.")
		return
	}

	if _, err := a.categoryStore.Create(category); err != nil {
		if store.IsUniqueViolation(err) {
			slog.Error("category slug conflict", "error", err, "slug", category.Slug)
		} else {
			slog.Error("create category failed", "error", err)
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render.SetFlash(w, "success", "Category created.")
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryEdit renders the edit form for an existing category.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	category := a.findCategory(w, r)
	if category == nil {
		return
	}
	a.renderCategoryForm(w, r, category, false, "")
}

// CategoryUpdate handles the edit category form submission.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	category := a.findCategory(w, r)
	if category == nil {
		return
	}

	fillCategoryForm(category, r)

	if category.Name == "" {
		a.renderCategoryForm(w, r, category, false, "Name is required.")
		return
	}

	if err := a.categoryStore.Update(category); err != nil {
		slog.Error("update category failed", "error", err, "id", category.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render.SetFlash(w, "success", "Category saved.")
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryDelete removes a category. Its posts keep existing with their
// category cleared.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := a.categoryStore.Delete(id); err != nil {
		slog.Error("delete category failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render.SetFlash(w, "success", "Category deleted. Its posts are now uncategorized.")
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func fillCategoryForm(category *models.Category, r *http.Request) {
	category.Name = strings.TrimSpace(r.FormValue("name"))
	category.Slug = strings.TrimSpace(r.FormValue("slug"))
	category.Description = strings.TrimSpace(r.FormValue("description"))
	category.MetaDescription = strings.TrimSpace(r.FormValue("meta_description"))
}

func (a *Admin) renderCategoryForm(w http.ResponseWriter, r *http.Request, category *models.Category, isNew bool, errMsg string) {
	action := "/admin/categories"
	if !isNew {
		action = "/admin/categories/" + category.ID.String()
	}

	a.renderer.Page(w, r, "admin/category_form", &render.PageData{
		Title:   "Category",
		Section: "categories",
		Data: map[string]any{
			"Category": category,
			"IsNew":    isNew,
			"Action":   action,
			"Error":    errMsg,
		},
	})
}

func (a *Admin) findCategory(w http.ResponseWriter, r *http.Request) *models.Category {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil
	}

	category, err := a.categoryStore.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	if category == nil {
		http.NotFound(w, r)
		return nil
	}
	return category
}

// --- Comment moderation ---

// CommentsList renders the moderation queue of unapproved comments.
func (a *Admin) CommentsList(w http.ResponseWriter, r *http.Request) {
	comments, err := a.commentStore.ListPending()
	if err != nil {
		slog.Error("list pending comments failed", "error", err)
	}

	a.renderer.Page(w, r, "admin/comments_list", &render.PageData{
		Title:   "Comments",
		Section: "comments",
		Data:    map[string]any{"Items": comments},
	})
}

// CommentsApprove activates the selected comments in one bulk operation,
// making them visible on their posts.
func (a *Admin) CommentsApprove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var ids []uuid.UUID
	for _, raw := range r.PostForm["id"] {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}

	approved, err := a.commentStore.Approve(ids)
	if err != nil {
		slog.Error("approve comments failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if approved > 0 {
		render.SetFlash(w, "success", "Approved "+strconv.Itoa(approved)+" comment(s).")
	}
	http.Redirect(w, r, "/admin/comments", http.StatusSeeOther)
}

// validatePost checks the post editor inputs and returns the first
// problem found, or "" when the post can be saved.
func validatePost(post *models.Post) string {
	if post.Title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(post.Title) > 200 {
		return "Title is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(post.Slug) > 200 {
		return "Slug is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(post.Excerpt) > 300 {
		return "Excerpt is too long (max 300 characters)."
	}
	return ""
}
