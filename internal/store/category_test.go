// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

func TestCategoryStoreCreateDerivesFields(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	t.Cleanup(func() { cleanCategories(t, db, "cloud-devops-test") })

	created, err := s.Create(&models.Category{
		Name:        "Cloud DevOps Test",
		Description: "Infrastructure, pipelines, and everything in between.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.Slug != "cloud-devops-test" {
		t.Errorf("slug: got %q, want %q", created.Slug, "cloud-devops-test")
	}
	if created.MetaDescription != "Infrastructure, pipelines, and everything in between." {
		t.Errorf("meta description not derived from description: %q", created.MetaDescription)
	}
}

func TestCategoryStoreCreateKeepsExplicitSlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	t.Cleanup(func() { cleanCategories(t, db, "my-own-slug") })

	created, err := s.Create(&models.Category{
		Name: "Totally Different Name",
		Slug: "my-own-slug",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Slug != "my-own-slug" {
		t.Errorf("slug: got %q, want explicit %q", created.Slug, "my-own-slug")
	}
}

func TestCategoryStoreDuplicateSlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	t.Cleanup(func() { cleanCategories(t, db, "duplicate-slug-test") })

	if _, err := s.Create(&models.Category{Name: "Duplicate Slug Test"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Same name derives the same slug; the unique index rejects it.
	_, err := s.Create(&models.Category{Name: "Duplicate Slug Test"})
	if err == nil {
		t.Fatal("expected error for duplicate slug")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got: %v", err)
	}
}

func TestCategoryStoreFindBySlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	t.Cleanup(func() { cleanCategories(t, db, "findable-category") })

	// Not found case.
	cat, err := s.FindBySlug("findable-category")
	if err != nil {
		t.Fatalf("FindBySlug (not found): %v", err)
	}
	if cat != nil {
		t.Fatal("expected nil category when not found")
	}

	created, err := s.Create(&models.Category{Name: "Findable Category"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := s.FindBySlug("findable-category")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected category %v, got %+v", created.ID, found)
	}
}

func TestCategoryStoreUpdateDoesNotRederiveSlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	t.Cleanup(func() { cleanCategories(t, db, "original-name") })

	created, err := s.Create(&models.Category{Name: "Original Name"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Renaming without clearing the slug keeps the old URL alive.
	created.Name = "Renamed Completely"
	if err := s.Update(created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reloaded, err := s.FindByID(created.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("FindByID: %v", err)
	}
	if reloaded.Name != "Renamed Completely" {
		t.Errorf("name: got %q, want %q", reloaded.Name, "Renamed Completely")
	}
	if reloaded.Slug != "original-name" {
		t.Errorf("slug: got %q, want unchanged %q", reloaded.Slug, "original-name")
	}
}

func TestCategoryStoreListCountsOnlyPublishedPosts(t *testing.T) {
	db := testDB(t)
	categories := NewCategoryStore(db)
	posts := NewPostStore(db)
	author := testAuthor(t, db, "test-catcount@store-test.local")

	t.Cleanup(func() {
		cleanPosts(t, db, "catcount-published", "catcount-draft")
		cleanCategories(t, db, "count-me")
	})

	cat, err := categories.Create(&models.Category{Name: "Count Me"})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	mustCreatePost(t, posts, &models.Post{
		Title:      "Catcount Published",
		AuthorID:   author.ID,
		Content:    "body",
		CategoryID: ptrTo(cat.ID),
		Status:     models.PostStatusPublished,
	})
	mustCreatePost(t, posts, &models.Post{
		Title:      "Catcount Draft",
		AuthorID:   author.ID,
		Content:    "body",
		CategoryID: ptrTo(cat.ID),
		Status:     models.PostStatusDraft,
	})

	list, err := categories.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var found *models.Category
	for i := range list {
		if list[i].ID == cat.ID {
			found = &list[i]
			break
		}
	}
	if found == nil {
		t.Fatal("created category missing from List")
	}
	if found.PostCount != 1 {
		t.Errorf("post count: got %d, want 1 (drafts excluded)", found.PostCount)
	}
}

func TestCategoryStoreDeleteDetachesPosts(t *testing.T) {
	db := testDB(t)
	categories := NewCategoryStore(db)
	posts := NewPostStore(db)
	author := testAuthor(t, db, "test-catdelete@store-test.local")

	t.Cleanup(func() {
		cleanPosts(t, db, "survives-category-delete")
		cleanCategories(t, db, "doomed-category")
	})

	cat, err := categories.Create(&models.Category{Name: "Doomed Category"})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	post := mustCreatePost(t, posts, &models.Post{
		Title:      "Survives Category Delete",
		AuthorID:   author.ID,
		Content:    "body",
		CategoryID: ptrTo(cat.ID),
		Status:     models.PostStatusPublished,
	})

	if err := categories.Delete(cat.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	reloaded, err := posts.FindByID(post.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("FindByID after category delete: %v", err)
	}
	if reloaded.CategoryID != nil {
		t.Errorf("category_id: got %v, want NULL", *reloaded.CategoryID)
	}
}
