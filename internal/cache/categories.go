// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// categories.go caches the full category list under a single fixed key.
// Every public page renders the category navigation, so this saves a
// full-table scan per request. There is no invalidation on category
// writes; the list may be stale for up to the TTL, which is acceptable
// for a table that changes a few times a year. Concurrent misses may
// populate twice; the value is idempotent so last writer wins.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"blogpress/internal/models"
)

const (
	// categoriesKey is the fixed cache key for the materialized list.
	categoriesKey = "categories:all"

	// DefaultCategoryTTL bounds how stale the navigation can get.
	DefaultCategoryTTL = time.Hour
)

// CategoryLister is the slice of the persistence layer the cache needs.
type CategoryLister interface {
	List() ([]models.Category, error)
}

// Categories serves the category list from cache, falling back to the
// database on miss and repopulating the cache with the result.
type Categories struct {
	store  Store
	lister CategoryLister
	ttl    time.Duration
}

// NewCategories creates a category cache over the given backing store
// and database lister. A zero ttl selects DefaultCategoryTTL.
func NewCategories(store Store, lister CategoryLister, ttl time.Duration) *Categories {
	if ttl == 0 {
		ttl = DefaultCategoryTTL
	}
	return &Categories{store: store, lister: lister, ttl: ttl}
}

// Get returns the cached category list, querying the database and
// repopulating the cache on miss. Cache failures and corrupt payloads
// are treated as misses; only a database failure is returned as an error.
func (c *Categories) Get(ctx context.Context) ([]models.Category, error) {
	if payload, ok := c.store.Get(ctx, categoriesKey); ok {
		var cats []models.Category
		if err := json.Unmarshal(payload, &cats); err == nil {
			return cats, nil
		}
		slog.Warn("category cache payload corrupt, refetching")
	}

	cats, err := c.lister.List()
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(cats); err == nil {
		c.store.Set(ctx, categoriesKey, payload, c.ttl)
	}
	return cats, nil
}
