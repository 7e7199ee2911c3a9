package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

// fakeStore is an in-memory Store that records activity and can be put
// into a failing state where every Get misses and every Set is dropped.
type fakeStore struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	broken bool
	gets   int
	sets   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, bool) {
	f.gets++
	if f.broken {
		return nil, false
	}
	val, ok := f.data[key]
	return val, ok
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	f.sets++
	if f.broken {
		return
	}
	f.data[key] = value
	f.ttls[key] = ttl
}

// fakeLister counts how many times the database would have been hit.
type fakeLister struct {
	categories []models.Category
	err        error
	calls      int
}

func (f *fakeLister) List() ([]models.Category, error) {
	f.calls++
	return f.categories, f.err
}

func sampleCategories() []models.Category {
	return []models.Category{
		{ID: uuid.New(), Name: "Go", Slug: "go", PostCount: 4},
		{ID: uuid.New(), Name: "Databases", Slug: "databases", PostCount: 2},
	}
}

func TestCategories_MissThenHit(t *testing.T) {
	store := newFakeStore()
	lister := &fakeLister{categories: sampleCategories()}
	cache := NewCategories(store, lister, time.Hour)
	ctx := context.Background()

	// First call misses and goes to the database.
	first, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("got %d categories, want 2", len(first))
	}
	if lister.calls != 1 {
		t.Errorf("lister called %d times, want 1", lister.calls)
	}
	if store.sets != 1 {
		t.Errorf("store.Set called %d times, want 1", store.sets)
	}
	if ttl := store.ttls[categoriesKey]; ttl != time.Hour {
		t.Errorf("cached with TTL %v, want %v", ttl, time.Hour)
	}

	// Second call is served from cache without touching the database.
	second, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if lister.calls != 1 {
		t.Errorf("lister called %d times after hit, want still 1", lister.calls)
	}
	if len(second) != 2 || second[0].Slug != first[0].Slug {
		t.Errorf("cached result differs from original: %+v vs %+v", second, first)
	}
	if second[0].PostCount != 4 {
		t.Errorf("PostCount = %d after cache round-trip, want 4", second[0].PostCount)
	}
}

func TestCategories_BrokenCacheFallsBackToDatabase(t *testing.T) {
	store := newFakeStore()
	store.broken = true
	lister := &fakeLister{categories: sampleCategories()}
	cache := NewCategories(store, lister, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cats, err := cache.Get(ctx)
		if err != nil {
			t.Fatalf("Get returned error with broken cache: %v", err)
		}
		if len(cats) != 2 {
			t.Fatalf("got %d categories, want 2", len(cats))
		}
	}

	// Every request goes to the database while the cache is down.
	if lister.calls != 3 {
		t.Errorf("lister called %d times, want 3", lister.calls)
	}
}

func TestCategories_CorruptPayloadRefetches(t *testing.T) {
	store := newFakeStore()
	store.data[categoriesKey] = []byte("{not json")
	lister := &fakeLister{categories: sampleCategories()}
	cache := NewCategories(store, lister, time.Hour)

	cats, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("got %d categories, want 2", len(cats))
	}
	if lister.calls != 1 {
		t.Errorf("lister called %d times, want 1", lister.calls)
	}

	// The corrupt entry is replaced with a valid one.
	if store.sets != 1 {
		t.Errorf("store.Set called %d times, want 1", store.sets)
	}
}

func TestCategories_DatabaseErrorIsReturned(t *testing.T) {
	store := newFakeStore()
	dbErr := errors.New("connection refused")
	lister := &fakeLister{err: dbErr}
	cache := NewCategories(store, lister, time.Hour)

	_, err := cache.Get(context.Background())
	if !errors.Is(err, dbErr) {
		t.Fatalf("Get error = %v, want %v", err, dbErr)
	}
	if store.sets != 0 {
		t.Errorf("store.Set called %d times after DB error, want 0", store.sets)
	}
}

func TestCategories_EmptyListIsCached(t *testing.T) {
	store := newFakeStore()
	lister := &fakeLister{}
	cache := NewCategories(store, lister, time.Hour)
	ctx := context.Background()

	cats, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(cats) != 0 {
		t.Fatalf("got %d categories, want 0", len(cats))
	}

	// The empty result is a legitimate value, so a second call hits the
	// cache rather than the database.
	if _, err := cache.Get(ctx); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if lister.calls != 1 {
		t.Errorf("lister called %d times, want 1", lister.calls)
	}
}

func TestNewCategories_ZeroTTLUsesDefault(t *testing.T) {
	store := newFakeStore()
	lister := &fakeLister{categories: sampleCategories()}
	cache := NewCategories(store, lister, 0)

	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ttl := store.ttls[categoriesKey]; ttl != DefaultCategoryTTL {
		t.Errorf("cached with TTL %v, want default %v", ttl, DefaultCategoryTTL)
	}
}
