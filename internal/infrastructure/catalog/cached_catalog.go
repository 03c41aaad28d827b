package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/armory/backend/internal/domain/armory"
	"github.com/armory/backend/internal/domain/shared"
)

// CachedCatalog wraps a Catalog with an in-process TTL cache. Checkout
// resolves every cart item against the catalog, so the listing is cached
// as a whole and individual lookups are served from it.
type CachedCatalog struct {
	inner armory.Catalog
	ttl   time.Duration

	mu        sync.RWMutex
	items     map[string]armory.CatalogItem
	listed    []armory.CatalogItem
	expiresAt time.Time
}

// NewCachedCatalog creates a caching wrapper around the given catalog
func NewCachedCatalog(inner armory.Catalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		inner: inner,
		ttl:   ttl,
		items: make(map[string]armory.CatalogItem),
	}
}

// GetItem resolves one item, refreshing the cached listing when stale
func (c *CachedCatalog) GetItem(ctx context.Context, itemID string) (*armory.CatalogItem, error) {
	c.mu.RLock()
	if time.Now().Before(c.expiresAt) {
		item, ok := c.items[itemID]
		c.mu.RUnlock()
		if ok {
			return &item, nil
		}
		return nil, shared.ErrNotFound
	}
	c.mu.RUnlock()

	if _, err := c.refresh(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[itemID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &item, nil
}

// ListItems returns the current catalog, served from cache when fresh
func (c *CachedCatalog) ListItems(ctx context.Context) ([]armory.CatalogItem, error) {
	c.mu.RLock()
	if time.Now().Before(c.expiresAt) {
		listed := c.listed
		c.mu.RUnlock()
		return listed, nil
	}
	c.mu.RUnlock()

	return c.refresh(ctx)
}

func (c *CachedCatalog) refresh(ctx context.Context) ([]armory.CatalogItem, error) {
	listed, err := c.inner.ListItems(ctx)
	if err != nil {
		// A stale catalog beats no catalog while the upstream flaps
		c.mu.RLock()
		defer c.mu.RUnlock()
		if len(c.listed) > 0 {
			return c.listed, nil
		}
		return nil, err
	}

	items := make(map[string]armory.CatalogItem, len(listed))
	for _, item := range listed {
		items[item.ID] = item
	}

	c.mu.Lock()
	c.items = items
	c.listed = listed
	c.expiresAt = time.Now().Add(c.ttl)
	c.mu.Unlock()

	return listed, nil
}
