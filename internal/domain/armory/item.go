package armory

import (
	"context"

	"github.com/shopspring/decimal"
)

// CatalogItem is a purchasable armory item as the catalog collaborator
// describes it. The core treats the catalog as an opaque lookup: it only
// needs identity, display info, and the authoritative price.
type CatalogItem struct {
	ID       string
	Title    string
	ImageURL string
	Price    decimal.Decimal // major currency units as published by the catalog
}

// PriceMinorUnits returns the item price in minor currency units
func (i CatalogItem) PriceMinorUnits() int64 {
	return i.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Catalog resolves item identifiers against the external product catalog.
// Prices always come from here, never from the client.
type Catalog interface {
	// GetItem resolves one item; returns shared.ErrNotFound for unknown IDs
	GetItem(ctx context.Context, itemID string) (*CatalogItem, error)

	// ListItems returns the current catalog
	ListItems(ctx context.Context) ([]CatalogItem, error)
}
