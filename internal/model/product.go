package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origin tells which source owns a product's identity and content.
type Origin string

const (
	// OriginLocal marks a product persisted by the local store.
	OriginLocal Origin = "local"
	// OriginExternal marks a product that only exists in the external catalog.
	OriginExternal Origin = "external"
)

// StoredProduct is a product row persisted in the local store.
type StoredProduct struct {
	ID          int64
	Title       string
	Description string
	Category    string
	ImageURL    string
	Price       decimal.Decimal
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InitMeta sets the creation and update timestamps if they are not set yet.
func (p *StoredProduct) InitMeta() {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// Product is the merged catalog view handed to clients.
// Values are built per request and never written back as-is.
type Product struct {
	ID          int64
	Title       string
	Description string
	Category    string
	ImageURL    string
	Price       decimal.Decimal
	Stock       int
	Origin      Origin
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

// IsLocal reports whether the product is owned by the local store.
func (p Product) IsLocal() bool {
	return p.Origin == OriginLocal
}

// FromStored maps a persisted row to a local product, copying every field verbatim.
func FromStored(row *StoredProduct) Product {
	createdAt := row.CreatedAt
	updatedAt := row.UpdatedAt
	return Product{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Category:    row.Category,
		ImageURL:    row.ImageURL,
		Price:       row.Price,
		Stock:       row.Stock,
		Origin:      OriginLocal,
		CreatedAt:   &createdAt,
		UpdatedAt:   &updatedAt,
	}
}

// FromExternal maps an external catalog item to an external-only product with the given stock.
// The caller must have checked that the item id is a valid positive integer.
func FromExternal(id int64, item ExternalItem, stock int) Product {
	return Product{
		ID:          id,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		ImageURL:    item.Image,
		Price:       decimal.NewFromFloat(item.Price),
		Stock:       stock,
		Origin:      OriginExternal,
	}
}

// Promote builds the local row for an external item, taking ownership of its descriptive fields.
func Promote(id int64, item ExternalItem, stock int) *StoredProduct {
	return &StoredProduct{
		ID:          id,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		ImageURL:    item.Image,
		Price:       decimal.NewFromFloat(item.Price),
		Stock:       stock,
	}
}
