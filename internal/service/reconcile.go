package service

import (
	"log/slog"

	"github.com/iyhunko/product-catalog/internal/model"
)

// Merge combines an external catalog snapshot with the local rows.
// External order is kept and a local row replaces the external item with the same id.
// Local rows without an external counterpart follow in the order given.
// Items with an unusable id are skipped and only the first occurrence of a duplicate id is kept.
func Merge(items []model.ExternalItem, rows []*model.StoredProduct, stock func() int) []model.Product {
	local := make(map[int64]*model.StoredProduct, len(rows))
	for _, row := range rows {
		local[row.ID] = row
	}

	seen := make(map[int64]struct{}, len(items))
	products := make([]model.Product, 0, len(items)+len(rows))
	for _, item := range items {
		id, ok := item.ID.Int64()
		if !ok {
			slog.Warn("Skipping external item with invalid id", slog.String("id", string(item.ID)), slog.String("title", item.Title))
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if row, ok := local[id]; ok {
			products = append(products, model.FromStored(row))
			continue
		}
		products = append(products, model.FromExternal(id, item, stock()))
	}

	for _, row := range rows {
		if _, matched := seen[row.ID]; matched {
			continue
		}
		seen[row.ID] = struct{}{}
		products = append(products, model.FromStored(row))
	}

	return products
}
