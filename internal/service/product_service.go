package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/iyhunko/product-catalog/internal/catalog"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/sqs"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// CatalogClient reads the external product catalog.
// FetchByID returns catalog.ErrNotFound or catalog.ErrUnavailable on failure.
type CatalogClient interface {
	FetchAll(ctx context.Context) ([]model.ExternalItem, error)
	FetchByID(ctx context.Context, id int64) (*model.ExternalItem, error)
}

// ProductService merges the local store with the external catalog.
type ProductService struct {
	store     repository.ProductStore
	tx        repository.Transactor
	catalog   CatalogClient
	allocator *IDAllocator
	stock     *StockSynthesizer
}

// Option customizes a ProductService.
type Option func(*ProductService)

// WithRand sets the random source shared by stock synthesis and fallback ids.
func WithRand(rnd RandSource) Option {
	return func(ps *ProductService) {
		if rnd == nil {
			return
		}
		ps.stock = NewStockSynthesizer(rnd)
		ps.allocator.rnd = rnd
	}
}

// WithClock sets the clock used for fallback ids.
func WithClock(now func() time.Time) Option {
	return func(ps *ProductService) {
		ps.allocator.now = now
	}
}

// WithStrictAllocation makes Create fail when the external id bound cannot be read.
func WithStrictAllocation(strict bool) Option {
	return func(ps *ProductService) {
		ps.allocator.strict = strict
	}
}

// NewProductService creates a ProductService that writes products without recording events.
func NewProductService(store repository.ProductStore, catalogClient CatalogClient, opts ...Option) *ProductService {
	ps := &ProductService{
		store:     store,
		catalog:   catalogClient,
		allocator: NewIDAllocator(store, catalogClient),
		stock:     NewStockSynthesizer(nil),
	}
	for _, opt := range opts {
		opt(ps)
	}
	return ps
}

// NewProductServiceWithOutbox creates a ProductService that records a product event
// in the same transaction as every product write.
func NewProductServiceWithOutbox(store repository.ProductStore, tx repository.Transactor, catalogClient CatalogClient, opts ...Option) *ProductService {
	ps := NewProductService(store, catalogClient, opts...)
	ps.tx = tx
	return ps
}

// Column bounds of the products table.
const (
	MaxTextLength = 255
	MaxStock      = math.MaxInt32
	priceScale    = 2
)

// MaxPrice is the exclusive upper bound of a NUMERIC(10,2) price.
var MaxPrice = decimal.New(1, 8)

// CreateProductInput holds the client supplied fields of a new product.
type CreateProductInput struct {
	Title       string
	Description string
	Category    string
	ImageURL    string
	Price       decimal.Decimal
}

// Validate checks the input fields.
func (in CreateProductInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	case strings.TrimSpace(in.Description) == "":
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	case strings.TrimSpace(in.Category) == "":
		return &ValidationError{Field: "category", Reason: "must not be empty"}
	case len(in.Title) > MaxTextLength:
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d bytes", MaxTextLength)}
	case len(in.Category) > MaxTextLength:
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("must be at most %d bytes", MaxTextLength)}
	case !in.Price.IsPositive():
		return &ValidationError{Field: "price", Reason: "must be greater than zero"}
	case !in.Price.Equal(in.Price.Round(priceScale)):
		return &ValidationError{Field: "price", Reason: "must have at most 2 decimal places"}
	case in.Price.GreaterThanOrEqual(MaxPrice):
		return &ValidationError{Field: "price", Reason: "must be less than " + MaxPrice.String()}
	}

	u, err := url.Parse(in.ImageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "image", Reason: "must be an absolute http(s) url"}
	}
	return nil
}

// ListAll returns the merged catalog: external items in catalog order with local rows taking
// precedence, followed by local-only products.
func (ps *ProductService) ListAll(ctx context.Context) ([]model.Product, error) {
	var (
		items []model.ExternalItem
		rows  []*model.StoredProduct
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = ps.catalog.FetchAll(gctx)
		if err != nil {
			metrics.CatalogFailures.WithLabelValues("fetch_all").Inc()
			return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rows, err = ps.store.FindAll(gctx)
		if err != nil {
			return fmt.Errorf("%w: list products: %v", ErrPersistence, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.Error("Failed to list products", slog.Any("err", err))
		return nil, err
	}

	return Merge(items, rows, ps.stock.Synthesize), nil
}

// GetOne returns the local product with id, or the external one with a synthesized stock.
// Every external failure is reported as ErrNotFound.
func (ps *ProductService) GetOne(ctx context.Context, id int64) (model.Product, error) {
	row, err := ps.findLocal(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if row != nil {
		return model.FromStored(row), nil
	}

	item, err := ps.fetchExternal(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	return model.FromExternal(id, *item, ps.stock.Synthesize()), nil
}

// Create stores a new local product with a freshly allocated id and a synthesized stock.
// When allocation or the first write fails the product is stored under a fallback id instead.
func (ps *ProductService) Create(ctx context.Context, in CreateProductInput) (model.Product, error) {
	if err := in.Validate(); err != nil {
		return model.Product{}, err
	}

	fallback := false
	id, err := ps.allocator.Allocate(ctx)
	if err != nil {
		if ps.allocator.strict && errors.Is(err, ErrUpstreamUnavailable) {
			return model.Product{}, err
		}
		slog.Warn("Id allocation failed, using fallback id", slog.Any("err", err))
		id = ps.allocator.FallbackID()
		fallback = true
	}

	row := &model.StoredProduct{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Price:       in.Price,
		Stock:       ps.stock.Synthesize(),
	}

	insert := func(products repository.ProductStore) (*model.StoredProduct, error) {
		return products.Create(ctx, row)
	}

	created, err := ps.write(ctx, model.EventProductCreated, insert)
	if err != nil && !fallback {
		slog.Warn("Failed to store product, retrying with fallback id", slog.Int64("product_id", row.ID), slog.Any("err", err))
		row.ID = ps.allocator.FallbackID()
		fallback = true
		created, err = ps.write(ctx, model.EventProductCreated, insert)
	}
	if err != nil {
		slog.Error("Failed to create product", slog.Int64("product_id", row.ID), slog.Any("err", err))
		return model.Product{}, fmt.Errorf("%w: create product: %v", ErrPersistence, err)
	}

	if fallback {
		metrics.FallbackIDs.Inc()
	}
	metrics.ProductsCreated.Inc()
	slog.Info("Product created", slog.Int64("product_id", created.ID), slog.Bool("fallback_id", fallback))

	return model.FromStored(created), nil
}

// UpdateStock sets the stock of a local product. An external-only product is promoted
// to a local one carrying its catalog fields and the new stock.
func (ps *ProductService) UpdateStock(ctx context.Context, id int64, stock int) (model.Product, error) {
	if stock < 0 {
		return model.Product{}, &ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	if stock > MaxStock {
		return model.Product{}, &ValidationError{Field: "stock", Reason: fmt.Sprintf("must be at most %d", MaxStock)}
	}

	row, err := ps.findLocal(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	eventType := model.EventProductStockUpdated
	if row != nil {
		row.Stock = stock
	} else {
		item, err := ps.fetchExternal(ctx, id)
		if err != nil {
			return model.Product{}, err
		}
		row = model.Promote(id, *item, stock)
		eventType = model.EventProductPromoted
	}

	saved, err := ps.write(ctx, eventType, func(products repository.ProductStore) (*model.StoredProduct, error) {
		return products.Upsert(ctx, row)
	})
	if err != nil {
		slog.Error("Failed to update stock", slog.Int64("product_id", id), slog.Any("err", err))
		return model.Product{}, fmt.Errorf("%w: update stock: %v", ErrPersistence, err)
	}

	if eventType == model.EventProductPromoted {
		metrics.ProductsPromoted.Inc()
		slog.Info("Product promoted", slog.Int64("product_id", id), slog.Int("stock", stock))
	} else {
		metrics.StockUpdates.Inc()
	}

	return model.FromStored(saved), nil
}

// Remove deletes a local product. External-only products cannot be removed.
func (ps *ProductService) Remove(ctx context.Context, id int64) error {
	row, err := ps.findLocal(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	_, err = ps.write(ctx, model.EventProductDeleted, func(products repository.ProductStore) (*model.StoredProduct, error) {
		return row, products.Delete(ctx, row)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		slog.Error("Failed to delete product", slog.Int64("product_id", id), slog.Any("err", err))
		return fmt.Errorf("%w: delete product: %v", ErrPersistence, err)
	}

	metrics.ProductsDeleted.Inc()
	return nil
}

// findLocal returns nil without error when no row has the id.
func (ps *ProductService) findLocal(ctx context.Context, id int64) (*model.StoredProduct, error) {
	row, err := ps.store.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		slog.Error("Failed to read local product", slog.Int64("product_id", id), slog.Any("err", err))
		return nil, fmt.Errorf("%w: find product: %v", ErrPersistence, err)
	}
	return row, nil
}

func (ps *ProductService) fetchExternal(ctx context.Context, id int64) (*model.ExternalItem, error) {
	item, err := ps.catalog.FetchByID(ctx, id)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			metrics.CatalogFailures.WithLabelValues("fetch_by_id").Inc()
			slog.Warn("External catalog lookup failed", slog.Int64("product_id", id), slog.Any("err", err))
		}
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return item, nil
}

// write runs op against the store. With an outbox configured, op and the matching event
// are committed in one transaction.
func (ps *ProductService) write(ctx context.Context, eventType string, op func(repository.ProductStore) (*model.StoredProduct, error)) (*model.StoredProduct, error) {
	if ps.tx == nil {
		return op(ps.store)
	}

	var saved *model.StoredProduct
	err := ps.tx.WithinTransaction(ctx, func(products repository.ProductStore, events repository.EventStore) error {
		var err error
		saved, err = op(products)
		if err != nil {
			return err
		}

		event, err := model.NewEvent(eventType, productMessage(eventType, saved))
		if err != nil {
			return err
		}
		_, err = events.Create(ctx, event)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func productMessage(eventType string, row *model.StoredProduct) sqs.ProductMessage {
	return sqs.ProductMessage{
		Action:    strings.TrimPrefix(eventType, "product."),
		ProductID: row.ID,
		Title:     row.Title,
		Price:     row.Price.InexactFloat64(),
		Stock:     row.Stock,
	}
}
