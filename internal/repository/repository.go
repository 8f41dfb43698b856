package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("resource not found")
)

// ProductStore is the local product store.
type ProductStore interface {
	FindAll(ctx context.Context) ([]*model.StoredProduct, error)
	FindByID(ctx context.Context, id int64) (*model.StoredProduct, error)
	Create(ctx context.Context, product *model.StoredProduct) (*model.StoredProduct, error)
	Upsert(ctx context.Context, product *model.StoredProduct) (*model.StoredProduct, error)
	Delete(ctx context.Context, product *model.StoredProduct) error
	TopIDsDescending(ctx context.Context, limit int) ([]int64, error)
}

// EventStore keeps outbox events until they are published.
type EventStore interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	ListPending(ctx context.Context, limit int) ([]*model.Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error
}

// Transactor runs product and event writes in one database transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(products ProductStore, events EventStore) error) error
}

// UniqueConstraintError represents a database unique constraint violation error.
type UniqueConstraintError struct {
	Detail string
}

func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}
