package service_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/sqs"
	"github.com/stretchr/testify/mock"
)

// MockProductStore is a mock implementation of repository.ProductStore
type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) FindAll(ctx context.Context) ([]*model.StoredProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.StoredProduct), args.Error(1)
}

func (m *MockProductStore) FindByID(ctx context.Context, id int64) (*model.StoredProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredProduct), args.Error(1)
}

func (m *MockProductStore) Create(ctx context.Context, product *model.StoredProduct) (*model.StoredProduct, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredProduct), args.Error(1)
}

func (m *MockProductStore) Upsert(ctx context.Context, product *model.StoredProduct) (*model.StoredProduct, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredProduct), args.Error(1)
}

func (m *MockProductStore) Delete(ctx context.Context, product *model.StoredProduct) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductStore) TopIDsDescending(ctx context.Context, limit int) ([]int64, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockCatalog is a mock implementation of service.CatalogClient
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FetchAll(ctx context.Context) ([]model.ExternalItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExternalItem), args.Error(1)
}

func (m *MockCatalog) FetchByID(ctx context.Context, id int64) (*model.ExternalItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExternalItem), args.Error(1)
}

// MockEventStore is a mock implementation of repository.EventStore
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *MockEventStore) ListPending(ctx context.Context, limit int) ([]*model.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *MockEventStore) UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error {
	args := m.Called(ctx, eventID, status)
	return args.Error(0)
}

// MockTransactor runs the callback against the given mocks, like a transaction that always commits.
type MockTransactor struct {
	mock.Mock
	products repository.ProductStore
	events   repository.EventStore
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(products repository.ProductStore, events repository.EventStore) error) error {
	m.Called(ctx)
	return fn(m.products, m.events)
}

// MockPublisher is a mock implementation of service.ProductPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductMessage(ctx context.Context, msg sqs.ProductMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// seqRand returns its values in a loop, reduced modulo n.
type seqRand struct {
	values []int
	next   int
}

func (r *seqRand) IntN(n int) int {
	v := r.values[r.next%len(r.values)]
	r.next++
	return v % n
}

func externalItem(id, title string, price float64) model.ExternalItem {
	return model.ExternalItem{
		ID:          model.ExternalID(id),
		Title:       title,
		Price:       price,
		Description: title + " description",
		Category:    "electronics",
		Image:       "https://fakestoreapi.com/img/" + id + ".jpg",
	}
}
