package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iyhunko/product-catalog/internal/model"
)

const (
	// BaseID is the smallest id handed out to locally created products.
	BaseID int64 = 1_000_000
	// ExternalMargin is the headroom kept above the highest external id.
	ExternalMargin int64 = 100_000

	fallbackBase   int64 = 2_000_000
	fallbackWindow int64 = 1_000_000
	fallbackJitter       = 10_000

	topIDsLimit = 10
)

// localIDSource is the part of the local store the allocator reads.
type localIDSource interface {
	TopIDsDescending(ctx context.Context, limit int) ([]int64, error)
}

// externalLister is the part of the external catalog the allocator reads.
type externalLister interface {
	FetchAll(ctx context.Context) ([]model.ExternalItem, error)
}

// IDAllocator picks ids for new local products above everything known locally and externally.
// Allocation is best effort: concurrent callers may receive the same id.
type IDAllocator struct {
	local    localIDSource
	external externalLister
	now      func() time.Time
	rnd      RandSource
	strict   bool
}

// NewIDAllocator creates an IDAllocator using the wall clock and the default random source.
func NewIDAllocator(local localIDSource, external externalLister) *IDAllocator {
	return &IDAllocator{
		local:    local,
		external: external,
		now:      time.Now,
		rnd:      DefaultRand(),
	}
}

// Allocate returns max(BaseID, highestLocal+1, highestExternal+ExternalMargin).
// A failed external lookup counts as an empty catalog unless the allocator is strict,
// in which case ErrUpstreamUnavailable is returned.
func (a *IDAllocator) Allocate(ctx context.Context) (int64, error) {
	ids, err := a.local.TopIDsDescending(ctx, topIDsLimit)
	if err != nil {
		return 0, fmt.Errorf("%w: read local ids: %v", ErrPersistence, err)
	}
	var highestLocal int64
	if len(ids) > 0 {
		highestLocal = ids[0]
	}

	var highestExternal int64
	items, err := a.external.FetchAll(ctx)
	if err != nil {
		if a.strict {
			return 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		slog.Warn("External catalog unavailable during id allocation", slog.Any("err", err))
	} else {
		highestExternal = highestExternalID(items)
	}

	return max(BaseID, highestLocal+1, highestExternal+ExternalMargin), nil
}

// FallbackID derives an id from the current time, well above the normal allocation range.
func (a *IDAllocator) FallbackID() int64 {
	millis := a.now().UnixMilli()
	return fallbackBase + millis%fallbackWindow + int64(a.rnd.IntN(fallbackJitter))
}

func highestExternalID(items []model.ExternalItem) int64 {
	var highest int64
	for _, item := range items {
		if id, ok := item.ID.Int64(); ok && id > highest {
			highest = id
		}
	}
	return highest
}
