package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of products created",
	})

	// ProductsDeleted is a Prometheus counter for tracking the total number of products deleted.
	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_deleted_total",
		Help: "The total number of products deleted",
	})

	// ProductsPromoted counts external products turned into local rows by a stock update.
	ProductsPromoted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_promoted_total",
		Help: "The total number of external products promoted to local products",
	})

	// StockUpdates counts stock updates applied to existing local products.
	StockUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_stock_updates_total",
		Help: "The total number of stock updates on local products",
	})

	// FallbackIDs counts products created with a time-derived fallback id.
	FallbackIDs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_fallback_ids_total",
		Help: "The total number of products created with a fallback id",
	})

	// CatalogFailures counts failed external catalog calls by operation.
	CatalogFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_failures_total",
		Help: "The total number of failed external catalog calls",
	}, []string{"operation"})
)
