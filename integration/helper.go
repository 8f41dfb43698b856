//go:build integration

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/iyhunko/product-catalog/internal/model"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// TestDB holds the test database connections and the container backing them.
// Admin uses lib/pq for schema work; DB uses pgx like the service does.
type TestDB struct {
	Admin    *sql.DB
	DB       *sql.DB
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestDB sets up a PostgreSQL container using dockertest and runs migrations
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	databaseURL := fmt.Sprintf("postgres://testuser:secret@%s/testdb?sslmode=disable", resource.GetHostPort("5432/tcp"))
	slog.Info("Connecting to test database", slog.String("url", databaseURL))

	var admin *sql.DB
	if err = pool.Retry(func() error {
		var err error
		admin, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return err
		}
		return admin.Ping()
	}); err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	migrationsPath := "../migrations"
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		t.Fatalf("Migrations directory not found: %s", migrationsPath)
	}

	driver, err := postgres.WithInstance(admin, &postgres.Config{})
	if err != nil {
		t.Fatalf("Could not create migration driver: %s", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		t.Fatalf("Could not create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("Could not run migrations: %s", err)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		t.Fatalf("Could not open pgx connection: %s", err)
	}

	return &TestDB{
		Admin:    admin,
		DB:       db,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup closes the database connections and purges the Docker container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	for _, db := range []*sql.DB{tdb.DB, tdb.Admin} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil {
			t.Errorf("Could not close database: %s", err)
		}
	}

	if tdb.Pool != nil && tdb.Resource != nil {
		if err := tdb.Pool.Purge(tdb.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// TruncateTables truncates all tables in the test database
func (tdb *TestDB) TruncateTables(t *testing.T) {
	t.Helper()

	for _, table := range []string{"events", "products"} {
		if _, err := tdb.Admin.ExecContext(context.Background(), "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("Could not truncate table %s: %s", table, err)
		}
	}
}

// FakeCatalog serves a FakeStore-compatible catalog from memory.
type FakeCatalog struct {
	*httptest.Server

	mu    sync.Mutex
	items []model.ExternalItem
	down  bool
}

// NewFakeCatalog starts a catalog serving items. It is closed when the test ends.
func NewFakeCatalog(t *testing.T, items ...model.ExternalItem) *FakeCatalog {
	t.Helper()

	fc := &FakeCatalog{items: items}
	fc.Server = httptest.NewServer(http.HandlerFunc(fc.serve))
	t.Cleanup(fc.Close)
	return fc
}

// SetDown makes every request fail with 502 while down is true.
func (fc *FakeCatalog) SetDown(down bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.down = down
}

func (fc *FakeCatalog) serve(w http.ResponseWriter, r *http.Request) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.down {
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/products" {
		_ = json.NewEncoder(w).Encode(fc.items)
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/products/"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	for _, item := range fc.items {
		if itemID, ok := item.ID.Int64(); ok && itemID == id {
			_ = json.NewEncoder(w).Encode(item)
			return
		}
	}
	// FakeStore answers unknown ids with an empty 200.
}

func catalogItem(id int64, title string, price float64) model.ExternalItem {
	return model.ExternalItem{
		ID:          model.ExternalID(strconv.FormatInt(id, 10)),
		Title:       title,
		Price:       price,
		Description: title + " from the catalog",
		Category:    "men's clothing",
		Image:       fmt.Sprintf("https://fakestoreapi.com/img/%d.jpg", id),
	}
}
