package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iyhunko/product-catalog/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
	{"id":1,"title":"Backpack","price":109.95,"description":"Fits a laptop","category":"men's clothing","image":"https://fakestoreapi.com/img/1.jpg","rating":{"rate":3.9,"count":120}},
	{"id":"2","title":"T-Shirt","price":22.3,"description":"Slim fit","category":"men's clothing","image":"https://fakestoreapi.com/img/2.jpg","rating":{"rate":4.1,"count":259}}
]`

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchAll(t *testing.T) {
	t.Run("decodes the product list", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/products", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(productsJSON))
		})

		items, err := catalog.NewClient(srv.URL+"/", time.Second).FetchAll(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 2)

		id, ok := items[1].ID.Int64()
		assert.True(t, ok)
		assert.Equal(t, int64(2), id)
		assert.Equal(t, "Backpack", items[0].Title)
		assert.Equal(t, 109.95, items[0].Price)
		assert.Equal(t, 120, items[0].Rating.Count)
	})

	t.Run("server error is unavailable", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := catalog.NewClient(srv.URL, time.Second).FetchAll(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, catalog.ErrUnavailable)
	})

	t.Run("malformed body is unavailable", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"not":"a list"}`))
		})

		_, err := catalog.NewClient(srv.URL, time.Second).FetchAll(context.Background())
		assert.ErrorIs(t, err, catalog.ErrUnavailable)
	})

	t.Run("timeout is unavailable", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		})

		_, err := catalog.NewClient(srv.URL, 20*time.Millisecond).FetchAll(context.Background())
		assert.ErrorIs(t, err, catalog.ErrUnavailable)
	})
}

func TestClient_FetchByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/products/1", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":1,"title":"Backpack","price":109.95}`))
		})

		item, err := catalog.NewClient(srv.URL, time.Second).FetchByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Backpack", item.Title)
	})

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"404 is not found", http.StatusNotFound, `{"message":"not found"}`, catalog.ErrNotFound},
		{"empty body is not found", http.StatusOK, "", catalog.ErrNotFound},
		{"null body is not found", http.StatusOK, "null", catalog.ErrNotFound},
		{"empty object is not found", http.StatusOK, "{}", catalog.ErrNotFound},
		{"500 is unavailable", http.StatusInternalServerError, "", catalog.ErrUnavailable},
		{"garbage is unavailable", http.StatusOK, "<html>", catalog.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			item, err := catalog.NewClient(srv.URL, time.Second).FetchByID(context.Background(), 99)
			require.Error(t, err)
			assert.Nil(t, item)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestClient_TransportError(t *testing.T) {
	client := catalog.NewClientWithHTTP("http://catalog.invalid", time.Second, failingDoer{})

	_, err := client.FetchByID(context.Background(), 1)
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
	assert.NotErrorIs(t, err, catalog.ErrNotFound)
}
