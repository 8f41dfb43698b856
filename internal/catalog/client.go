// Package catalog is the client of the read-only external product catalog.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iyhunko/product-catalog/internal/model"
)

var (
	// ErrNotFound is returned when the catalog reports that an item does not exist.
	ErrNotFound = errors.New("catalog item not found")

	// ErrUnavailable is returned for every other catalog failure: transport errors,
	// timeouts, unexpected status codes and undecodable bodies.
	ErrUnavailable = errors.New("catalog unavailable")
)

const maxBodySize = 10 << 20

// HTTPDoer is the part of *http.Client the catalog client uses.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches items from the external catalog over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	http    HTTPDoer
}

// NewClient creates a catalog client for baseURL. Each request is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, timeout, &http.Client{})
}

// NewClientWithHTTP creates a catalog client with a custom HTTP doer.
func NewClientWithHTTP(baseURL string, timeout time.Duration, doer HTTPDoer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    doer,
	}
}

// FetchAll returns the full catalog snapshot in catalog order.
func (c *Client) FetchAll(ctx context.Context) ([]model.ExternalItem, error) {
	body, status, err := c.get(ctx, "/products")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: list products returned status %d", ErrUnavailable, status)
	}

	var items []model.ExternalItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: failed to decode product list: %v", ErrUnavailable, err)
	}
	return items, nil
}

// FetchByID returns a single catalog item.
func (c *Client) FetchByID(ctx context.Context, id int64) (*model.ExternalItem, error) {
	body, status, err := c.get(ctx, "/products/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	case status != http.StatusOK:
		return nil, fmt.Errorf("%w: get product %d returned status %d", ErrUnavailable, id, status)
	}

	// The public FakeStore API answers unknown ids with 200 and an empty body.
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	var item model.ExternalItem
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, fmt.Errorf("%w: failed to decode product %d: %v", ErrUnavailable, id, err)
	}
	if item.ID == "" {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return &item, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("catalog request failed", slog.String("path", path), slog.Any("err", err))
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	slog.Debug("catalog request done",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
	)
	return body, resp.StatusCode, nil
}
