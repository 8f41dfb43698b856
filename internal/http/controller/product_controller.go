package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/service"
	"github.com/shopspring/decimal"
)

// ProductService is the catalog behaviour exposed over HTTP.
type ProductService interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	GetOne(ctx context.Context, id int64) (model.Product, error)
	Create(ctx context.Context, in service.CreateProductInput) (model.Product, error)
	UpdateStock(ctx context.Context, id int64, stock int) (model.Product, error)
	Remove(ctx context.Context, id int64) error
}

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// CreateProductRequest represents the request body for creating a product.
type CreateProductRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Category    string     `json:"category" binding:"required"`
	Image       string     `json:"image" binding:"required,url"`
	Price       *JSONPrice `json:"price" binding:"required"`
}

// JSONPrice is a decimal price that only decodes from a bare JSON number.
type JSONPrice struct {
	decimal.Decimal
}

// UnmarshalJSON rejects quoted prices.
func (p *JSONPrice) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || b[0] == '"' {
		return errors.New("price must be a JSON number")
	}
	return p.Decimal.UnmarshalJSON(b)
}

// UpdateStockRequest represents the request body for setting a product's stock.
type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0,max=2147483647"`
}

// ListProducts handles the HTTP GET request for the merged catalog.
func (pc *ProductController) ListProducts(c *gin.Context) {
	products, err := pc.productService.ListAll(c.Request.Context())
	if err != nil {
		pc.handleError(c, err)
		return
	}

	resp := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		resp = append(resp, toProductResponse(product))
	}

	respond(c, http.StatusOK, resp)
}

// GetProduct handles the HTTP GET request for a single product.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := pc.productService.GetOne(c.Request.Context(), id)
	if err != nil {
		pc.handleError(c, err)
		return
	}

	respond(c, http.StatusOK, toProductResponse(product))
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := pc.productService.Create(c.Request.Context(), service.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.Image,
		Price:       req.Price.Decimal,
	})
	if err != nil {
		pc.handleError(c, err)
		return
	}

	respond(c, http.StatusCreated, toProductResponse(product))
}

// UpdateStock handles the HTTP PUT request for a product's stock.
func (pc *ProductController) UpdateStock(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := pc.productService.UpdateStock(c.Request.Context(), id, *req.Stock)
	if err != nil {
		pc.handleError(c, err)
		return
	}

	respond(c, http.StatusOK, toProductResponse(product))
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := pc.productService.Remove(c.Request.Context(), id); err != nil {
		pc.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid product ID")
		return 0, false
	}
	return id, true
}

func (pc *ProductController) handleError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(c, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrUpstreamUnavailable):
		respondError(c, http.StatusServiceUnavailable, "external catalog unavailable")
	default:
		slog.Error("Request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("method", c.Request.Method),
			slog.Any("err", err))
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
