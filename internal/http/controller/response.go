package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/model"
)

// envelope wraps every successful response body.
type envelope struct {
	Data      any    `json:"data"`
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Method     string `json:"method"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// ProductResponse represents the response body for a product.
type ProductResponse struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Image       string      `json:"image"`
	Price       json.Number `json:"price"`
	Stock       int         `json:"stock"`
	IsLocal     bool        `json:"isLocal"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
}

func toProductResponse(product model.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Category:    product.Category,
		Image:       product.ImageURL,
		Price:       json.Number(product.Price.String()),
		Stock:       product.Stock,
		IsLocal:     product.IsLocal(),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Data: data, Success: true, Timestamp: now()})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Timestamp:  now(),
		Path:       c.Request.URL.Path,
		Method:     c.Request.Method,
		Message:    message,
		Error:      http.StatusText(status),
	})
}
