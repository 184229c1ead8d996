package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Page is the envelope of every collection endpoint. Clients decode it with the same type.
type Page[T any] struct {
	Items  []T    `json:"items"`
	Source string `json:"source,omitempty"`
}

// JSON writes payload with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Created writes a 201 response carrying the new resource.
func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}

// Accepted writes a 202 for work handed to a background worker.
func Accepted(c *gin.Context, payload any) {
	JSON(c, http.StatusAccepted, payload)
}

// NoContent ends a successful delete.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// List writes items as a Page. A nil slice is sent as [] so clients never see null.
func List[T any](c *gin.Context, items []T) {
	ListFrom(c, "", items)
}

// ListFrom is List with the source that produced the items ("db", "ai").
func ListFrom[T any](c *gin.Context, source string, items []T) {
	if items == nil {
		items = []T{}
	}
	OK(c, Page[T]{Items: items, Source: source})
}
