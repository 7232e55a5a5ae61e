package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tablenest/service-booking/internal/domain"
)

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// BadRequest writes a 400 response with an error detail.
func BadRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
}

// Unauthorized writes a 401 response with an error detail.
func Unauthorized(c *gin.Context, detail string) {
	c.JSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

// Error maps a domain error to its HTTP status and writes the response.
// Unrecognized errors become opaque 500s so internals never leak.
func Error(c *gin.Context, err error) {
	var (
		notFound     *domain.NotFoundError
		invalid      *domain.InvalidRequestError
		conflict     *domain.ConflictError
		unauthorized *domain.UnauthorizedError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": notFound.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"detail": invalid.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"detail": conflict.Error()})
	case errors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": unauthorized.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}
