// Package handler provides the HTTP handlers for the books feature.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"book_catalog/internal/feature/books/domain/entity"
	"book_catalog/internal/feature/books/transport/http/dto"
	"book_catalog/internal/feature/books/usecase"
	"book_catalog/internal/platform/http/query"
	"book_catalog/internal/platform/http/respond"
	"book_catalog/internal/platform/logging"
	"book_catalog/internal/shared/pagination"
)

// BookUsecase is the consumer-side view of the books usecase.
type BookUsecase interface {
	Create(ctx context.Context, in usecase.CreateInput) (*entity.Book, error)
	FindAll(ctx context.Context, f usecase.Filter, p pagination.Params) (pagination.Page[entity.Book], error)
	FindOne(ctx context.Context, id string) (*entity.Book, error)
	Update(ctx context.Context, id string, in usecase.UpdateInput) (*entity.Book, error)
	Remove(ctx context.Context, id string) (*entity.Book, error)
}

// BookHandler handles the /book endpoints.
type BookHandler struct {
	uc BookUsecase
}

// NewBookHandler creates a BookHandler.
func NewBookHandler(uc BookUsecase) *BookHandler {
	return &BookHandler{uc: uc}
}

// Create handles POST /book.
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	b, err := h.uc.Create(c.Request.Context(), usecase.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		AuthorID:    req.AuthorID,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	logging.FromContext(c.Request.Context()).Info("book created", "book_id", b.ID, "author_id", b.AuthorID)
	c.JSON(http.StatusCreated, dto.NewBookRes(*b))
}

// List handles GET /book?name&price&authorId&page&limit.
func (h *BookHandler) List(c *gin.Context) {
	p, err := query.Page(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	minPrice, err := query.OptionalInt(c, "price")
	if err != nil {
		respond.Error(c, err)
		return
	}

	f := usecase.Filter{Name: c.Query("name"), MinPrice: minPrice, AuthorID: c.Query("authorId")}
	page, err := h.uc.FindAll(c.Request.Context(), f, p)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(page, dto.NewBookRes))
}

// Get handles GET /book/:id.
func (h *BookHandler) Get(c *gin.Context) {
	b, err := h.uc.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBookRes(*b))
}

// Update handles PATCH /book/:id.
func (h *BookHandler) Update(c *gin.Context) {
	var req dto.UpdateBookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	b, err := h.uc.Update(c.Request.Context(), c.Param("id"), usecase.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		AuthorID:    req.AuthorID,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBookRes(*b))
}

// Delete returns the deleted book.
func (h *BookHandler) Delete(c *gin.Context) {
	b, err := h.uc.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	logging.FromContext(c.Request.Context()).Info("book deleted", "book_id", b.ID)
	c.JSON(http.StatusOK, dto.NewBookRes(*b))
}
