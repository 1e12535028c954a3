// Package handler provides the HTTP handlers for the authors feature.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"book_catalog/internal/feature/authors/domain/entity"
	"book_catalog/internal/feature/authors/transport/http/dto"
	"book_catalog/internal/feature/authors/usecase"
	"book_catalog/internal/platform/http/query"
	"book_catalog/internal/platform/http/respond"
	"book_catalog/internal/platform/logging"
	"book_catalog/internal/shared/pagination"
)

// AuthorUsecase is the consumer-side view of the authors usecase.
type AuthorUsecase interface {
	Create(ctx context.Context, in usecase.CreateInput) (*entity.Author, error)
	FindAll(ctx context.Context, f usecase.Filter, p pagination.Params) (pagination.Page[entity.Author], error)
	FindOne(ctx context.Context, id string) (*entity.Author, error)
	Update(ctx context.Context, id string, in usecase.UpdateInput) (*entity.Author, error)
	Remove(ctx context.Context, id string) (*entity.Author, error)
}

// AuthorHandler handles the /author endpoints.
type AuthorHandler struct {
	uc AuthorUsecase
}

// NewAuthorHandler creates an AuthorHandler.
func NewAuthorHandler(uc AuthorUsecase) *AuthorHandler {
	return &AuthorHandler{uc: uc}
}

// Create handles POST /author.
func (h *AuthorHandler) Create(c *gin.Context) {
	var req dto.CreateAuthorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	a, err := h.uc.Create(c.Request.Context(), usecase.CreateInput{Name: req.Name, Age: *req.Age})
	if err != nil {
		respond.Error(c, err)
		return
	}
	logging.FromContext(c.Request.Context()).Info("author created", "author_id", a.ID)
	c.JSON(http.StatusCreated, dto.NewAuthorRes(*a))
}

// List handles GET /author?name&age&page&limit.
func (h *AuthorHandler) List(c *gin.Context) {
	p, err := query.Page(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	minAge, err := query.OptionalInt(c, "age")
	if err != nil {
		respond.Error(c, err)
		return
	}

	page, err := h.uc.FindAll(c.Request.Context(), usecase.Filter{Name: c.Query("name"), MinAge: minAge}, p)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(page, dto.NewAuthorRes))
}

// Get handles GET /author/:id.
func (h *AuthorHandler) Get(c *gin.Context) {
	a, err := h.uc.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuthorRes(*a))
}

// Update handles PATCH /author/:id.
func (h *AuthorHandler) Update(c *gin.Context) {
	var req dto.UpdateAuthorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	a, err := h.uc.Update(c.Request.Context(), c.Param("id"), usecase.UpdateInput{Name: req.Name, Age: req.Age})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuthorRes(*a))
}

// Delete handles DELETE /author/:id and returns the deleted author.
func (h *AuthorHandler) Delete(c *gin.Context) {
	a, err := h.uc.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	logging.FromContext(c.Request.Context()).Info("author deleted", "author_id", a.ID)
	c.JSON(http.StatusOK, dto.NewAuthorRes(*a))
}
