// Package handler provides the HTTP handlers for the users feature.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"book_catalog/internal/feature/users/domain/entity"
	"book_catalog/internal/feature/users/transport/http/dto"
	"book_catalog/internal/feature/users/usecase"
	"book_catalog/internal/platform/http/query"
	"book_catalog/internal/platform/http/respond"
	jwtmw "book_catalog/internal/platform/jwt"
	"book_catalog/internal/platform/logging"
	"book_catalog/internal/shared/pagination"
)

// UserUsecase is the consumer-side view of the users usecase.
type UserUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	VerifyOTP(ctx context.Context, email, code string) (string, error)
	ResendOTP(ctx context.Context, email string) (string, error)
	Login(ctx context.Context, email, password string) (usecase.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (usecase.Tokens, error)
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	PromoteToAdmin(ctx context.Context, callerID string) (string, *entity.User, error)
	FindAll(ctx context.Context, f usecase.Filter, p pagination.Params) (pagination.Page[entity.User], error)
	FindOne(ctx context.Context, id string) (*entity.User, error)
	Delete(ctx context.Context, id string) (string, error)
}

// UserHandler handles the /users endpoints.
type UserHandler struct {
	uc UserUsecase
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(uc UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// Register handles POST /users/register.
// The account is created but unusable until the mailed OTP is verified, hence 202.
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	u, err := h.uc.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	logging.FromContext(c.Request.Context()).Info("user registered", "user_id", u.ID)
	c.JSON(http.StatusAccepted, dto.NewUserRes(*u))
}

// VerifyOTP handles POST /users/verify-otp.
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	msg, err := h.uc.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, msg)
}

// ResendOTP handles POST /users/resend-otp.
func (h *UserHandler) ResendOTP(c *gin.Context) {
	var req dto.ResendOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	msg, err := h.uc.ResendOTP(c.Request.Context(), req.Email)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, msg)
}

// Login handles POST /users/login and returns a token pair.
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	tokens, err := h.uc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logging.FromContext(c.Request.Context()).Warn("login failed", "error", err, "remote_addr", c.ClientIP())
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenRes{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

// Refresh handles POST /users/refresh. The presented refresh token is rotated.
func (h *UserHandler) Refresh(c *gin.Context) {
	var req dto.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	tokens, err := h.uc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenRes{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

// UpdatePassword handles PATCH /users/password for the authenticated caller.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		respond.Error(c, jwtmw.ErrTokenNotProvided)
		return
	}
	var req dto.UpdatePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	if err := h.uc.UpdatePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, usecase.MsgPasswordUpdated)
}

// PromoteToAdmin handles PATCH /users/promoteToAdmin. The caller promotes itself.
func (h *UserHandler) PromoteToAdmin(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		respond.Error(c, jwtmw.ErrTokenNotProvided)
		return
	}

	msg, u, err := h.uc.PromoteToAdmin(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PromoteRes{Message: msg, User: dto.NewUserRes(*u)})
}

// List handles GET /users?name&email&role&sortBy&sortOrder&page&limit.
func (h *UserHandler) List(c *gin.Context) {
	p, err := query.Page(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	role, err := query.OneOf(c, "role", "", string(entity.RoleAdmin), string(entity.RoleUser))
	if err != nil {
		respond.Error(c, err)
		return
	}
	sortBy, err := query.OneOf(c, "sortBy", "name", "name", "email", "role")
	if err != nil {
		respond.Error(c, err)
		return
	}
	sortOrder, err := query.OneOf(c, "sortOrder", "asc", "asc", "desc")
	if err != nil {
		respond.Error(c, err)
		return
	}

	page, err := h.uc.FindAll(c.Request.Context(), usecase.Filter{
		Name:      c.Query("name"),
		Email:     c.Query("email"),
		Role:      entity.Role(role),
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}, p)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(page, dto.NewUserRes))
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.uc.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(*u))
}

// Delete handles DELETE /users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	msg, err := h.uc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	logging.FromContext(c.Request.Context()).Info("user deleted", "user_id", c.Param("id"))
	respond.Message(c, http.StatusOK, msg)
}
