package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authorhandler "book_catalog/internal/feature/authors/transport/handler"
	bookhandler "book_catalog/internal/feature/books/transport/handler"
	"book_catalog/internal/feature/users/domain/entity"
	userhandler "book_catalog/internal/feature/users/transport/handler"
	"book_catalog/internal/platform/http/handler"
	jwtmw "book_catalog/internal/platform/jwt"
	"book_catalog/internal/platform/logging"
)

// adminOnly guards catalog mutations.
var adminOnly = jwtmw.Policy{Roles: []string{string(entity.RoleAdmin)}}

// Handlers groups the feature handlers mounted by NewRouter.
type Handlers struct {
	Users   *userhandler.UserHandler
	Authors *authorhandler.AuthorHandler
	Books   *bookhandler.BookHandler
	Ready   gin.HandlerFunc
}

// Options configures cross-cutting middleware.
type Options struct {
	Logger *slog.Logger
	// CORSAllowedOrigins empty means every origin is allowed.
	CORSAllowedOrigins []string
}

// NewRouter mounts the public, authenticated and admin-only routes.
func NewRouter(opts Options, tokens jwtmw.TokenVerifier, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Logger != nil {
		r.Use(logging.RequestLogger(opts.Logger))
	}
	r.Use(cors.New(corsConfig(opts.CORSAllowedOrigins)))

	// no auth
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.OPTIONS("/healthz", handler.Health)
	if h.Ready != nil {
		r.GET("/readyz", h.Ready)
	}

	auth := jwtmw.AuthRequired(tokens)
	admin := []gin.HandlerFunc{auth, jwtmw.Authorize(adminOnly)}

	users := r.Group("/users")
	{
		users.POST("/register", h.Users.Register)
		users.POST("/verify-otp", h.Users.VerifyOTP)
		users.POST("/resend-otp", h.Users.ResendOTP)
		users.POST("/login", h.Users.Login)
		users.POST("/refresh", h.Users.Refresh)
		users.PATCH("/password", auth, h.Users.UpdatePassword)
		users.PATCH("/promoteToAdmin", auth, h.Users.PromoteToAdmin)
		users.GET("", h.Users.List)
		users.GET("/:id", h.Users.Get)
		users.DELETE("/:id", h.Users.Delete)
	}

	authors := r.Group("/author")
	{
		authors.GET("", h.Authors.List)
		authors.GET("/:id", h.Authors.Get)
		authors.POST("", append(admin, h.Authors.Create)...)
		authors.PATCH("/:id", append(admin, h.Authors.Update)...)
		authors.DELETE("/:id", append(admin, h.Authors.Delete)...)
	}

	books := r.Group("/book")
	{
		books.GET("", h.Books.List)
		books.GET("/:id", h.Books.Get)
		books.POST("", append(admin, h.Books.Create)...)
		books.PATCH("/:id", append(admin, h.Books.Update)...)
		books.DELETE("/:id", append(admin, h.Books.Delete)...)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", logging.HeaderRequestID},
		ExposeHeaders: []string{logging.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
