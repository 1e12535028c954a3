// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"book_catalog/internal/app/router"
	authoradapters "book_catalog/internal/feature/authors/adapters"
	authorhandler "book_catalog/internal/feature/authors/transport/handler"
	authorusecase "book_catalog/internal/feature/authors/usecase"
	bookadapters "book_catalog/internal/feature/books/adapters"
	bookhandler "book_catalog/internal/feature/books/transport/handler"
	bookusecase "book_catalog/internal/feature/books/usecase"
	useradapters "book_catalog/internal/feature/users/adapters"
	userhandler "book_catalog/internal/feature/users/transport/handler"
	userusecase "book_catalog/internal/feature/users/usecase"
	"book_catalog/internal/platform/cache"
	"book_catalog/internal/platform/config"
	"book_catalog/internal/platform/db"
	"book_catalog/internal/platform/http/handler"
	jwtmw "book_catalog/internal/platform/jwt"
	"book_catalog/internal/platform/mail"
	"book_catalog/internal/platform/otp"
	"book_catalog/internal/shared/ratelimiter"
)

// App is the wired application.
type App struct {
	Router *gin.Engine
	// MailWorker is nil when there is no outbox to drain.
	MailWorker *mail.Worker
}

// NewApp wires repositories, usecases and handlers. rdb may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, gdb *gorm.DB, rdb *redis.Client) (*App, error) {
	tokens := jwtmw.NewIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	codes := otp.New(cfg.OTPSecret, cfg.OTPPeriod)

	m, err := NewMail(cfg.SMTP, rdb, logger)
	if err != nil {
		return nil, err
	}

	// Repository
	userRepo := useradapters.NewUserRepository(gdb)
	authorRepo := authoradapters.NewAuthorRepository(gdb)
	bookRepo := cache.NewCachingBookRepository(rdb, cfg.CacheTTL, bookadapters.NewBookRepository(gdb), "books")

	// Usecase
	userUC := userusecase.NewUserUsecase(userRepo, tokens, codes, m.Mailer)
	authorUC := authorusecase.NewAuthorUsecase(authorRepo, bookRepo)
	bookUC := bookusecase.NewBookUsecase(bookRepo)

	checks := map[string]handler.CheckFunc{"database": db.Checker(gdb)}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	r := router.NewRouter(
		router.Options{Logger: logger, CORSAllowedOrigins: cfg.CORSAllowedOrigins},
		tokens,
		router.Handlers{
			Users:   userhandler.NewUserHandler(userUC),
			Authors: authorhandler.NewAuthorHandler(authorUC),
			Books:   bookhandler.NewBookHandler(bookUC),
			Ready:   handler.Ready(checks),
		},
	)

	app := &App{Router: r}
	if m.Outbox != nil {
		limiter := ratelimiter.NewRateLimiter(cfg.MailRatePerMinute, time.Minute)
		app.MailWorker = mail.NewWorker(m.Outbox, m.Primary, limiter, cfg.MailMaxAttempts)
	}
	return app, nil
}
