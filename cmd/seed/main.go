package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"book_catalog/internal/app/seed"
	authoradapters "book_catalog/internal/feature/authors/adapters"
	authorusecase "book_catalog/internal/feature/authors/usecase"
	bookadapters "book_catalog/internal/feature/books/adapters"
	bookusecase "book_catalog/internal/feature/books/usecase"
	"book_catalog/internal/platform/config"
	"book_catalog/internal/platform/db"
	"book_catalog/internal/platform/logging"
)

func main() {
	path := flag.String("file", "seed.json", "catalog fixture to load")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	f, err := os.Open(*path)
	if err != nil {
		logger.Error("failed to open seed file", "path", *path, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	fixture, err := seed.Decode(f)
	if err != nil {
		logger.Error("failed to read seed file", "path", *path, "error", err)
		os.Exit(1)
	}

	gdb, err := db.OpenDB(cfg.DB)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// cache is bypassed; the server's TTL bounds staleness
	authors := authorusecase.NewAuthorUsecase(authoradapters.NewAuthorRepository(gdb), nil)
	books := bookusecase.NewBookUsecase(bookadapters.NewBookRepository(gdb))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logging.IntoContext(ctx, logger)

	res, err := seed.Load(ctx, authors, books, fixture)
	if err != nil {
		logger.Error("seed failed", "error", err, "authors", res.Authors, "books", res.Books)
		os.Exit(1)
	}
	logger.Info("seed ok", "authors", res.Authors, "books", res.Books)
}
