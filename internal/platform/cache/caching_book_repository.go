// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"book_catalog/internal/feature/books/domain/entity"
	"book_catalog/internal/feature/books/usecase"
	"book_catalog/internal/shared/pagination"
)

// CachingBookRepository decorates a BookRepository with Redis caching of reads.
// Cached books embed their author, so author mutations must call InvalidateAll.
type CachingBookRepository struct {
	inner     usecase.BookRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.BookRepository = (*CachingBookRepository)(nil)

// NewCachingBookRepository decorates inner with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "books".
// A nil rdb disables caching.
func NewCachingBookRepository(rdb *redis.Client, ttl time.Duration, inner usecase.BookRepository, namespace string) *CachingBookRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "books"
	}
	return &CachingBookRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

type listEntry struct {
	Rows  []entity.Book `json:"rows"`
	Total int64         `json:"total"`
}

func (c *CachingBookRepository) Create(ctx context.Context, b *entity.Book) error {
	if err := c.inner.Create(ctx, b); err != nil {
		return err
	}
	c.evict(ctx, c.listPrefix()+"*")
	return nil
}

func (c *CachingBookRepository) FindByID(ctx context.Context, id string) (*entity.Book, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.itemKey(id)
	var cached entity.Book
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	b, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, b)
	return b, nil
}

func (c *CachingBookRepository) FindAll(ctx context.Context, f usecase.Filter, p pagination.Params) ([]entity.Book, int64, error) {
	if c.rdb == nil {
		return c.inner.FindAll(ctx, f, p)
	}

	key := c.listKey(f, p)
	var cached listEntry
	if c.get(ctx, key, &cached) {
		return cached.Rows, cached.Total, nil
	}

	rows, total, err := c.inner.FindAll(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	c.set(ctx, key, listEntry{Rows: rows, Total: total})
	return rows, total, nil
}

func (c *CachingBookRepository) Update(ctx context.Context, b *entity.Book) error {
	if err := c.inner.Update(ctx, b); err != nil {
		return err
	}
	c.evictBook(ctx, b.ID)
	return nil
}

func (c *CachingBookRepository) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.evictBook(ctx, id)
	return nil
}

// InvalidateAll drops every cached book read in the namespace.
func (c *CachingBookRepository) InvalidateAll(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

// get reports a cache hit. Corrupted entries are deleted and count as a miss.
func (c *CachingBookRepository) get(ctx context.Context, key string, out any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// set is best effort.
func (c *CachingBookRepository) set(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

func (c *CachingBookRepository) evictBook(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.itemKey(id)).Err(); err != nil {
		slog.WarnContext(ctx, "book cache eviction failed", "book_id", id, "error", err)
	}
	c.evict(ctx, c.listPrefix()+"*")
}

func (c *CachingBookRepository) evict(ctx context.Context, pattern string) {
	if c.rdb == nil {
		return
	}
	if err := c.deleteByPattern(ctx, pattern); err != nil {
		slog.WarnContext(ctx, "book cache eviction failed", "pattern", pattern, "error", err)
	}
}

func (c *CachingBookRepository) itemKey(id string) string {
	return fmt.Sprintf("%s:item:%s", c.namespace, safe(id))
}

func (c *CachingBookRepository) listPrefix() string {
	return c.namespace + ":list:"
}

// listKey encodes every filter field so distinct queries never share an entry.
func (c *CachingBookRepository) listKey(f usecase.Filter, p pagination.Params) string {
	minPrice := "-"
	if f.MinPrice != nil {
		minPrice = fmt.Sprint(*f.MinPrice)
	}
	return fmt.Sprintf("%s%s:%s:%s:%d:%d",
		c.listPrefix(),
		safe(strings.ToLower(f.Name)),
		minPrice,
		safe(f.AuthorID),
		p.Page,
		p.Limit,
	)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingBookRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes user input for use inside a key. The result never contains
// ':' or glob metacharacters, and distinct inputs stay distinct.
func safe(s string) string {
	return url.QueryEscape(s)
}
