package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stepbookstep/server/internal/model"
)

const bookKeyPrefix = "catalog:book:"

// BookCache stores resolved catalog books as JSON with a TTL.
type BookCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	return &BookCache{client: client, ttl: ttl}
}

func bookKey(id int64) string {
	return bookKeyPrefix + strconv.FormatInt(id, 10)
}

// Get returns the cached book. found is false on a cache miss.
func (c *BookCache) Get(ctx context.Context, id int64) (*model.Book, bool, error) {
	raw, err := c.client.Get(ctx, bookKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	book := &model.Book{}
	if err := json.Unmarshal(raw, book); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached book %d: %w", id, err)
	}
	return book, true, nil
}

// GetMany returns the cached subset of ids in one round trip.
func (c *BookCache) GetMany(ctx context.Context, ids []int64) (map[int64]*model.Book, error) {
	books := make(map[int64]*model.Book, len(ids))
	if len(ids) == 0 {
		return books, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = bookKey(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		book := &model.Book{}
		if err := json.Unmarshal([]byte(s), book); err != nil {
			continue
		}
		books[ids[i]] = book
	}
	return books, nil
}

// Set stores books under their ids.
func (c *BookCache) Set(ctx context.Context, books ...*model.Book) error {
	if len(books) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, book := range books {
		raw, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("failed to encode book %d: %w", book.ID, err)
		}
		pipe.Set(ctx, bookKey(book.ID), raw, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate drops a cached book.
func (c *BookCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, bookKey(id)).Err()
}
