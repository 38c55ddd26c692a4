package service

import (
	"context"
	"log/slog"

	"github.com/stepbookstep/server/internal/cache"
	"github.com/stepbookstep/server/internal/model"
	"github.com/stepbookstep/server/internal/repository"
)

// Catalog resolves book ids to catalog entries.
type Catalog interface {
	Resolve(ctx context.Context, bookID int64) (*model.Book, error)
	ResolveMany(ctx context.Context, bookIDs []int64) (map[int64]*model.Book, error)
}

// CatalogService reads books from the database through an optional Redis
// cache. Cache failures are logged and fall through to the database.
type CatalogService struct {
	books repository.BookRepository
	cache *cache.BookCache
}

func NewCatalogService(books repository.BookRepository, cache *cache.BookCache) *CatalogService {
	return &CatalogService{books: books, cache: cache}
}

func (s *CatalogService) Resolve(ctx context.Context, bookID int64) (*model.Book, error) {
	if s.cache != nil {
		book, found, err := s.cache.Get(ctx, bookID)
		if err != nil {
			slog.Warn("catalog cache read failed", "error", err, "book_id", bookID)
		}
		if found {
			return book, nil
		}
	}

	book, err := s.books.ByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, book); err != nil {
			slog.Warn("catalog cache write failed", "error", err, "book_id", bookID)
		}
	}
	return book, nil
}

// ResolveMany returns the books that exist among bookIDs. Unknown ids are
// absent from the map.
func (s *CatalogService) ResolveMany(ctx context.Context, bookIDs []int64) (map[int64]*model.Book, error) {
	books := make(map[int64]*model.Book, len(bookIDs))
	missing := bookIDs

	if s.cache != nil && len(bookIDs) > 0 {
		cached, err := s.cache.GetMany(ctx, bookIDs)
		if err != nil {
			slog.Warn("catalog cache read failed", "error", err, "books", len(bookIDs))
		}
		missing = missing[:0:0]
		for _, id := range bookIDs {
			if book, ok := cached[id]; ok {
				books[id] = book
				continue
			}
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		return books, nil
	}

	found, err := s.books.ByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, book := range found {
		books[book.ID] = book
	}

	if s.cache != nil && len(found) > 0 {
		if err := s.cache.Set(ctx, found...); err != nil {
			slog.Warn("catalog cache write failed", "error", err, "books", len(found))
		}
	}
	return books, nil
}
