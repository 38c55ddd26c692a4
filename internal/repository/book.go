package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/stepbookstep/server/internal/model"
)

var (
	ErrBookNotFound = errors.New("book not found")
)

// BookRepository reads the book catalog. The engine never writes books.
type BookRepository interface {
	ByID(ctx context.Context, id int64) (*model.Book, error)
	ByIDs(ctx context.Context, ids []int64) ([]*model.Book, error)
}

type bookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sqlx.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) ByID(ctx context.Context, id int64) (*model.Book, error) {
	book := &model.Book{}
	query := `SELECT * FROM books WHERE id = $1`

	err := r.db.GetContext(ctx, book, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	return book, nil
}

// ByIDs returns the books that exist among ids, in no particular order.
func (r *bookRepository) ByIDs(ctx context.Context, ids []int64) ([]*model.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM books WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var books []*model.Book
	err = r.db.SelectContext(ctx, &books, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return books, nil
}
