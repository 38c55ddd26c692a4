package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stepbookstep/server/internal/db"
	"github.com/stepbookstep/server/internal/model"
)

var (
	ErrUserBookNotFound = errors.New("user book not found")
)

type UserBookRepository interface {
	ByUserBook(ctx context.Context, userID, bookID int64) (*model.UserBook, error)
	FindOrCreate(ctx context.Context, userID, bookID int64, status model.ReadStatus, now time.Time) (*model.UserBook, error)
	UpdateStatus(ctx context.Context, userBook *model.UserBook, status model.ReadStatus, now time.Time) error
	ByUser(ctx context.Context, userID int64) ([]*model.UserBook, error)
	FinishedByUser(ctx context.Context, userID int64) ([]*model.UserBook, error)
	WithTx(tx *sqlx.Tx) UserBookRepository
}

type userBookRepository struct {
	db db.Querier
}

func NewUserBookRepository(db *sqlx.DB) UserBookRepository {
	return &userBookRepository{db: db}
}

func (r *userBookRepository) WithTx(tx *sqlx.Tx) UserBookRepository {
	return &userBookRepository{db: tx}
}

func (r *userBookRepository) ByUserBook(ctx context.Context, userID, bookID int64) (*model.UserBook, error) {
	userBook := &model.UserBook{}
	query := `SELECT * FROM user_books WHERE user_id = $1 AND book_id = $2`

	err := r.db.GetContext(ctx, userBook, query, userID, bookID)
	if err == sql.ErrNoRows {
		return nil, ErrUserBookNotFound
	}
	if err != nil {
		return nil, err
	}

	return userBook, nil
}

// FindOrCreate returns the pair's shelf entry, creating it with status when
// missing. An existing entry is returned as is.
func (r *userBookRepository) FindOrCreate(ctx context.Context, userID, bookID int64, status model.ReadStatus, now time.Time) (*model.UserBook, error) {
	userBook, err := r.ByUserBook(ctx, userID, bookID)
	if err == nil {
		return userBook, nil
	}
	if !errors.Is(err, ErrUserBookNotFound) {
		return nil, err
	}

	userBook = &model.UserBook{
		ID:        uuid.New().String(),
		UserID:    userID,
		BookID:    bookID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == model.ReadStatusFinished {
		userBook.FinishedAt = &now
	}

	query := `INSERT INTO user_books (id, user_id, book_id, status, is_bookmarked, finished_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.db.ExecContext(ctx, query,
		userBook.ID,
		userBook.UserID,
		userBook.BookID,
		userBook.Status,
		userBook.IsBookmarked,
		userBook.FinishedAt,
		userBook.CreatedAt,
		userBook.UpdatedAt,
	)
	if isUniqueViolation(err) {
		// Created concurrently by another request
		return r.ByUserBook(ctx, userID, bookID)
	}
	if err != nil {
		return nil, err
	}

	return userBook, nil
}

// UpdateStatus moves the entry to status, stamping finished_at when it
// becomes FINISHED.
func (r *userBookRepository) UpdateStatus(ctx context.Context, userBook *model.UserBook, status model.ReadStatus, now time.Time) error {
	finishedAt := userBook.FinishedAt
	if status == model.ReadStatusFinished {
		finishedAt = &now
	}

	query := `UPDATE user_books SET status = $1, finished_at = $2, updated_at = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, status, finishedAt, now, userBook.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserBookNotFound
	}

	userBook.Status = status
	userBook.FinishedAt = finishedAt
	userBook.UpdatedAt = now
	return nil
}

func (r *userBookRepository) ByUser(ctx context.Context, userID int64) ([]*model.UserBook, error) {
	var userBooks []*model.UserBook
	query := `SELECT * FROM user_books WHERE user_id = $1 ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &userBooks, query, userID)
	if err != nil {
		return nil, err
	}

	return userBooks, nil
}

func (r *userBookRepository) FinishedByUser(ctx context.Context, userID int64) ([]*model.UserBook, error) {
	var userBooks []*model.UserBook
	query := `SELECT * FROM user_books WHERE user_id = $1 AND status = $2 ORDER BY finished_at ASC`

	err := r.db.SelectContext(ctx, &userBooks, query, userID, model.ReadStatusFinished)
	if err != nil {
		return nil, err
	}

	return userBooks, nil
}
