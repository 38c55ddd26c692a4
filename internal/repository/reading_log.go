package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/stepbookstep/server/internal/db"
	"github.com/stepbookstep/server/internal/model"
)

// ReadingLogRepository is append-only: logs are never updated or deleted.
// Lists are ordered by record date, then creation time.
type ReadingLogRepository interface {
	Create(ctx context.Context, log *model.ReadingLog) error
	MaxReadQuantity(ctx context.Context, userID, bookID int64) (int, bool, error)
	ByUserBook(ctx context.Context, userID, bookID int64) ([]*model.ReadingLog, error)
	ByUser(ctx context.Context, userID int64) ([]*model.ReadingLog, error)
	WithTx(tx *sqlx.Tx) ReadingLogRepository
}

type readingLogRepository struct {
	db db.Querier
}

func NewReadingLogRepository(db *sqlx.DB) ReadingLogRepository {
	return &readingLogRepository{db: db}
}

func (r *readingLogRepository) WithTx(tx *sqlx.Tx) ReadingLogRepository {
	return &readingLogRepository{db: tx}
}

func (r *readingLogRepository) Create(ctx context.Context, log *model.ReadingLog) error {
	query := `INSERT INTO reading_logs (id, user_id, book_id, book_status, record_date, read_quantity, duration_seconds, rating, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.UserID,
		log.BookID,
		log.Status,
		log.RecordDate,
		log.ReadQuantity,
		log.DurationSeconds,
		log.Rating,
		log.CreatedAt,
	)

	return err
}

// MaxReadQuantity returns the highest cumulative page logged for the pair.
// The bool is false when the pair has no log with a read quantity.
func (r *readingLogRepository) MaxReadQuantity(ctx context.Context, userID, bookID int64) (int, bool, error) {
	var maxQuantity sql.NullInt64
	query := `SELECT MAX(read_quantity) FROM reading_logs WHERE user_id = $1 AND book_id = $2`

	err := r.db.GetContext(ctx, &maxQuantity, query, userID, bookID)
	if err != nil {
		return 0, false, err
	}

	return int(maxQuantity.Int64), maxQuantity.Valid, nil
}

func (r *readingLogRepository) ByUserBook(ctx context.Context, userID, bookID int64) ([]*model.ReadingLog, error) {
	var logs []*model.ReadingLog
	query := `SELECT * FROM reading_logs WHERE user_id = $1 AND book_id = $2
	          ORDER BY record_date ASC, created_at ASC`

	err := r.db.SelectContext(ctx, &logs, query, userID, bookID)
	if err != nil {
		return nil, err
	}

	return logs, nil
}

// ByUser returns all of a user's logs across books in a single query.
func (r *readingLogRepository) ByUser(ctx context.Context, userID int64) ([]*model.ReadingLog, error) {
	var logs []*model.ReadingLog
	query := `SELECT * FROM reading_logs WHERE user_id = $1
	          ORDER BY book_id ASC, record_date ASC, created_at ASC`

	err := r.db.SelectContext(ctx, &logs, query, userID)
	if err != nil {
		return nil, err
	}

	return logs, nil
}
