package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/stepbookstep/server/internal/db"
	"github.com/stepbookstep/server/internal/model"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
	// ErrActiveGoalExists is returned when a concurrent writer already
	// inserted the active goal for the pair.
	ErrActiveGoalExists = errors.New("active goal already exists")
)

type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	Active(ctx context.Context, userID, bookID int64) (*model.Goal, error)
	Latest(ctx context.Context, userID, bookID int64) (*model.Goal, error)
	ActiveByUser(ctx context.Context, userID int64) ([]*model.Goal, error)
	ByUser(ctx context.Context, userID int64) ([]*model.Goal, error)
	Update(ctx context.Context, goal *model.Goal) error
	WithTx(tx *sqlx.Tx) GoalRepository
}

type goalRepository struct {
	db db.Querier
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) WithTx(tx *sqlx.Tx) GoalRepository {
	return &goalRepository{db: tx}
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	query := `INSERT INTO reading_goals (id, user_id, book_id, period, metric, target_amount, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.BookID,
		goal.Period,
		goal.Metric,
		goal.TargetAmount,
		goal.Active,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrActiveGoalExists
	}

	return err
}

func (r *goalRepository) Active(ctx context.Context, userID, bookID int64) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM reading_goals WHERE user_id = $1 AND book_id = $2 AND is_active = TRUE`

	err := r.db.GetContext(ctx, goal, query, userID, bookID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// Latest returns the most recently created goal of the pair, active or not.
func (r *goalRepository) Latest(ctx context.Context, userID, bookID int64) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM reading_goals WHERE user_id = $1 AND book_id = $2
	          ORDER BY created_at DESC, id DESC LIMIT 1`

	err := r.db.GetContext(ctx, goal, query, userID, bookID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// ActiveByUser returns the user's active goals, newest first.
func (r *goalRepository) ActiveByUser(ctx context.Context, userID int64) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM reading_goals WHERE user_id = $1 AND is_active = TRUE
	          ORDER BY created_at DESC, id DESC`

	err := r.db.SelectContext(ctx, &goals, query, userID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// ByUser returns every goal the user ever had, active and historical.
func (r *goalRepository) ByUser(ctx context.Context, userID int64) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM reading_goals WHERE user_id = $1 ORDER BY created_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &goals, query, userID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// Update writes the mutable fields of a goal. created_at is never touched.
func (r *goalRepository) Update(ctx context.Context, goal *model.Goal) error {
	query := `UPDATE reading_goals
	          SET period = $1, metric = $2, target_amount = $3, is_active = $4, updated_at = $5
	          WHERE id = $6 AND user_id = $7`

	result, err := r.db.ExecContext(ctx, query,
		goal.Period,
		goal.Metric,
		goal.TargetAmount,
		goal.Active,
		goal.UpdatedAt,
		goal.ID,
		goal.UserID,
	)
	if isUniqueViolation(err) {
		return ErrActiveGoalExists
	}
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}
