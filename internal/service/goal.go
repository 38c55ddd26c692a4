package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stepbookstep/server/internal/achievement"
	"github.com/stepbookstep/server/internal/db"
	"github.com/stepbookstep/server/internal/model"
	"github.com/stepbookstep/server/internal/repository"
)

type GoalInput struct {
	Period       model.GoalPeriod
	Metric       model.GoalMetric
	TargetAmount int
}

func (in GoalInput) validate() error {
	if in.TargetAmount <= 0 {
		return ErrTargetAmountInvalid
	}
	if !in.Period.Valid() {
		return ErrInvalidPeriod
	}
	if !in.Metric.Valid() {
		return ErrInvalidMetric
	}
	return nil
}

// GoalService manages the goal lifecycle: one active goal per (user, book),
// mutated in place while active and kept as history once deactivated.
type GoalService struct {
	db        *sqlx.DB
	goals     repository.GoalRepository
	logs      repository.ReadingLogRepository
	userBooks repository.UserBookRepository
	catalog   Catalog
	locks     *PairLocks
	clock     Clock
}

func NewGoalService(
	db *sqlx.DB,
	goals repository.GoalRepository,
	logs repository.ReadingLogRepository,
	userBooks repository.UserBookRepository,
	catalog Catalog,
	locks *PairLocks,
	clock Clock,
) *GoalService {
	return &GoalService{
		db:        db,
		goals:     goals,
		logs:      logs,
		userBooks: userBooks,
		catalog:   catalog,
		locks:     locks,
		clock:     clock,
	}
}

// Upsert sets the pair's goal. An active goal keeps its id and creation time
// and only has its period, metric and target replaced.
func (s *GoalService) Upsert(ctx context.Context, userID, bookID int64, in GoalInput) (*model.GoalWithProgress, error) {
	err := in.validate()
	if err != nil {
		return nil, err
	}

	book, err := s.catalog.Resolve(ctx, bookID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID, bookID)
	defer unlock()

	goal, err := s.upsert(ctx, userID, bookID, in)
	if errors.Is(err, repository.ErrActiveGoalExists) {
		// Another instance inserted the active goal first; retry as an update
		goal, err = s.upsert(ctx, userID, bookID, in)
	}
	if err != nil {
		slog.Error("failed to upsert goal", "error", err, "user_id", userID, "book_id", bookID)
		return nil, fmt.Errorf("failed to upsert goal: %w", err)
	}

	return s.withProgress(ctx, goal, book)
}

func (s *GoalService) upsert(ctx context.Context, userID, bookID int64, in GoalInput) (*model.Goal, error) {
	now := s.clock.now()
	var goal *model.Goal

	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		err := db.LockPair(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}

		err = s.markReading(ctx, tx, userID, bookID, now)
		if err != nil {
			return err
		}

		goals := s.goals.WithTx(tx)
		active, err := goals.Active(ctx, userID, bookID)
		if errors.Is(err, repository.ErrGoalNotFound) {
			goal = &model.Goal{
				ID:           uuid.New().String(),
				UserID:       userID,
				BookID:       bookID,
				Period:       in.Period,
				Metric:       in.Metric,
				TargetAmount: in.TargetAmount,
				Active:       true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			return goals.Create(ctx, goal)
		}
		if err != nil {
			return err
		}

		active.Period = in.Period
		active.Metric = in.Metric
		active.TargetAmount = in.TargetAmount
		active.UpdatedAt = now
		goal = active
		return goals.Update(ctx, goal)
	})
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// markReading moves the pair's shelf entry to READING, creating it if needed.
func (s *GoalService) markReading(ctx context.Context, tx *sqlx.Tx, userID, bookID int64, now time.Time) error {
	userBooks := s.userBooks.WithTx(tx)

	userBook, err := userBooks.FindOrCreate(ctx, userID, bookID, model.ReadStatusReading, now)
	if err != nil {
		return err
	}
	if userBook.Status == model.ReadStatusReading {
		return nil
	}
	return userBooks.UpdateStatus(ctx, userBook, model.ReadStatusReading, now)
}

// Delete deactivates the pair's active goal. The row stays for statistics.
func (s *GoalService) Delete(ctx context.Context, userID, bookID int64) error {
	unlock := s.locks.Lock(userID, bookID)
	defer unlock()

	return db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		err := db.LockPair(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}

		goals := s.goals.WithTx(tx)
		goal, err := goals.Active(ctx, userID, bookID)
		if err != nil {
			return err
		}

		goal.Active = false
		goal.UpdatedAt = s.clock.now()
		return goals.Update(ctx, goal)
	})
}

// ActiveGoalWithProgress returns the pair's active goal or ErrGoalNotFound.
func (s *GoalService) ActiveGoalWithProgress(ctx context.Context, userID, bookID int64) (*model.GoalWithProgress, error) {
	goal, err := s.goals.Active(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	return s.resolveWithProgress(ctx, goal)
}

// GoalWithProgress returns the most recently created goal of the pair,
// active or not.
func (s *GoalService) GoalWithProgress(ctx context.Context, userID, bookID int64) (*model.GoalWithProgress, error) {
	goal, err := s.goals.Latest(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	return s.resolveWithProgress(ctx, goal)
}

func (s *GoalService) resolveWithProgress(ctx context.Context, goal *model.Goal) (*model.GoalWithProgress, error) {
	book, err := s.catalog.Resolve(ctx, goal.BookID)
	if err != nil {
		return nil, err
	}
	return s.withProgress(ctx, goal, book)
}

func (s *GoalService) withProgress(ctx context.Context, goal *model.Goal, book *model.Book) (*model.GoalWithProgress, error) {
	logs, err := s.logs.ByUserBook(ctx, goal.UserID, goal.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reading logs: %w", err)
	}

	return &model.GoalWithProgress{
		Goal:           *goal,
		Progress:       bookProgress(logs, book),
		AchievedAmount: currentVerdict(goal, logs, s.clock).AchievedAmount,
	}, nil
}

// Routines lists the user's active goals, newest first, with the progress of
// the period containing today. Goals whose book no longer resolves are skipped.
func (s *GoalService) Routines(ctx context.Context, userID int64) ([]model.Routine, error) {
	goals, err := s.goals.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	routines := make([]model.Routine, 0, len(goals))
	if len(goals) == 0 {
		return routines, nil
	}

	bookIDs := make([]int64, 0, len(goals))
	for _, goal := range goals {
		bookIDs = append(bookIDs, goal.BookID)
	}

	books, err := s.catalog.ResolveMany(ctx, bookIDs)
	if err != nil {
		return nil, err
	}

	logs, err := s.logs.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	logsByBook := groupLogsByBook(logs)

	userBooks, err := s.userBooks.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	statuses := make(map[int64]model.ReadStatus, len(userBooks))
	for _, userBook := range userBooks {
		statuses[userBook.BookID] = userBook.Status
	}

	for _, goal := range goals {
		book, ok := books[goal.BookID]
		if !ok {
			slog.Warn("skipping routine for unknown book", "user_id", userID, "book_id", goal.BookID)
			continue
		}

		status, ok := statuses[goal.BookID]
		if !ok {
			status = model.ReadStatusNotStarted
		}

		bookLogs := logsByBook[goal.BookID]
		achieved := currentVerdict(goal, bookLogs, s.clock).AchievedAmount

		routines = append(routines, model.Routine{
			GoalID:          goal.ID,
			BookID:          book.ID,
			BookTitle:       book.Title,
			BookAuthor:      book.Author,
			BookCoverURL:    book.CoverURL,
			BookPublisher:   book.Publisher,
			BookPubYear:     book.PubYear,
			TotalPages:      book.TotalPages,
			BookStatus:      status,
			Progress:        achievement.ProgressPercent(latestPage(bookLogs), book.TotalPages),
			Period:          goal.Period,
			Metric:          goal.Metric,
			TargetAmount:    goal.TargetAmount,
			AchievedAmount:  achieved,
			RemainingAmount: max(0, goal.TargetAmount-achieved),
		})
	}

	return routines, nil
}
