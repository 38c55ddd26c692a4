package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stepbookstep/server/internal/achievement"
	"github.com/stepbookstep/server/internal/db"
	"github.com/stepbookstep/server/internal/model"
	"github.com/stepbookstep/server/internal/repository"
)

type CreateLogInput struct {
	Status          model.ReadingLogStatus
	RecordDate      *time.Time
	ReadQuantity    *int
	DurationSeconds *int
	Rating          *int
}

// ReadingLogService appends reading logs and applies their side effects on
// the shelf entry and the active goal.
type ReadingLogService struct {
	db        *sqlx.DB
	goals     repository.GoalRepository
	logs      repository.ReadingLogRepository
	userBooks repository.UserBookRepository
	catalog   Catalog
	locks     *PairLocks
	clock     Clock
}

func NewReadingLogService(
	db *sqlx.DB,
	goals repository.GoalRepository,
	logs repository.ReadingLogRepository,
	userBooks repository.UserBookRepository,
	catalog Catalog,
	locks *PairLocks,
	clock Clock,
) *ReadingLogService {
	return &ReadingLogService{
		db:        db,
		goals:     goals,
		logs:      logs,
		userBooks: userBooks,
		catalog:   catalog,
		locks:     locks,
		clock:     clock,
	}
}

// Create validates and appends a log. The insert, the shelf status change and
// the goal deactivation on FINISHED/STOPPED commit together or not at all.
func (s *ReadingLogService) Create(ctx context.Context, userID, bookID int64, in CreateLogInput) (string, error) {
	if !in.Status.Valid() {
		return "", ErrInvalidStatus
	}

	book, err := s.catalog.Resolve(ctx, bookID)
	if err != nil {
		return "", err
	}

	log := &model.ReadingLog{
		ID:         uuid.New().String(),
		UserID:     userID,
		BookID:     bookID,
		Status:     in.Status,
		RecordDate: s.clock.today(),
	}
	if in.RecordDate != nil {
		log.RecordDate = achievement.Day(*in.RecordDate)
	}

	if in.Status.Ends() {
		if in.Rating == nil {
			return "", ErrRatingRequired
		}
		if *in.Rating < 1 || *in.Rating > 5 {
			return "", ErrInvalidRating
		}
		log.Rating = in.Rating
	} else {
		log.ReadQuantity = in.ReadQuantity
		log.DurationSeconds = in.DurationSeconds
	}

	unlock := s.locks.Lock(userID, bookID)
	defer unlock()

	err = db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		err := db.LockPair(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}
		// Stamped under the pair lock so created_at order matches commit order
		log.CreatedAt = s.clock.now()

		goals := s.goals.WithTx(tx)
		if log.Status == model.ReadingLogStatusReading {
			err = s.validateReading(ctx, tx, goals, book, log)
			if err != nil {
				return err
			}
		}

		err = s.applyStatus(ctx, tx, log)
		if err != nil {
			return err
		}

		err = s.logs.WithTx(tx).Create(ctx, log)
		if err != nil {
			return fmt.Errorf("failed to create reading log: %w", err)
		}

		if log.Status.Ends() {
			return s.deactivateGoal(ctx, goals, userID, bookID, log.CreatedAt)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Debug("reading log created", "user_id", userID, "book_id", bookID, "status", log.Status)
	return log.ID, nil
}

func (s *ReadingLogService) validateReading(ctx context.Context, tx *sqlx.Tx, goals repository.GoalRepository, book *model.Book, log *model.ReadingLog) error {
	goal, err := goals.Active(ctx, log.UserID, log.BookID)
	if err != nil {
		return err
	}

	if log.ReadQuantity == nil {
		return ErrReadQuantityRequired
	}
	if *log.ReadQuantity < 0 {
		return ErrInvalidInput
	}
	if book.TotalPages > 0 && *log.ReadQuantity > book.TotalPages {
		return ErrPageExceedsTotal
	}

	if log.DurationSeconds == nil {
		if goal.Metric == model.GoalMetricTime {
			return ErrDurationRequired
		}
	} else if *log.DurationSeconds <= 0 {
		return ErrInvalidInput
	}

	maxPage, ok, err := s.logs.WithTx(tx).MaxReadQuantity(ctx, log.UserID, log.BookID)
	if err != nil {
		return err
	}
	if ok && maxPage > *log.ReadQuantity {
		return ErrPageCannotGoBack
	}
	return nil
}

// applyStatus moves the shelf entry to the status the log implies.
func (s *ReadingLogService) applyStatus(ctx context.Context, tx *sqlx.Tx, log *model.ReadingLog) error {
	userBooks := s.userBooks.WithTx(tx)
	status := log.Status.ReadStatus()

	userBook, err := userBooks.FindOrCreate(ctx, log.UserID, log.BookID, status, log.CreatedAt)
	if err != nil {
		return err
	}
	if userBook.Status == status {
		return nil
	}
	return userBooks.UpdateStatus(ctx, userBook, status, log.CreatedAt)
}

func (s *ReadingLogService) deactivateGoal(ctx context.Context, goals repository.GoalRepository, userID, bookID int64, now time.Time) error {
	goal, err := goals.Active(ctx, userID, bookID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	goal.Active = false
	goal.UpdatedAt = now
	return goals.Update(ctx, goal)
}

// ReadingDetail returns the pair's reading history, newest log first.
func (s *ReadingLogService) ReadingDetail(ctx context.Context, userID, bookID int64) (*model.ReadingDetail, error) {
	book, err := s.catalog.Resolve(ctx, bookID)
	if err != nil {
		return nil, err
	}

	detail := &model.ReadingDetail{
		BookStatus:  model.ReadStatusNotStarted,
		TotalPages:  book.TotalPages,
		ReadingLogs: []model.ReadingDetailEntry{},
	}

	userBook, err := s.userBooks.ByUserBook(ctx, userID, bookID)
	switch {
	case err == nil:
		detail.BookStatus = userBook.Status
	case !errors.Is(err, repository.ErrUserBookNotFound):
		return nil, err
	}

	showDuration := false
	goal, err := s.goals.Latest(ctx, userID, bookID)
	switch {
	case err == nil:
		detail.Goal = &model.ReadingDetailGoal{
			GoalID:       goal.ID,
			Period:       goal.Period,
			Metric:       goal.Metric,
			TargetAmount: goal.TargetAmount,
			IsActive:     goal.Active,
		}
		showDuration = goal.Metric == model.GoalMetricTime
	case !errors.Is(err, repository.ErrGoalNotFound):
		return nil, err
	}

	logs, err := s.logs.ByUserBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return detail, nil
	}

	detail.CurrentPage = latestPage(logs)
	detail.ProgressPercent = achievement.ProgressPercent(detail.CurrentPage, book.TotalPages)
	start := logs[0].RecordDate.Format(time.DateOnly)
	detail.StartDate = &start

	page := 0
	entries := make([]model.ReadingDetailEntry, 0, len(logs))
	for _, log := range logs {
		if log.ReadQuantity != nil {
			page = *log.ReadQuantity
		}
		if log.Rating != nil {
			detail.Rating = log.Rating
		}
		if log.Status.Ends() {
			end := log.RecordDate.Format(time.DateOnly)
			detail.EndDate = &end
		} else {
			detail.EndDate = nil
		}

		entry := model.ReadingDetailEntry{
			LogID:           log.ID,
			BookStatus:      log.Status,
			RecordDate:      log.RecordDate.Format(time.DateOnly),
			ReadQuantity:    log.ReadQuantity,
			ProgressPercent: achievement.ProgressPercent(page, book.TotalPages),
		}
		if showDuration {
			entry.DurationSeconds = log.DurationSeconds
		}
		entries = append(entries, entry)
	}
	slices.Reverse(entries)
	detail.ReadingLogs = entries

	return detail, nil
}
