package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/stepbookstep/server/internal/db/dbtest"
	"github.com/stepbookstep/server/internal/model"
	"github.com/stepbookstep/server/internal/repository"
)

const (
	userID        int64 = 7
	littlePrince  int64 = 1 // 96 pages, Novel, 180 g
	sapiens       int64 = 2 // 464 pages, History, 620 g
	walden        int64 = 5 // 320 pages, no genre, 410 g
	unknownBookID int64 = 999
)

type fixture struct {
	db        *sqlx.DB
	now       time.Time
	goalRepo  repository.GoalRepository
	logRepo   repository.ReadingLogRepository
	shelfRepo repository.UserBookRepository
	catalog   *CatalogService
	goals     *GoalService
	logs      *ReadingLogService
	stats     *StatisticsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := dbtest.New(t)
	f := &fixture{
		db:        database,
		now:       time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
		goalRepo:  repository.NewGoalRepository(database),
		logRepo:   repository.NewReadingLogRepository(database),
		shelfRepo: repository.NewUserBookRepository(database),
	}
	clock := Clock{Location: time.UTC, Now: func() time.Time { return f.now }}
	locks := NewPairLocks()

	f.catalog = NewCatalogService(repository.NewBookRepository(database), nil)
	f.goals = NewGoalService(database, f.goalRepo, f.logRepo, f.shelfRepo, f.catalog, locks, clock)
	f.logs = NewReadingLogService(database, f.goalRepo, f.logRepo, f.shelfRepo, f.catalog, locks, clock)
	f.stats = NewStatisticsService(f.goalRepo, f.logRepo, f.shelfRepo, f.catalog, clock)
	return f
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v int) *int { return &v }

// travel moves the clock to 09:00 on the given day.
func (f *fixture) travel(d time.Time) {
	f.now = d.Add(9 * time.Hour)
}

func (f *fixture) setGoal(t *testing.T, bookID int64, period model.GoalPeriod, metric model.GoalMetric, target int) *model.GoalWithProgress {
	t.Helper()
	goal, err := f.goals.Upsert(context.Background(), userID, bookID, GoalInput{Period: period, Metric: metric, TargetAmount: target})
	require.NoError(t, err)
	return goal
}

func (f *fixture) read(t *testing.T, bookID int64, on time.Time, page int, seconds *int) string {
	t.Helper()
	id, err := f.logs.Create(context.Background(), userID, bookID, CreateLogInput{
		Status:          model.ReadingLogStatusReading,
		RecordDate:      &on,
		ReadQuantity:    ptr(page),
		DurationSeconds: seconds,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) finish(t *testing.T, bookID int64, on time.Time, rating int) {
	t.Helper()
	_, err := f.logs.Create(context.Background(), userID, bookID, CreateLogInput{
		Status:     model.ReadingLogStatusFinished,
		RecordDate: &on,
		Rating:     ptr(rating),
	})
	require.NoError(t, err)
}

func (f *fixture) countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, query, args...))
	return n
}
