package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepbookstep/server/internal/model"
)

func TestCreateLogRequiresActiveGoalWhileReading(t *testing.T) {
	f := newFixture(t)
	on := day(2025, 4, 1)

	_, err := f.logs.Create(context.Background(), userID, littlePrince, CreateLogInput{
		Status:       model.ReadingLogStatusReading,
		RecordDate:   &on,
		ReadQuantity: ptr(10),
	})

	assert.ErrorIs(t, err, ErrGoalNotFound)
	assert.Equal(t, 0, f.countRows(t, `SELECT COUNT(*) FROM reading_logs`))
}

func TestCreateLogUnknownBook(t *testing.T) {
	f := newFixture(t)

	_, err := f.logs.Create(context.Background(), userID, unknownBookID, CreateLogInput{
		Status: model.ReadingLogStatusFinished,
		Rating: ptr(3),
	})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestCreateLogRejectsPageGoingBack(t *testing.T) {
	f := newFixture(t)
	f.setGoal(t, littlePrince, model.GoalPeriodDaily, model.GoalMetricPage, 10)
	f.read(t, littlePrince, day(2025, 4, 1), 15, nil)

	on := day(2025, 4, 2)
	_, err := f.logs.Create(context.Background(), userID, littlePrince, CreateLogInput{
		Status:       model.ReadingLogStatusReading,
		RecordDate:   &on,
		ReadQuantity: ptr(10),
	})

	assert.ErrorIs(t, err, ErrPageCannotGoBack)
	assert.Equal(t, 1, f.countRows(t, `SELECT COUNT(*) FROM reading_logs`))
}

func TestCreateLogFinishedRequiresRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setGoal(t, littlePrince, model.GoalPeriodDaily, model.GoalMetricPage, 10)

	_, err := f.logs.Create(ctx, userID, littlePrince, CreateLogInput{Status: model.ReadingLogStatusFinished})
	assert.ErrorIs(t, err, ErrRatingRequired)

	shelf, err := f.shelfRepo.ByUserBook(ctx, userID, littlePrince)
	require.NoError(t, err)
	assert.Equal(t, model.ReadStatusReading, shelf.Status)

	_, err = f.goalRepo.Active(ctx, userID, littlePrince)
	assert.NoError(t, err)
	assert.Equal(t, 0, f.countRows(t, `SELECT COUNT(*) FROM reading_logs`))
}

func TestCreateLogFinishedClosesReading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goal := f.setGoal(t, littlePrince, model.GoalPeriodDaily, model.GoalMetricPage, 10)
	f.read(t, littlePrince, day(2025, 4, 1), 40, nil)

	f.travel(day(2025, 4, 2))
	id, err := f.logs.Create(ctx, userID, littlePrince, CreateLogInput{
		Status:          model.ReadingLogStatusFinished,
		ReadQuantity:    ptr(96),
		DurationSeconds: ptr(600),
		Rating:          ptr(5),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = f.goalRepo.Active(ctx, userID, littlePrince)
	assert.ErrorIs(t, err, ErrGoalNotFound)

	latest, err := f.goalRepo.Latest(ctx, userID, littlePrince)
	require.NoError(t, err)
	assert.Equal(t, goal.ID, latest.ID)
	assert.True(t, latest.UpdatedAt.Equal(f.now))

	shelf, err := f.shelfRepo.ByUserBook(ctx, userID, littlePrince)
	require.NoError(t, err)
	assert.Equal(t, model.ReadStatusFinished, shelf.Status)
	require.NotNil(t, shelf.FinishedAt)

	logs, err := f.logRepo.ByUserBook(ctx, userID, littlePrince)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	finished := logs[1]
	assert.Equal(t, model.ReadingLogStatusFinished, finished.Status)
	assert.True(t, finished.RecordDate.Equal(day(2025, 4, 2)))
	assert.Nil(t, finished.ReadQuantity)
	assert.Nil(t, finished.DurationSeconds)
	assert.Equal(t, 5, *finished.Rating)
}

func TestCreateLogStoppedWithoutGoal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.logs.Create(ctx, userID, walden, CreateLogInput{Status: model.ReadingLogStatusStopped, Rating: ptr(2)})
	require.NoError(t, err)

	shelf, err := f.shelfRepo.ByUserBook(ctx, userID, walden)
	require.NoError(t, err)
	assert.Equal(t, model.ReadStatusStopped, shelf.Status)
	assert.Nil(t, shelf.FinishedAt)
}

func TestCreateLogTimeGoalRequiresDuration(t *testing.T) {
	f := newFixture(t)
	f.setGoal(t, sapiens, model.GoalPeriodDaily, model.GoalMetricTime, 30)

	_, err := f.logs.Create(context.Background(), userID, sapiens, CreateLogInput{
		Status:       model.ReadingLogStatusReading,
		ReadQuantity: ptr(20),
	})
	assert.ErrorIs(t, err, ErrDurationRequired)

	f.read(t, sapiens, day(2025, 4, 1), 20, ptr(900))
}

func TestCreateLogValidation(t *testing.T) {
	f := newFixture(t)
	f.setGoal(t, littlePrince, model.GoalPeriodDaily, model.GoalMetricPage, 10)

	tests := []struct {
		name string
		in   CreateLogInput
		want error
	}{
		{"unknown status", CreateLogInput{Status: "PAUSED"}, ErrInvalidStatus},
		{"missing quantity", CreateLogInput{Status: model.ReadingLogStatusReading}, ErrReadQuantityRequired},
		{"negative quantity", CreateLogInput{Status: model.ReadingLogStatusReading, ReadQuantity: ptr(-1)}, ErrInvalidInput},
		{"beyond last page", CreateLogInput{Status: model.ReadingLogStatusReading, ReadQuantity: ptr(97)}, ErrPageExceedsTotal},
		{"zero duration", CreateLogInput{Status: model.ReadingLogStatusReading, ReadQuantity: ptr(5), DurationSeconds: ptr(0)}, ErrInvalidInput},
		{"rating too high", CreateLogInput{Status: model.ReadingLogStatusFinished, Rating: ptr(6)}, ErrInvalidRating},
		{"rating too low", CreateLogInput{Status: model.ReadingLogStatusStopped, Rating: ptr(0)}, ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.logs.Create(context.Background(), userID, littlePrince, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 0, f.countRows(t, `SELECT COUNT(*) FROM reading_logs`))
}

func TestCreateLogDiscardsRatingWhileReading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setGoal(t, littlePrince, model.GoalPeriodDaily, model.GoalMetricPage, 10)

	_, err := f.logs.Create(ctx, userID, littlePrince, CreateLogInput{
		Status:       model.ReadingLogStatusReading,
		ReadQuantity: ptr(10),
		Rating:       ptr(4),
	})
	require.NoError(t, err)

	logs, err := f.logRepo.ByUserBook(ctx, userID, littlePrince)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].Rating)
	assert.True(t, logs[0].RecordDate.Equal(day(2025, 4, 1)))
}

func TestPersistedReadQuantitiesNeverDecrease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setGoal(t, sapiens, model.GoalPeriodDaily, model.GoalMetricPage, 10)
	rng := rand.New(rand.NewPCG(3, 5))

	for i := 0; i < 60; i++ {
		f.now = f.now.Add(time.Minute)
		on := day(2025, 4, 1).AddDate(0, 0, i/3)
		_, err := f.logs.Create(ctx, userID, sapiens, CreateLogInput{
			Status:       model.ReadingLogStatusReading,
			RecordDate:   &on,
			ReadQuantity: ptr(rng.IntN(465)),
		})
		if err != nil {
			assert.ErrorIs(t, err, ErrPageCannotGoBack)
		}
	}

	logs, err := f.logRepo.ByUserBook(ctx, userID, sapiens)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	for i := 1; i < len(logs); i++ {
		assert.GreaterOrEqual(t, *logs[i].ReadQuantity, *logs[i-1].ReadQuantity)
	}
}

func TestConcurrentLogsNeverDecrease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setGoal(t, sapiens, model.GoalPeriodDaily, model.GoalMetricPage, 10)

	// Every clock read is a distinct second so created_at orders the rows
	var ticks atomic.Int64
	start := f.now
	clock := Clock{Location: time.UTC, Now: func() time.Time {
		return start.Add(time.Duration(ticks.Add(1)) * time.Second)
	}}
	logs := NewReadingLogService(f.db, f.goalRepo, f.logRepo, f.shelfRepo, f.catalog, NewPairLocks(), clock)

	const writers = 24
	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
	)
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		page := 40 + i
		if i%2 == 0 {
			page = 300 + i
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := logs.Create(ctx, userID, sapiens, CreateLogInput{
				Status:       model.ReadingLogStatusReading,
				ReadQuantity: ptr(page),
			})
			if err == nil {
				accepted.Add(1)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrPageCannotGoBack)
		}
	}

	persisted, err := f.logRepo.ByUserBook(ctx, userID, sapiens)
	require.NoError(t, err)
	require.NotEmpty(t, persisted)
	assert.Len(t, persisted, int(accepted.Load()))
	for i := 1; i < len(persisted); i++ {
		assert.True(t, persisted[i].CreatedAt.After(persisted[i-1].CreatedAt))
		assert.GreaterOrEqual(t, *persisted[i].ReadQuantity, *persisted[i-1].ReadQuantity)
	}
}

func TestReadingDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	detail, err := f.logs.ReadingDetail(ctx, userID, littlePrince)
	require.NoError(t, err)
	assert.Equal(t, model.ReadStatusNotStarted, detail.BookStatus)
	assert.Nil(t, detail.Goal)
	assert.Empty(t, detail.ReadingLogs)

	f.setGoal(t, littlePrince, model.GoalPeriodDaily, model.GoalMetricTime, 20)
	f.read(t, littlePrince, day(2025, 4, 1), 24, ptr(1200))
	f.read(t, littlePrince, day(2025, 4, 2), 48, ptr(1500))
	f.finish(t, littlePrince, day(2025, 4, 3), 4)

	detail, err = f.logs.ReadingDetail(ctx, userID, littlePrince)
	require.NoError(t, err)

	assert.Equal(t, model.ReadStatusFinished, detail.BookStatus)
	require.NotNil(t, detail.Goal)
	assert.False(t, detail.Goal.IsActive)
	assert.Equal(t, model.GoalMetricTime, detail.Goal.Metric)
	assert.Equal(t, 48, detail.CurrentPage)
	assert.Equal(t, 96, detail.TotalPages)
	assert.Equal(t, 50, detail.ProgressPercent)
	assert.Equal(t, "2025-04-01", *detail.StartDate)
	assert.Equal(t, "2025-04-03", *detail.EndDate)
	assert.Equal(t, 4, *detail.Rating)

	require.Len(t, detail.ReadingLogs, 3)
	assert.Equal(t, model.ReadingLogStatusFinished, detail.ReadingLogs[0].BookStatus)
	assert.Equal(t, 50, detail.ReadingLogs[0].ProgressPercent)
	assert.Equal(t, "2025-04-01", detail.ReadingLogs[2].RecordDate)
	assert.Equal(t, 25, detail.ReadingLogs[2].ProgressPercent)
	assert.Equal(t, 1200, *detail.ReadingLogs[2].DurationSeconds)
}

func TestReadingDetailUnknownBook(t *testing.T) {
	f := newFixture(t)
	_, err := f.logs.ReadingDetail(context.Background(), userID, unknownBookID)
	assert.ErrorIs(t, err, ErrBookNotFound)
}
