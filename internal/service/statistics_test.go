package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepbookstep/server/internal/model"
)

func TestStatisticsForNewUser(t *testing.T) {
	f := newFixture(t)

	stats, err := f.stats.Statistics(context.Background(), userID, 0)
	require.NoError(t, err)

	assert.Equal(t, model.BookSummary{}, stats.BookSummary)
	assert.Equal(t, 2025, stats.MonthlyGraph.Year)
	require.Len(t, stats.MonthlyGraph.MonthlyData, 12)
	assert.True(t, stats.MonthlyGraph.MonthlyData[3].IsCurrentMonth)
	assert.Equal(t, model.CumulativeTime{}, stats.CumulativeTime)
	assert.Equal(t, model.GoalAchievement{}, stats.GoalAchievement)
	assert.Equal(t, 0, stats.CategoryPreference.TotalBookCount)
	assert.Empty(t, stats.CategoryPreference.Categories)
}

func TestStatisticsRejectsInvalidYear(t *testing.T) {
	f := newFixture(t)

	_, err := f.stats.Statistics(context.Background(), userID, -3)
	assert.ErrorIs(t, err, ErrInvalidYear)

	_, err = f.stats.MonthlyGraph(context.Background(), userID, -1)
	assert.ErrorIs(t, err, ErrInvalidYear)
}

// seedHistory builds a small reading history:
//   - The Little Prince: DAILY PAGE 20 from Apr 1, read 25 on Apr 1 and again
//     25 on Apr 3, finished Apr 3. One of three days achieved.
//   - Sapiens: WEEKLY TIME 30 from Apr 3, 1200s + 700s, finished Apr 5.
//     Its single period is achieved.
//   - Walden: finished Apr 5 without a goal.
func seedHistory(t *testing.T, f *fixture) {
	t.Helper()

	f.setGoal(t, littlePrince, model.GoalPeriodDaily, model.GoalMetricPage, 20)
	f.read(t, littlePrince, day(2025, 4, 1), 25, nil)

	f.travel(day(2025, 4, 3))
	f.read(t, littlePrince, day(2025, 4, 3), 25, nil)
	f.finish(t, littlePrince, day(2025, 4, 3), 5)

	f.setGoal(t, sapiens, model.GoalPeriodWeekly, model.GoalMetricTime, 30)
	f.read(t, sapiens, day(2025, 4, 3), 10, ptr(1200))

	f.travel(day(2025, 4, 5))
	f.read(t, sapiens, day(2025, 4, 5), 20, ptr(700))
	f.finish(t, sapiens, day(2025, 4, 5), 4)
	f.finish(t, walden, day(2025, 4, 5), 3)
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	seedHistory(t, f)

	stats, err := f.stats.Statistics(context.Background(), userID, 2025)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.BookSummary.FinishedBookCount)
	assert.InDelta(t, 1.2, stats.BookSummary.TotalWeightKg, 1e-9)

	april := stats.MonthlyGraph.MonthlyData[3]
	assert.Equal(t, 4, april.Month)
	assert.Equal(t, 3, april.BookCount)
	assert.True(t, april.IsCurrentMonth)
	assert.Equal(t, 0, stats.MonthlyGraph.MonthlyData[4].BookCount)

	assert.Equal(t, model.CumulativeTime{TotalMinutes: 31, Hours: 0, Minutes: 31}, stats.CumulativeTime)

	// (1 + 1) achieved of (3 + 1) periods
	assert.Equal(t, 50, stats.GoalAchievement.AchievementRate)
	assert.Equal(t, 100, stats.GoalAchievement.MaxAchievementRate)

	pref := stats.CategoryPreference
	assert.Equal(t, 3, pref.TotalBookCount)
	require.Len(t, pref.Categories, 3)
	assert.Equal(t, model.CategoryShare{Rank: 1, CategoryName: "History", BookCount: 1, Percentage: 33}, pref.Categories[0])
	assert.Equal(t, "Novel", pref.Categories[1].CategoryName)
	assert.Equal(t, "Uncategorized", pref.Categories[2].CategoryName)
}

func TestMonthlyGraphOtherYear(t *testing.T) {
	f := newFixture(t)
	seedHistory(t, f)

	graph, err := f.stats.MonthlyGraph(context.Background(), userID, 2024)
	require.NoError(t, err)

	assert.Equal(t, 2024, graph.Year)
	for _, month := range graph.MonthlyData {
		assert.Zero(t, month.BookCount)
		assert.False(t, month.IsCurrentMonth)
	}
}

func TestCategoryPreferenceKeepsTopThree(t *testing.T) {
	f := newFixture(t)
	for _, bookID := range []int64{1, 2, 3, 4, 5} {
		f.finish(t, bookID, day(2025, 4, 1), 4)
	}

	pref, err := f.stats.CategoryPreference(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 5, pref.TotalBookCount)
	require.Len(t, pref.Categories, 3)
	assert.Equal(t, []string{"Computers", "History", "Novel"},
		[]string{pref.Categories[0].CategoryName, pref.Categories[1].CategoryName, pref.Categories[2].CategoryName})
	for i, c := range pref.Categories {
		assert.Equal(t, i+1, c.Rank)
		assert.Equal(t, 20, c.Percentage)
	}
}

func TestStatisticsUseTheGoalsOwnLifetime(t *testing.T) {
	f := newFixture(t)

	f.setGoal(t, sapiens, model.GoalPeriodDaily, model.GoalMetricPage, 10)
	f.read(t, sapiens, day(2025, 4, 1), 10, nil)
	f.travel(day(2025, 4, 2))
	f.read(t, sapiens, day(2025, 4, 2), 25, nil)

	// Active goal, lifetime Apr 1 to today (Apr 4): 2 of 4 days
	f.travel(day(2025, 4, 4))
	stats, err := f.stats.Statistics(context.Background(), userID, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.GoalAchievement.AchievementRate)
	assert.Equal(t, 50, stats.GoalAchievement.MaxAchievementRate)
}
