package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepbookstep/server/internal/achievement"
	"github.com/stepbookstep/server/internal/model"
)

func TestCurrentVerdictStopsAtDeactivation(t *testing.T) {
	goal := &model.Goal{
		Period:       model.GoalPeriodWeekly,
		Metric:       model.GoalMetricPage,
		TargetAmount: 30,
		Active:       false,
		CreatedAt:    day(2025, 4, 1).Add(9 * time.Hour),
		UpdatedAt:    day(2025, 4, 3).Add(18 * time.Hour),
	}
	logs := []*model.ReadingLog{
		{Status: model.ReadingLogStatusReading, RecordDate: day(2025, 4, 1), ReadQuantity: ptr(10), CreatedAt: day(2025, 4, 1)},
		// Read under a later goal, after this one ended
		{Status: model.ReadingLogStatusReading, RecordDate: day(2025, 4, 5), ReadQuantity: ptr(60), CreatedAt: day(2025, 4, 5)},
	}
	clock := Clock{Location: time.UTC, Now: func() time.Time { return day(2025, 4, 20).Add(9 * time.Hour) }}

	verdict := currentVerdict(goal, logs, clock)

	assert.True(t, verdict.Period.Start.Equal(day(2025, 4, 1)))
	assert.True(t, verdict.Period.End.Equal(day(2025, 4, 3)))
	assert.Equal(t, 10, verdict.AchievedAmount)
	assert.False(t, verdict.Achieved)

	result := achievement.EvaluateGoal(goal, logs, clock.today(), time.UTC)
	require.NotEmpty(t, result.Verdicts)
	last := result.Verdicts[len(result.Verdicts)-1]
	assert.Equal(t, last.AchievedAmount, verdict.AchievedAmount)
	assert.True(t, last.Period.End.Equal(verdict.Period.End))
}

func TestCurrentVerdictActiveGoalKeepsFullPeriod(t *testing.T) {
	goal := &model.Goal{
		Period:       model.GoalPeriodWeekly,
		Metric:       model.GoalMetricPage,
		TargetAmount: 30,
		Active:       true,
		CreatedAt:    day(2025, 4, 1).Add(9 * time.Hour),
		UpdatedAt:    day(2025, 4, 1).Add(9 * time.Hour),
	}
	clock := Clock{Location: time.UTC, Now: func() time.Time { return day(2025, 4, 3).Add(9 * time.Hour) }}

	verdict := currentVerdict(goal, nil, clock)

	assert.True(t, verdict.Period.End.Equal(day(2025, 4, 3)))
}
