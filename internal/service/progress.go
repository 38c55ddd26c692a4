package service

import (
	"github.com/stepbookstep/server/internal/achievement"
	"github.com/stepbookstep/server/internal/model"
)

// latestPage is the cumulative page of the newest log carrying one. logs must
// be sorted with achievement.SortLogs.
func latestPage(logs []*model.ReadingLog) int {
	for i := len(logs) - 1; i >= 0; i-- {
		if logs[i].ReadQuantity != nil {
			return *logs[i].ReadQuantity
		}
	}
	return 0
}

func bookProgress(logs []*model.ReadingLog, book *model.Book) int {
	if book == nil {
		return 0
	}
	return achievement.ProgressPercent(latestPage(logs), book.TotalPages)
}

// currentVerdict evaluates the goal's period containing the last day of its
// lifetime, which is today for an active goal. The period is cut at the end of
// the lifetime, as in EvaluateGoal.
func currentVerdict(goal *model.Goal, logs []*model.ReadingLog, clock Clock) achievement.Verdict {
	loc := clock.location()
	lifetime := achievement.Lifetime(goal, clock.today(), loc)
	period := achievement.PeriodContaining(lifetime.Start, goal.Period, lifetime.End)
	if period.End.After(lifetime.End) {
		period.End = lifetime.End
	}
	return achievement.Evaluate(period, goal.Metric, goal.TargetAmount, logs)
}

func groupLogsByBook(logs []*model.ReadingLog) map[int64][]*model.ReadingLog {
	grouped := make(map[int64][]*model.ReadingLog)
	for _, log := range logs {
		grouped[log.BookID] = append(grouped[log.BookID], log)
	}
	for _, bookLogs := range grouped {
		achievement.SortLogs(bookLogs)
	}
	return grouped
}
