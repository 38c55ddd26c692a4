package achievement

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/stepbookstep/server/internal/model"
)

// Verdict is the outcome of one period.
type Verdict struct {
	Period         Period `json:"period"`
	AchievedAmount int    `json:"achievedAmount"`
	Achieved       bool   `json:"achieved"`
}

// Result holds every period verdict of one goal.
type Result struct {
	Goal          *model.Goal `json:"-"`
	Verdicts      []Verdict   `json:"verdicts"`
	AchievedCount int         `json:"achievedCount"`
	TotalCount    int         `json:"totalCount"`
}

// Rate is the percentage of achieved periods of the goal.
func (r Result) Rate() int {
	return Rate(r.AchievedCount, r.TotalCount)
}

// Rate returns round(100 * achieved / total), or 0 when total is 0.
func Rate(achieved, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(achieved) / float64(total)))
}

// SortLogs orders logs by record date, then creation time. The calculator
// expects this order.
func SortLogs(logs []*model.ReadingLog) {
	slices.SortStableFunc(logs, compareLogs)
}

func compareLogs(a, b *model.ReadingLog) int {
	if c := Day(a.RecordDate).Compare(Day(b.RecordDate)); c != 0 {
		return c
	}
	return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
}

// Evaluate decides a single period. logs must be sorted with SortLogs and
// belong to the goal's (user, book) pair.
func Evaluate(p Period, metric model.GoalMetric, target int, logs []*model.ReadingLog) Verdict {
	var t tally
	for _, log := range logs {
		day := Day(log.RecordDate)
		if day.Before(p.Start) {
			t.before(log)
			continue
		}
		if day.After(p.End) {
			break
		}
		t.within(log)
	}
	return t.verdict(p, metric, target)
}

// EvaluateGoal segments the goal's lifetime and decides every period in one
// pass over logs. logs must be sorted with SortLogs.
func EvaluateGoal(goal *model.Goal, logs []*model.ReadingLog, today time.Time, loc *time.Location) Result {
	periods := Segment(Lifetime(goal, today, loc), goal.Period)
	result := Result{Goal: goal, Verdicts: make([]Verdict, 0, len(periods))}

	var baseline tally
	i := 0
	for _, p := range periods {
		for i < len(logs) && Day(logs[i].RecordDate).Before(p.Start) {
			baseline.before(logs[i])
			i++
		}
		t := tally{baseline: baseline.baseline}
		for i < len(logs) && !Day(logs[i].RecordDate).After(p.End) {
			t.within(logs[i])
			baseline.before(logs[i])
			i++
		}
		v := t.verdict(p, goal.Metric, goal.TargetAmount)
		result.Verdicts = append(result.Verdicts, v)
		if v.Achieved {
			result.AchievedCount++
		}
	}
	result.TotalCount = len(result.Verdicts)
	return result
}

// tally accumulates what one period needs to be decided.
type tally struct {
	baseline int
	endValue int
	hasEnd   bool
	seconds  int
}

func (t *tally) before(log *model.ReadingLog) {
	if log.ReadQuantity != nil {
		t.baseline = *log.ReadQuantity
	}
}

func (t *tally) within(log *model.ReadingLog) {
	if log.ReadQuantity != nil {
		t.endValue = *log.ReadQuantity
		t.hasEnd = true
	}
	if log.DurationSeconds != nil {
		t.seconds += *log.DurationSeconds
	}
}

func (t *tally) verdict(p Period, metric model.GoalMetric, target int) Verdict {
	v := Verdict{Period: p}
	switch metric {
	case model.GoalMetricTime:
		v.AchievedAmount = t.seconds / 60
		v.Achieved = v.AchievedAmount >= target
	default:
		if !t.hasEnd {
			return v
		}
		v.AchievedAmount = max(0, t.endValue-t.baseline)
		v.Achieved = v.AchievedAmount >= target
	}
	return v
}

// ProgressPercent returns clamp(100 * page / totalPages, 0, 100), or 0 for a
// book without a page count.
func ProgressPercent(page, totalPages int) int {
	if totalPages <= 0 {
		return 0
	}
	return min(100, max(0, page*100/totalPages))
}
