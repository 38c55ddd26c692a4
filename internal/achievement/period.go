// Package achievement splits a goal's lifetime into periods and decides
// whether each period met the goal's target. It does no I/O.
package achievement

import (
	"time"

	"github.com/stepbookstep/server/internal/model"
)

// Period is an inclusive range of calendar days. Start and End are midnight UTC
// values carrying only the civil date.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether day falls inside the period.
func (p Period) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of calendar days in the period.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// Day keeps only the calendar date of t, as seen in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayIn returns the calendar date of instant t in loc.
func DayIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(t.In(loc))
}

// Lifetime is the date range a goal was in force. An active goal runs until
// today; an inactive one until the day it was last updated. The range always
// holds at least one day.
func Lifetime(goal *model.Goal, today time.Time, loc *time.Location) Period {
	start := DayIn(goal.CreatedAt, loc)
	end := Day(today)
	if !goal.Active {
		end = DayIn(goal.UpdatedAt, loc)
	}
	if end.Before(start) {
		end = start
	}
	return Period{Start: start, End: end}
}

// Segment partitions lifetime into consecutive periods anchored on its start.
// The last period is truncated to the lifetime end.
func Segment(lifetime Period, period model.GoalPeriod) []Period {
	var periods []Period
	for k := 0; ; k++ {
		start := nthStart(lifetime.Start, period, k)
		if start.After(lifetime.End) {
			break
		}
		end := nthStart(lifetime.Start, period, k+1).AddDate(0, 0, -1)
		if end.After(lifetime.End) {
			end = lifetime.End
		}
		periods = append(periods, Period{Start: start, End: end})
	}
	return periods
}

// PeriodContaining returns the full, untruncated period of a goal anchored on
// anchor that contains day. Days before the anchor map to the first period.
func PeriodContaining(anchor time.Time, period model.GoalPeriod, day time.Time) Period {
	anchor, day = Day(anchor), Day(day)
	k := 0
	if day.After(anchor) {
		days := int(day.Sub(anchor).Hours() / 24)
		switch period {
		case model.GoalPeriodDaily:
			k = days
		case model.GoalPeriodWeekly:
			k = days / 7
		case model.GoalPeriodMonthly:
			k = (day.Year()-anchor.Year())*12 + int(day.Month()-anchor.Month())
			for k > 0 && nthStart(anchor, period, k).After(day) {
				k--
			}
		}
	}
	return Period{
		Start: nthStart(anchor, period, k),
		End:   nthStart(anchor, period, k+1).AddDate(0, 0, -1),
	}
}

func nthStart(anchor time.Time, period model.GoalPeriod, k int) time.Time {
	switch period {
	case model.GoalPeriodWeekly:
		return anchor.AddDate(0, 0, 7*k)
	case model.GoalPeriodMonthly:
		return addMonths(anchor, k)
	default:
		return anchor.AddDate(0, 0, k)
	}
}

// addMonths adds n months, clamping the day to the target month's length
// instead of overflowing into the next month.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}
