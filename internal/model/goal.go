package model

import (
	"time"
)

type GoalPeriod string

const (
	GoalPeriodDaily   GoalPeriod = "DAILY"
	GoalPeriodWeekly  GoalPeriod = "WEEKLY"
	GoalPeriodMonthly GoalPeriod = "MONTHLY"
)

func (p GoalPeriod) Valid() bool {
	switch p {
	case GoalPeriodDaily, GoalPeriodWeekly, GoalPeriodMonthly:
		return true
	}
	return false
}

type GoalMetric string

const (
	GoalMetricPage GoalMetric = "PAGE"
	GoalMetricTime GoalMetric = "TIME"
)

func (m GoalMetric) Valid() bool {
	return m == GoalMetricPage || m == GoalMetricTime
}

// Goal is a periodic reading target on one (user, book) pair.
// Rows are never deleted; deactivated goals stay for statistics.
type Goal struct {
	ID           string     `db:"id" json:"goalId"`
	UserID       int64      `db:"user_id" json:"userId"`
	BookID       int64      `db:"book_id" json:"bookId"`
	Period       GoalPeriod `db:"period" json:"period"`
	Metric       GoalMetric `db:"metric" json:"metric"`
	TargetAmount int        `db:"target_amount" json:"targetAmount"`
	Active       bool       `db:"is_active" json:"isActive"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// GoalWithProgress is a goal together with the book progress and the amount
// achieved in the period containing today.
type GoalWithProgress struct {
	Goal
	Progress       int `json:"progress"`
	AchievedAmount int `json:"achievedAmount"`
}
