package model

import (
	"time"
)

type ReadingLogStatus string

const (
	ReadingLogStatusReading  ReadingLogStatus = "READING"
	ReadingLogStatusFinished ReadingLogStatus = "FINISHED"
	ReadingLogStatusStopped  ReadingLogStatus = "STOPPED"
)

func (s ReadingLogStatus) Valid() bool {
	switch s {
	case ReadingLogStatusReading, ReadingLogStatusFinished, ReadingLogStatusStopped:
		return true
	}
	return false
}

// ReadStatus is the user book status a log of this kind moves the pair into.
func (s ReadingLogStatus) ReadStatus() ReadStatus {
	return ReadStatus(s)
}

// Ends reports whether the log closes the reading of a book.
func (s ReadingLogStatus) Ends() bool {
	return s == ReadingLogStatusFinished || s == ReadingLogStatusStopped
}

// ReadingLog is one append-only reading session record.
// ReadQuantity is the cumulative page reached, not pages read in the session.
type ReadingLog struct {
	ID              string           `db:"id" json:"logId"`
	UserID          int64            `db:"user_id" json:"userId"`
	BookID          int64            `db:"book_id" json:"bookId"`
	Status          ReadingLogStatus `db:"book_status" json:"bookStatus"`
	RecordDate      time.Time        `db:"record_date" json:"recordDate"`
	ReadQuantity    *int             `db:"read_quantity" json:"readQuantity"`
	DurationSeconds *int             `db:"duration_seconds" json:"durationSeconds"`
	Rating          *int             `db:"rating" json:"rating"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
}

// ReadingDetail is the per-book reading history view.
type ReadingDetail struct {
	BookStatus      ReadStatus           `json:"bookStatus"`
	Goal            *ReadingDetailGoal   `json:"goal"`
	CurrentPage     int                  `json:"currentPage"`
	TotalPages      int                  `json:"totalPages"`
	ProgressPercent int                  `json:"progressPercent"`
	StartDate       *string              `json:"startDate"`
	EndDate         *string              `json:"endDate"`
	Rating          *int                 `json:"rating"`
	ReadingLogs     []ReadingDetailEntry `json:"readingLogs"`
}

type ReadingDetailGoal struct {
	GoalID       string     `json:"goalId"`
	Period       GoalPeriod `json:"period"`
	Metric       GoalMetric `json:"metric"`
	TargetAmount int        `json:"targetAmount"`
	IsActive     bool       `json:"isActive"`
}

type ReadingDetailEntry struct {
	LogID           string           `json:"logId"`
	BookStatus      ReadingLogStatus `json:"bookStatus"`
	RecordDate      string           `json:"recordDate"`
	ReadQuantity    *int             `json:"readQuantity"`
	ProgressPercent int              `json:"progressPercent"`
	DurationSeconds *int             `json:"durationSeconds,omitempty"`
}
