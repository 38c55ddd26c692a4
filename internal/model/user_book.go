package model

import (
	"time"
)

type ReadStatus string

const (
	ReadStatusNotStarted ReadStatus = "NOT_STARTED"
	ReadStatusReading    ReadStatus = "READING"
	ReadStatusFinished   ReadStatus = "FINISHED"
	ReadStatusStopped    ReadStatus = "STOPPED"
)

// UserBook is a user's shelf entry for a book.
type UserBook struct {
	ID           string     `db:"id"`
	UserID       int64      `db:"user_id"`
	BookID       int64      `db:"book_id"`
	Status       ReadStatus `db:"status"`
	IsBookmarked bool       `db:"is_bookmarked"`
	FinishedAt   *time.Time `db:"finished_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}
