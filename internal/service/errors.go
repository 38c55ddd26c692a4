package service

import (
	"errors"

	"github.com/stepbookstep/server/internal/repository"
)

// Lookup failures share the repository sentinels so errors.Is works across layers.
var (
	ErrBookNotFound = repository.ErrBookNotFound
	ErrGoalNotFound = repository.ErrGoalNotFound
)

var (
	ErrReadQuantityRequired = errors.New("read quantity is required while reading")
	ErrDurationRequired     = errors.New("duration is required for time goals")
	ErrRatingRequired       = errors.New("rating is required when finishing or stopping a book")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrTargetAmountInvalid  = errors.New("target amount must be greater than zero")
	ErrPageCannotGoBack     = errors.New("read quantity cannot be lower than a previous log")
	ErrPageExceedsTotal     = errors.New("read quantity exceeds the book's page count")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidPeriod        = errors.New("period must be DAILY, WEEKLY or MONTHLY")
	ErrInvalidMetric        = errors.New("metric must be PAGE or TIME")
	ErrInvalidStatus        = errors.New("book status must be READING, FINISHED or STOPPED")
	ErrInvalidYear          = errors.New("year must be positive")
	ErrStorageNotConfigured = errors.New("export storage is not configured")
	ErrInvalidToken         = errors.New("invalid token")
)
