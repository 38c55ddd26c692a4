package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepbookstep/server/internal/service"
)

func TestLookupErrorUnwraps(t *testing.T) {
	apiErr, known := lookupError(fmt.Errorf("create log: %w", service.ErrPageCannotGoBack))
	require.True(t, known)
	assert.Equal(t, http.StatusBadRequest, apiErr.status)
	assert.Equal(t, 5005, apiErr.code)

	apiErr, known = lookupError(errors.New("disk on fire"))
	assert.False(t, known)
	assert.Equal(t, http.StatusInternalServerError, apiErr.status)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/statistics", nil)

	respondError(rec, req, errors.New("pq: relation missing"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"code":500,"message":"internal server error","data":null}`, rec.Body.String())
}

func TestYearParam(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"?year=2024", 2024, false},
		{"?year=0", 0, true},
		{"?year=-3", 0, true},
		{"?year=twenty", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			year, err := yearParam(httptest.NewRequest(http.MethodGet, "/api/v1/statistics"+tt.query, nil))
			if tt.wantErr {
				assert.ErrorIs(t, err, service.ErrInvalidYear)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, year)
		})
	}
}

func TestReadingLogRequestInput(t *testing.T) {
	req := readingLogRequest{BookStatus: "READING", RecordDate: "2025-04-02"}
	in, err := req.input()
	require.NoError(t, err)
	require.NotNil(t, in.RecordDate)
	assert.Equal(t, "2025-04-02", in.RecordDate.Format("2006-01-02"))

	in, err = readingLogRequest{BookStatus: "READING"}.input()
	require.NoError(t, err)
	assert.Nil(t, in.RecordDate)

	_, err = readingLogRequest{RecordDate: "2025/04/02"}.input()
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
