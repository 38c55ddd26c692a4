package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepbookstep/server/internal/model"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (m *memoryStorage) Save(_ context.Context, path string, body io.Reader, _ string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[path] = data
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memoryStorage) URL(_ context.Context, path string) (string, error) {
	return "https://storage.test/" + path, nil
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	seedHistory(t, f)
	exports := NewExportService(f.goalRepo, f.logRepo, f.stats, nil, Clock{Now: func() time.Time { return f.now }})

	export, err := exports.Export(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, userID, export.UserID)
	assert.Len(t, export.Goals, 2)
	assert.Len(t, export.ReadingLogs, 7)
	assert.Equal(t, 3, export.Statistics.BookSummary.FinishedBookCount)
	assert.False(t, exports.ArchiveEnabled())

	_, err = exports.Archive(context.Background(), userID)
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
}

func TestExportEmptyUser(t *testing.T) {
	f := newFixture(t)
	exports := NewExportService(f.goalRepo, f.logRepo, f.stats, nil, Clock{})

	export, err := exports.Export(context.Background(), userID)
	require.NoError(t, err)

	body, err := json.Marshal(export)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"goals":[]`)
	assert.Contains(t, string(body), `"readingLogs":[]`)
}

func TestArchiveUploadsExport(t *testing.T) {
	f := newFixture(t)
	seedHistory(t, f)
	store := &memoryStorage{}
	exports := NewExportService(f.goalRepo, f.logRepo, f.stats, store, Clock{Now: func() time.Time { return f.now }})

	url, err := exports.Archive(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/exports/7/20250405T090000Z.json", url)

	data := store.objects["exports/7/20250405T090000Z.json"]
	require.NotEmpty(t, data)

	var export model.Export
	require.NoError(t, json.NewDecoder(bytes.NewReader(data)).Decode(&export))
	assert.Len(t, export.Goals, 2)
	assert.True(t, strings.HasPrefix(string(data), "{\n"))
}

func TestArchiveStorageFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("bucket unavailable")
	exports := NewExportService(f.goalRepo, f.logRepo, f.stats, &memoryStorage{err: boom}, Clock{})

	_, err := exports.Archive(context.Background(), userID)
	assert.ErrorIs(t, err, boom)
}
