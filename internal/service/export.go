package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stepbookstep/server/internal/model"
	"github.com/stepbookstep/server/internal/repository"
	"github.com/stepbookstep/server/internal/storage"
)

// ExportService produces a user's full data dump and optionally archives it
// to object storage.
type ExportService struct {
	goals      repository.GoalRepository
	logs       repository.ReadingLogRepository
	statistics *StatisticsService
	storage    storage.Storage
	clock      Clock
}

// NewExportService builds the service. store may be nil, which disables Archive.
func NewExportService(
	goals repository.GoalRepository,
	logs repository.ReadingLogRepository,
	statistics *StatisticsService,
	store storage.Storage,
	clock Clock,
) *ExportService {
	return &ExportService{
		goals:      goals,
		logs:       logs,
		statistics: statistics,
		storage:    store,
		clock:      clock,
	}
}

func (s *ExportService) Export(ctx context.Context, userID int64) (*model.Export, error) {
	goals, err := s.goals.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logs.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.statistics.Statistics(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	if goals == nil {
		goals = []*model.Goal{}
	}
	if logs == nil {
		logs = []*model.ReadingLog{}
	}

	return &model.Export{
		UserID:      userID,
		GeneratedAt: s.clock.now(),
		Goals:       goals,
		ReadingLogs: logs,
		Statistics:  *stats,
	}, nil
}

// ArchiveEnabled reports whether object storage is configured.
func (s *ExportService) ArchiveEnabled() bool {
	return s.storage != nil
}

// Archive uploads the export as JSON and returns a time-limited download URL.
func (s *ExportService) Archive(ctx context.Context, userID int64) (string, error) {
	if s.storage == nil {
		return "", ErrStorageNotConfigured
	}

	export, err := s.Export(ctx, userID)
	if err != nil {
		return "", err
	}

	body, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}

	path := fmt.Sprintf("exports/%d/%s.json", userID, export.GeneratedAt.Format("20060102T150405Z"))
	err = s.storage.Save(ctx, path, bytes.NewReader(body), "application/json")
	if err != nil {
		slog.Error("failed to archive export", "error", err, "user_id", userID)
		return "", err
	}

	return s.storage.URL(ctx, path)
}
