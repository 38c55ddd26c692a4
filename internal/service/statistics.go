package service

import (
	"cmp"
	"context"
	"math"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stepbookstep/server/internal/achievement"
	"github.com/stepbookstep/server/internal/model"
	"github.com/stepbookstep/server/internal/repository"
)

const (
	uncategorized = "Uncategorized"
	topCategories = 3
	gramsPerKilo  = 1000.0
)

// StatisticsService aggregates a user's reading history. Each request loads
// goals, logs and finished books once and computes everything in memory.
type StatisticsService struct {
	goals     repository.GoalRepository
	logs      repository.ReadingLogRepository
	userBooks repository.UserBookRepository
	catalog   Catalog
	clock     Clock
}

func NewStatisticsService(
	goals repository.GoalRepository,
	logs repository.ReadingLogRepository,
	userBooks repository.UserBookRepository,
	catalog Catalog,
	clock Clock,
) *StatisticsService {
	return &StatisticsService{
		goals:     goals,
		logs:      logs,
		userBooks: userBooks,
		catalog:   catalog,
		clock:     clock,
	}
}

// history is everything the aggregations read.
type history struct {
	goals    []*model.Goal
	logs     []*model.ReadingLog
	finished []*model.UserBook
	books    map[int64]*model.Book
}

func (s *StatisticsService) load(ctx context.Context, userID int64) (*history, error) {
	h := &history{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		h.goals, err = s.goals.ByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		h.logs, err = s.logs.ByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		h.finished, err = s.userBooks.FinishedByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bookIDs := make([]int64, 0, len(h.finished))
	for _, userBook := range h.finished {
		bookIDs = append(bookIDs, userBook.BookID)
	}
	books, err := s.catalog.ResolveMany(ctx, bookIDs)
	if err != nil {
		return nil, err
	}
	h.books = books

	return h, nil
}

// resolveYear maps 0 to the current year.
func (s *StatisticsService) resolveYear(year int) (int, error) {
	if year == 0 {
		return s.clock.today().Year(), nil
	}
	if year < 1 {
		return 0, ErrInvalidYear
	}
	return year, nil
}

// Statistics returns every aggregation for the user. year selects the
// monthly graph; 0 means the current year.
func (s *StatisticsService) Statistics(ctx context.Context, userID int64, year int) (*model.ReadingStatistics, error) {
	year, err := s.resolveYear(year)
	if err != nil {
		return nil, err
	}

	h, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	achievementStats, err := s.goalAchievement(ctx, h)
	if err != nil {
		return nil, err
	}

	return &model.ReadingStatistics{
		BookSummary:        bookSummary(h),
		MonthlyGraph:       monthlyGraph(h.logs, year, s.clock.today()),
		CumulativeTime:     cumulativeTime(h.logs),
		GoalAchievement:    achievementStats,
		CategoryPreference: categoryPreference(h),
	}, nil
}

func (s *StatisticsService) MonthlyGraph(ctx context.Context, userID int64, year int) (*model.MonthlyGraph, error) {
	year, err := s.resolveYear(year)
	if err != nil {
		return nil, err
	}

	logs, err := s.logs.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	graph := monthlyGraph(logs, year, s.clock.today())
	return &graph, nil
}

func (s *StatisticsService) CategoryPreference(ctx context.Context, userID int64) (*model.CategoryPreference, error) {
	finished, err := s.userBooks.FinishedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	bookIDs := make([]int64, 0, len(finished))
	for _, userBook := range finished {
		bookIDs = append(bookIDs, userBook.BookID)
	}
	books, err := s.catalog.ResolveMany(ctx, bookIDs)
	if err != nil {
		return nil, err
	}

	preference := categoryPreference(&history{finished: finished, books: books})
	return &preference, nil
}

// goalAchievement evaluates every goal, active and historical, concurrently.
func (s *StatisticsService) goalAchievement(ctx context.Context, h *history) (model.GoalAchievement, error) {
	if len(h.goals) == 0 {
		return model.GoalAchievement{}, nil
	}

	logsByBook := groupLogsByBook(h.logs)
	today := s.clock.today()
	loc := s.clock.location()
	results := make([]achievement.Result, len(h.goals))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, goal := range h.goals {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = achievement.EvaluateGoal(goal, logsByBook[goal.BookID], today, loc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.GoalAchievement{}, err
	}

	var achieved, total, best int
	for _, result := range results {
		achieved += result.AchievedCount
		total += result.TotalCount
		best = max(best, result.Rate())
	}

	return model.GoalAchievement{
		AchievementRate:    achievement.Rate(achieved, total),
		MaxAchievementRate: best,
	}, nil
}

func bookSummary(h *history) model.BookSummary {
	grams := 0
	for _, userBook := range h.finished {
		if book, ok := h.books[userBook.BookID]; ok {
			grams += book.Weight
		}
	}

	return model.BookSummary{
		FinishedBookCount: len(h.finished),
		TotalWeightKg:     math.Round(float64(grams)/gramsPerKilo*10) / 10,
	}
}

// monthlyGraph counts, per month of year, the distinct books with a FINISHED
// log recorded in that month.
func monthlyGraph(logs []*model.ReadingLog, year int, today time.Time) model.MonthlyGraph {
	finished := make(map[time.Month]map[int64]struct{})
	for _, log := range logs {
		if log.Status != model.ReadingLogStatusFinished {
			continue
		}
		day := achievement.Day(log.RecordDate)
		if day.Year() != year {
			continue
		}
		if finished[day.Month()] == nil {
			finished[day.Month()] = make(map[int64]struct{})
		}
		finished[day.Month()][log.BookID] = struct{}{}
	}

	graph := model.MonthlyGraph{Year: year, MonthlyData: make([]model.MonthlyCount, 0, 12)}
	for month := time.January; month <= time.December; month++ {
		graph.MonthlyData = append(graph.MonthlyData, model.MonthlyCount{
			Month:          int(month),
			BookCount:      len(finished[month]),
			IsCurrentMonth: year == today.Year() && month == today.Month(),
		})
	}
	return graph
}

func cumulativeTime(logs []*model.ReadingLog) model.CumulativeTime {
	seconds := 0
	for _, log := range logs {
		if log.DurationSeconds != nil {
			seconds += *log.DurationSeconds
		}
	}

	minutes := seconds / 60
	return model.CumulativeTime{
		TotalMinutes: minutes,
		Hours:        minutes / 60,
		Minutes:      minutes % 60,
	}
}

// categoryPreference ranks the genres of finished books, keeping the top
// three. Ties are ordered by genre name.
func categoryPreference(h *history) model.CategoryPreference {
	counts := make(map[string]int)
	for _, userBook := range h.finished {
		genre := ""
		if book, ok := h.books[userBook.BookID]; ok {
			genre = strings.TrimSpace(book.Genre)
		}
		if genre == "" {
			genre = uncategorized
		}
		counts[genre]++
	}

	shares := make([]model.CategoryShare, 0, len(counts))
	for genre, count := range counts {
		shares = append(shares, model.CategoryShare{CategoryName: genre, BookCount: count})
	}
	slices.SortFunc(shares, func(a, b model.CategoryShare) int {
		if c := cmp.Compare(b.BookCount, a.BookCount); c != 0 {
			return c
		}
		return cmp.Compare(a.CategoryName, b.CategoryName)
	})
	if len(shares) > topCategories {
		shares = shares[:topCategories]
	}

	total := len(h.finished)
	for i := range shares {
		shares[i].Rank = i + 1
		shares[i].Percentage = achievement.Rate(shares[i].BookCount, total)
	}

	return model.CategoryPreference{TotalBookCount: total, Categories: shares}
}
