package model

import (
	"time"
)

type ReadingStatistics struct {
	BookSummary        BookSummary        `json:"bookSummary"`
	MonthlyGraph       MonthlyGraph       `json:"monthlyGraph"`
	CumulativeTime     CumulativeTime     `json:"cumulativeTime"`
	GoalAchievement    GoalAchievement    `json:"goalAchievement"`
	CategoryPreference CategoryPreference `json:"categoryPreference"`
}

type BookSummary struct {
	FinishedBookCount int     `json:"finishedBookCount"`
	TotalWeightKg     float64 `json:"totalWeightKg"`
}

type MonthlyGraph struct {
	Year        int            `json:"year"`
	MonthlyData []MonthlyCount `json:"monthlyData"`
}

type MonthlyCount struct {
	Month          int  `json:"month"`
	BookCount      int  `json:"bookCount"`
	IsCurrentMonth bool `json:"isCurrentMonth"`
}

type CumulativeTime struct {
	TotalMinutes int `json:"totalMinutes"`
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
}

type GoalAchievement struct {
	AchievementRate    int `json:"achievementRate"`
	MaxAchievementRate int `json:"maxAchievementRate"`
}

type CategoryPreference struct {
	TotalBookCount int             `json:"totalBookCount"`
	Categories     []CategoryShare `json:"categories"`
}

type CategoryShare struct {
	Rank         int    `json:"rank"`
	CategoryName string `json:"categoryName"`
	BookCount    int    `json:"bookCount"`
	Percentage   int    `json:"percentage"`
}

// Export is the full data dump of one user.
type Export struct {
	UserID      int64             `json:"userId"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Goals       []*Goal           `json:"goals"`
	ReadingLogs []*ReadingLog     `json:"readingLogs"`
	Statistics  ReadingStatistics `json:"statistics"`
}
