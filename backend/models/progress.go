package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProgress is the persisted gamification snapshot, one row per user.
// All writes go through the progress store, which bumps Version on every
// save so concurrent updates against a stale row are rejected.
type UserProgress struct {
	gorm.Model
	UserID            uint `gorm:"uniqueIndex;not null"`
	XP                int  `gorm:"default:0"`
	Level             int  `gorm:"default:1"`
	StreakDays        int  `gorm:"default:0"`
	LastActivityDate  time.Time
	CompletedLessons  string // comma-separated lesson slugs
	ChapterScores     string // JSON object: lesson slug -> score percent
	TokenBalance      int    `gorm:"default:0"`
	TokensEarned      int    `gorm:"default:0"` // cumulative, never decreases
	Achievements      string // comma-separated achievement IDs
	DailyGoalProgress int    `gorm:"default:0"`
	InvestmentActions int    `gorm:"default:0"`
	Version           int    `gorm:"default:1"`
}
