// Package progress owns the persistence boundary around the
// gamification engine: loading snapshots, saving them with optimistic
// concurrency, and the read-compute-write dispatch loop.
package progress

import (
	"encoding/json"
	"errors"
	"strings"

	"finquest/backend/gamification"
	"finquest/backend/models"

	"gorm.io/gorm"
)

var (
	// ErrVersionConflict means another write landed between our read and
	// our save. Dispatch retries it; anything else bubbles up.
	ErrVersionConflict = errors.New("progress: version conflict")
	ErrNotFound        = errors.New("progress: snapshot not found")
)

// Store persists one snapshot per user, guarded by a version counter.
type Store interface {
	Create(userID uint) error
	Load(userID uint) (gamification.Snapshot, int, error)
	Save(userID uint, expectedVersion int, snapshot gamification.Snapshot) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(userID uint) error {
	row := models.UserProgress{
		UserID:        userID,
		Level:         1,
		ChapterScores: "{}",
		Version:       1,
	}
	return s.db.Create(&row).Error
}

func (s *GormStore) Load(userID uint) (gamification.Snapshot, int, error) {
	var row models.UserProgress
	if err := s.db.Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gamification.Snapshot{}, 0, ErrNotFound
		}
		return gamification.Snapshot{}, 0, err
	}

	snapshot, err := toSnapshot(row)
	if err != nil {
		return gamification.Snapshot{}, 0, err
	}
	return snapshot, row.Version, nil
}

// Save writes the snapshot only if the row still carries the version
// the caller read. A zero rows-affected update means somebody else got
// there first.
func (s *GormStore) Save(userID uint, expectedVersion int, snapshot gamification.Snapshot) error {
	scores, err := json.Marshal(snapshot.ChapterScores)
	if err != nil {
		return err
	}

	result := s.db.Model(&models.UserProgress{}).
		Where("user_id = ? AND version = ?", userID, expectedVersion).
		Updates(map[string]interface{}{
			"xp":                  snapshot.XP,
			"level":               snapshot.Level,
			"streak_days":         snapshot.StreakDays,
			"last_activity_date":  snapshot.LastActivityDate,
			"completed_lessons":   strings.Join(snapshot.CompletedLessons, ","),
			"chapter_scores":      string(scores),
			"token_balance":       snapshot.TokenBalance,
			"tokens_earned":       snapshot.TokensEarned,
			"achievements":        strings.Join(snapshot.Achievements, ","),
			"daily_goal_progress": snapshot.DailyGoalProgress,
			"investment_actions":  snapshot.InvestmentActions,
			"version":             expectedVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func toSnapshot(row models.UserProgress) (gamification.Snapshot, error) {
	snapshot := gamification.Snapshot{
		XP:                row.XP,
		Level:             row.Level,
		StreakDays:        row.StreakDays,
		LastActivityDate:  row.LastActivityDate,
		CompletedLessons:  splitList(row.CompletedLessons),
		ChapterScores:     map[string]int{},
		TokenBalance:      row.TokenBalance,
		TokensEarned:      row.TokensEarned,
		Achievements:      splitList(row.Achievements),
		DailyGoalProgress: row.DailyGoalProgress,
		InvestmentActions: row.InvestmentActions,
		Initialized:       true,
	}
	if row.ChapterScores != "" {
		if err := json.Unmarshal([]byte(row.ChapterScores), &snapshot.ChapterScores); err != nil {
			return gamification.Snapshot{}, err
		}
	}
	return snapshot, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}
