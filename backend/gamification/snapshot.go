package gamification

import "time"

// Snapshot is the complete gamification state of one user at a point in
// time. The engine never mutates a snapshot in place; every operation
// returns a new one, so callers can safely retry against fresh state.
type Snapshot struct {
	XP                int            `json:"xp"`
	Level             int            `json:"level"`
	StreakDays        int            `json:"streak_days"`
	LastActivityDate  time.Time      `json:"last_activity_date"`
	CompletedLessons  []string       `json:"completed_lessons"`
	ChapterScores     map[string]int `json:"chapter_scores"`
	TokenBalance      int            `json:"token_balance"`
	TokensEarned      int            `json:"tokens_earned"`
	Achievements      []string       `json:"achievements"`
	DailyGoalProgress int            `json:"daily_goal_progress"`
	InvestmentActions int            `json:"investment_actions"`
	Initialized       bool           `json:"-"`
}

// NewSnapshot returns the zero-valued snapshot created alongside a user
// account.
func NewSnapshot() Snapshot {
	return Snapshot{
		Level:         1,
		ChapterScores: map[string]int{},
		Initialized:   true,
	}
}

func (s Snapshot) HasCompleted(lessonID string) bool {
	for _, id := range s.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

func (s Snapshot) HasAchievement(id string) bool {
	for _, a := range s.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// clone deep-copies the snapshot so transitions stay side-effect-free.
func (s Snapshot) clone() Snapshot {
	next := s
	next.CompletedLessons = append([]string(nil), s.CompletedLessons...)
	next.Achievements = append([]string(nil), s.Achievements...)
	next.ChapterScores = make(map[string]int, len(s.ChapterScores))
	for k, v := range s.ChapterScores {
		next.ChapterScores[k] = v
	}
	return next
}
