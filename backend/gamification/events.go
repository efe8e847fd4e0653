package gamification

import "time"

// Event is an external occurrence the engine reacts to. The concrete
// types below are the only implementations.
type Event interface {
	isEvent()
}

type XPGranted struct {
	Amount int
}

type ChapterCompleted struct {
	LessonID     string
	ScorePct     float64
	TokensEarned int
}

type RewardRedeemed struct {
	CostTokens int
}

type DailyVisit struct {
	Today time.Time
}

type InvestmentAction struct{}

func (XPGranted) isEvent()        {}
func (ChapterCompleted) isEvent() {}
func (RewardRedeemed) isEvent()   {}
func (DailyVisit) isEvent()       {}
func (InvestmentAction) isEvent() {}

// Notification types surfaced to the presentation layer.
const (
	NotificationLevelUp             = "level_up"
	NotificationAchievementUnlocked = "achievement_unlocked"
)

type Notification struct {
	Type        string `json:"type"`
	NewLevel    int    `json:"new_level,omitempty"`
	Achievement string `json:"achievement,omitempty"`
}

func levelUp(level int) Notification {
	return Notification{Type: NotificationLevelUp, NewLevel: level}
}

func achievementUnlocked(id string) Notification {
	return Notification{Type: NotificationAchievementUnlocked, Achievement: id}
}
