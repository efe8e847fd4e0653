// Package gamification implements the progress state machine: XP and
// level accrual, daily streaks, achievement unlocking and the daily
// goal counter. Every operation is a pure transition from one snapshot
// to the next; persistence and HTTP concerns live elsewhere.
package gamification

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidAmount      = errors.New("gamification: amount must be non-negative")
	ErrInvalidScore       = errors.New("gamification: score must be between 0 and 100")
	ErrInsufficientTokens = errors.New("gamification: insufficient token balance")
	ErrUninitialized      = errors.New("gamification: snapshot not initialized")
)

const (
	// ChapterBaseXP is granted on top of the quiz score for every first
	// completion of a lesson.
	ChapterBaseXP = 50

	// DailyGoalChapterCredit is how much one completed chapter counts
	// towards the daily goal (which caps at 100).
	DailyGoalChapterCredit = 25
)

type Engine struct {
	levels LevelTable
}

func NewEngine(levels LevelTable) *Engine {
	return &Engine{levels: levels}
}

// Default returns an engine with the standard level table.
func Default() *Engine {
	return NewEngine(DefaultLevelTable())
}

// Levels returns a copy of the table this engine derives levels from.
func (e *Engine) Levels() LevelTable {
	return append(LevelTable(nil), e.levels...)
}

// Apply dispatches a single event onto the matching operation.
func (e *Engine) Apply(s Snapshot, event Event, now time.Time) (Snapshot, []Notification, error) {
	switch ev := event.(type) {
	case XPGranted:
		return e.ApplyXP(s, ev.Amount, now)
	case ChapterCompleted:
		return e.CompleteChapter(s, ev.LessonID, ev.ScorePct, ev.TokensEarned, now)
	case RewardRedeemed:
		return e.RedeemReward(s, ev.CostTokens)
	case DailyVisit:
		return e.RecordDailyVisit(s, ev.Today)
	case InvestmentAction:
		return e.RecordInvestmentAction(s)
	default:
		return s, nil, fmt.Errorf("gamification: unknown event %T", event)
	}
}

// ApplyXP adds amount to the XP total and recomputes the level. One
// LevelUp notification is emitted per crossed threshold, in ascending
// order, so a large grant can level up more than once.
func (e *Engine) ApplyXP(s Snapshot, amount int, now time.Time) (Snapshot, []Notification, error) {
	if !s.Initialized {
		return s, nil, ErrUninitialized
	}
	if amount < 0 {
		return s, nil, ErrInvalidAmount
	}
	next, notifications := e.applyXP(s.clone(), amount)
	return next, notifications, nil
}

// applyXP is the unvalidated core shared by the other operations.
func (e *Engine) applyXP(next Snapshot, amount int) (Snapshot, []Notification) {
	previousLevel := next.Level
	next.XP += amount
	next.Level = e.levels.LevelFor(next.XP)

	var notifications []Notification
	for level := previousLevel + 1; level <= next.Level; level++ {
		notifications = append(notifications, levelUp(level))
	}
	return next, notifications
}

// CompleteChapter records a finished lesson. The first completion adds
// the lesson, awards tokens, daily-goal credit and XP, and evaluates
// achievements. Re-completing only raises the stored score when the new
// one is higher; tokens and XP are never awarded twice for one lesson.
func (e *Engine) CompleteChapter(s Snapshot, lessonID string, scorePct float64, tokensEarned int, now time.Time) (Snapshot, []Notification, error) {
	if !s.Initialized {
		return s, nil, ErrUninitialized
	}
	if scorePct < 0 || scorePct > 100 {
		return s, nil, ErrInvalidScore
	}
	if tokensEarned < 0 {
		return s, nil, ErrInvalidAmount
	}

	score := int(math.Round(scorePct))
	next := s.clone()

	if next.HasCompleted(lessonID) {
		if score > next.ChapterScores[lessonID] {
			next.ChapterScores[lessonID] = score
		}
		// A retake can still unlock perfect-quiz.
		next, notifications := e.evaluateAchievements(next)
		return next, notifications, nil
	}

	next.CompletedLessons = append(next.CompletedLessons, lessonID)
	next.ChapterScores[lessonID] = score
	next.TokenBalance += tokensEarned
	next.TokensEarned += tokensEarned
	next.DailyGoalProgress += DailyGoalChapterCredit
	if next.DailyGoalProgress > 100 {
		next.DailyGoalProgress = 100
	}

	next, notifications := e.applyXP(next, score+ChapterBaseXP)
	next, unlocks := e.evaluateAchievements(next)
	return next, append(notifications, unlocks...), nil
}

// RedeemReward deducts costTokens from the spendable balance. The
// cumulative earned counter is untouched.
func (e *Engine) RedeemReward(s Snapshot, costTokens int) (Snapshot, []Notification, error) {
	if !s.Initialized {
		return s, nil, ErrUninitialized
	}
	if costTokens < 0 {
		return s, nil, ErrInvalidAmount
	}
	if s.TokenBalance < costTokens {
		return s, nil, ErrInsufficientTokens
	}
	next := s.clone()
	next.TokenBalance -= costTokens
	return next, nil, nil
}

// RecordDailyVisit advances the day-granularity streak machine. Visits
// on the same calendar day (or an earlier one, in case of clock skew)
// are no-ops; the next day extends the streak; any gap restarts it at 1.
// The daily goal resets whenever the day rolls over.
func (e *Engine) RecordDailyVisit(s Snapshot, today time.Time) (Snapshot, []Notification, error) {
	if !s.Initialized {
		return s, nil, ErrUninitialized
	}

	next := s.clone()
	if s.LastActivityDate.IsZero() {
		next.StreakDays = 1
	} else {
		gap := daysBetween(s.LastActivityDate, today)
		if gap <= 0 {
			return next, nil, nil
		}
		if gap == 1 {
			next.StreakDays++
		} else {
			next.StreakDays = 1
		}
	}
	next.DailyGoalProgress = 0
	next.LastActivityDate = dateOnly(today)

	next, notifications := e.evaluateAchievements(next)
	return next, notifications, nil
}

// RecordInvestmentAction flags that the user took a real investment
// step. This cannot be derived from the rest of the snapshot, so it is
// signalled explicitly.
func (e *Engine) RecordInvestmentAction(s Snapshot) (Snapshot, []Notification, error) {
	if !s.Initialized {
		return s, nil, ErrUninitialized
	}
	next := s.clone()
	next.InvestmentActions++
	next, notifications := e.evaluateAchievements(next)
	return next, notifications, nil
}

// EvaluateAchievements unlocks every achievement whose predicate is
// newly satisfied, awarding the fixed XP bonus per unlock. Re-running
// it on an unchanged snapshot is a no-op.
func (e *Engine) EvaluateAchievements(s Snapshot) (Snapshot, []Notification, error) {
	if !s.Initialized {
		return s, nil, ErrUninitialized
	}
	next, notifications := e.evaluateAchievements(s.clone())
	return next, notifications, nil
}

func (e *Engine) evaluateAchievements(next Snapshot) (Snapshot, []Notification) {
	var notifications []Notification
	for _, definition := range Achievements() {
		if next.HasAchievement(definition.ID) || !definition.Unlocked(next) {
			continue
		}
		next.Achievements = append(next.Achievements, definition.ID)
		notifications = append(notifications, achievementUnlocked(definition.ID))

		var levelUps []Notification
		next, levelUps = e.applyXP(next, AchievementXPBonus)
		notifications = append(notifications, levelUps...)
	}
	return next, notifications
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from one date to
// another, negative when to precedes from.
func daysBetween(from, to time.Time) int {
	return int(dateOnly(to).Sub(dateOnly(from)).Hours() / 24)
}
