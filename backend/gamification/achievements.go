package gamification

// Achievement IDs. Keep these stable because they are stored per user.
const (
	AchievementFirstLesson     = "first-lesson"
	AchievementPerfectQuiz     = "perfect-quiz"
	AchievementTokenMaster     = "token-master"
	AchievementWeekStreak      = "week-streak"
	AchievementFirstInvestment = "first-investment"
)

// AchievementXPBonus is awarded once per unlocked achievement.
const AchievementXPBonus = 100

type AchievementDefinition struct {
	ID       string
	Title    string
	Unlocked func(Snapshot) bool
}

// Achievements returns the canonical list of unlockable achievements.
// token-master keys off cumulative tokens earned, not the spendable
// balance, so spending tokens can never re-lock it.
func Achievements() []AchievementDefinition {
	return []AchievementDefinition{
		{
			ID:    AchievementFirstLesson,
			Title: "First Steps",
			Unlocked: func(s Snapshot) bool {
				return len(s.CompletedLessons) >= 1
			},
		},
		{
			ID:    AchievementPerfectQuiz,
			Title: "Perfectionist",
			Unlocked: func(s Snapshot) bool {
				for _, score := range s.ChapterScores {
					if score == 100 {
						return true
					}
				}
				return false
			},
		},
		{
			ID:    AchievementTokenMaster,
			Title: "Token Master",
			Unlocked: func(s Snapshot) bool {
				return s.TokensEarned >= 1000
			},
		},
		{
			ID:    AchievementWeekStreak,
			Title: "Week Warrior",
			Unlocked: func(s Snapshot) bool {
				return s.StreakDays >= 7
			},
		},
		{
			ID:    AchievementFirstInvestment,
			Title: "Investor",
			Unlocked: func(s Snapshot) bool {
				return s.InvestmentActions >= 1
			},
		},
	}
}
