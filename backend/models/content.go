package models

import "gorm.io/gorm"

type Lesson struct {
	gorm.Model
	Slug          string `gorm:"unique;not null"` // stable ID, referenced from user progress
	Title         string
	ShortDesc     string
	Content       string
	Category      string // budgeting, stocks, funds, crypto, retirement
	Difficulty    string // beginner, intermediate, advanced
	SequenceOrder int
	TokenReward   int `gorm:"default:50"`
	Questions     []QuizQuestion
}

type QuizQuestion struct {
	gorm.Model
	LessonID      uint
	Question      string
	Options       string // JSON array of options
	CorrectAnswer int
	SequenceOrder int
}

type RewardItem struct {
	gorm.Model
	Name        string `gorm:"unique;not null"`
	Description string
	CostTokens  int
	Available   bool `gorm:"default:true"`
}

type Redemption struct {
	gorm.Model
	UserID       uint
	RewardItemID uint
	Receipt      string `gorm:"unique;not null"`
	CostTokens   int
}
