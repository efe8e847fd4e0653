package utils

import (
	"fmt"

	"finquest/backend/config"
	"finquest/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the schema migrations. Split out of InitDB so tests can
// run it against their own database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.UserProgress{},
		&models.Lesson{},
		&models.QuizQuestion{},
		&models.RewardItem{},
		&models.Redemption{},
	)
}

// SeedContent loads the static lesson and reward catalogs on first
// start. Existing content is left alone.
func SeedContent(db *gorm.DB) error {
	var lessonCount int64
	db.Model(&models.Lesson{}).Count(&lessonCount)
	if lessonCount == 0 {
		for _, lesson := range seedLessons() {
			if err := db.Create(&lesson).Error; err != nil {
				return err
			}
		}
	}

	var rewardCount int64
	db.Model(&models.RewardItem{}).Count(&rewardCount)
	if rewardCount == 0 {
		for _, item := range seedRewards() {
			if err := db.Create(&item).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedLessons() []models.Lesson {
	return []models.Lesson{
		{
			Slug:          "budgeting-basics",
			Title:         "Budgeting Basics",
			ShortDesc:     "Track where your money actually goes",
			Content:       "A budget is a plan for every unit of income. Start by listing fixed costs, then variable spending, then what is left for saving and investing.",
			Category:      "budgeting",
			Difficulty:    "beginner",
			SequenceOrder: 1,
			TokenReward:   50,
			Questions: []models.QuizQuestion{
				{
					Question:      "What should you list first when building a budget?",
					Options:       `["Fixed costs","Entertainment","Investments","Gifts"]`,
					CorrectAnswer: 0,
					SequenceOrder: 1,
				},
				{
					Question:      "A budget is best described as...",
					Options:       `["A spending limit","A plan for your income","A savings account","A tax form"]`,
					CorrectAnswer: 1,
					SequenceOrder: 2,
				},
			},
		},
		{
			Slug:          "emergency-fund",
			Title:         "The Emergency Fund",
			ShortDesc:     "Why you save before you invest",
			Content:       "An emergency fund covers three to six months of expenses so a surprise bill never forces you to sell investments at a loss.",
			Category:      "budgeting",
			Difficulty:    "beginner",
			SequenceOrder: 2,
			TokenReward:   50,
			Questions: []models.QuizQuestion{
				{
					Question:      "How many months of expenses should an emergency fund cover?",
					Options:       `["One","Three to six","Twelve","Twenty-four"]`,
					CorrectAnswer: 1,
					SequenceOrder: 1,
				},
			},
		},
		{
			Slug:          "what-is-a-stock",
			Title:         "What Is a Stock?",
			ShortDesc:     "Owning a slice of a company",
			Content:       "A stock is a share in the ownership of a company. Its price moves with the company's results and with what buyers are willing to pay.",
			Category:      "stocks",
			Difficulty:    "beginner",
			SequenceOrder: 3,
			TokenReward:   60,
			Questions: []models.QuizQuestion{
				{
					Question:      "Buying a stock makes you...",
					Options:       `["A lender to the company","A part-owner of the company","An employee","A customer"]`,
					CorrectAnswer: 1,
					SequenceOrder: 1,
				},
				{
					Question:      "What primarily drives a stock's long-term price?",
					Options:       `["Company performance","The weather","Lucky numbers","News headlines only"]`,
					CorrectAnswer: 0,
					SequenceOrder: 2,
				},
			},
		},
		{
			Slug:          "index-funds",
			Title:         "Index Funds and Diversification",
			ShortDesc:     "Don't put all eggs in one basket",
			Content:       "An index fund buys a whole market at once. Diversification means one bad company cannot sink your portfolio.",
			Category:      "funds",
			Difficulty:    "intermediate",
			SequenceOrder: 4,
			TokenReward:   70,
			Questions: []models.QuizQuestion{
				{
					Question:      "What does an index fund track?",
					Options:       `["A single company","A market index","Gold prices","Currency rates"]`,
					CorrectAnswer: 1,
					SequenceOrder: 1,
				},
				{
					Question:      "Diversification mainly reduces...",
					Options:       `["Taxes","Fees","Single-company risk","Paperwork"]`,
					CorrectAnswer: 2,
					SequenceOrder: 2,
				},
			},
		},
		{
			Slug:          "compound-interest",
			Title:         "Compound Interest",
			ShortDesc:     "Money that earns money",
			Content:       "Compound interest means returns themselves start earning returns. Time in the market beats timing the market.",
			Category:      "retirement",
			Difficulty:    "intermediate",
			SequenceOrder: 5,
			TokenReward:   70,
			Questions: []models.QuizQuestion{
				{
					Question:      "Compounding works best with...",
					Options:       `["Short holding periods","Long holding periods","Frequent trading","High fees"]`,
					CorrectAnswer: 1,
					SequenceOrder: 1,
				},
			},
		},
		{
			Slug:          "crypto-risks",
			Title:         "Understanding Crypto Risk",
			ShortDesc:     "Volatility cuts both ways",
			Content:       "Cryptocurrencies can move double digits in a day. Never invest money you cannot afford to lose, and beware of guaranteed-return promises.",
			Category:      "crypto",
			Difficulty:    "advanced",
			SequenceOrder: 6,
			TokenReward:   80,
			Questions: []models.QuizQuestion{
				{
					Question:      "A promise of guaranteed high returns is usually...",
					Options:       `["A great deal","A scam signal","Government backed","Tax free"]`,
					CorrectAnswer: 1,
					SequenceOrder: 1,
				},
			},
		},
	}
}

func seedRewards() []models.RewardItem {
	return []models.RewardItem{
		{Name: "Dark Theme", Description: "Unlock the dark UI theme", CostTokens: 100, Available: true},
		{Name: "Avatar Pack", Description: "Five extra profile avatars", CostTokens: 150, Available: true},
		{Name: "Streak Shield", Description: "Protects one missed day of your streak", CostTokens: 300, Available: true},
		{Name: "Premium Month", Description: "One month of premium lessons", CostTokens: 800, Available: true},
	}
}
