package routes

import (
	"finquest/backend/config"
	"finquest/backend/controllers"
	"finquest/backend/gamification"
	"finquest/backend/leaderboard"
	"finquest/backend/middleware"
	"finquest/backend/progress"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes wires the HTTP surface. A nil board disables the
// leaderboard endpoint and the ranking side effect.
func SetupRoutes(app *fiber.App, db *gorm.DB, board *leaderboard.Board, cfg *config.Config) {
	var ranker progress.Ranker
	if board != nil {
		ranker = board
	}
	service := progress.NewService(progress.NewGormStore(db), gamification.Default(), ranker)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, service)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, service)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)
	app.Post("/api/progress/visit", authMiddleware, progressController.RecordVisit)
	app.Post("/api/progress/investment", authMiddleware, progressController.RecordInvestment)

	// Lesson routes
	lessonsController := controllers.NewLessonsController(db, cfg, service)
	lessons := app.Group("/api/lessons", authMiddleware)
	lessons.Get("/", lessonsController.GetLessons)
	lessons.Get("/:id", lessonsController.GetLessonDetails)
	lessons.Post("/:id/complete", lessonsController.CompleteLesson)

	// Store routes
	storeController := controllers.NewStoreController(db, cfg, service)
	store := app.Group("/api/store", authMiddleware)
	store.Get("/items", storeController.GetItems)
	store.Post("/redeem", storeController.Redeem)

	// Leaderboard
	leaderboardController := controllers.NewLeaderboardController(db, cfg, board)
	app.Get("/api/leaderboard", authMiddleware, leaderboardController.GetLeaderboard)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Post("/lessons", lessonsController.CreateLesson)
	admin.Post("/lessons/:id/questions", lessonsController.AddQuestion)
}
