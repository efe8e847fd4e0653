package controllers

import (
	"errors"
	"time"

	"finquest/backend/config"
	"finquest/backend/gamification"
	"finquest/backend/middleware"
	"finquest/backend/models"
	"finquest/backend/progress"
	"finquest/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LessonsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *progress.Service
}

func NewLessonsController(db *gorm.DB, cfg *config.Config, svc *progress.Service) *LessonsController {
	return &LessonsController{DB: db, Cfg: cfg, Progress: svc}
}

// GetLessons godoc
// @Summary List lessons with per-user completion state
// @Tags lessons
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons [get]
func (lc *LessonsController) GetLessons(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var lessons []models.Lesson
	if err := lc.DB.Order("sequence_order").Find(&lessons).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	snapshot, err := lc.Progress.Snapshot(userID)
	if err != nil {
		return respondEngineError(c, err)
	}

	type LessonView struct {
		ID          uint   `json:"id"`
		Slug        string `json:"slug"`
		Title       string `json:"title"`
		ShortDesc   string `json:"short_desc"`
		Category    string `json:"category"`
		Difficulty  string `json:"difficulty"`
		TokenReward int    `json:"token_reward"`
		Completed   bool   `json:"completed"`
		Score       int    `json:"score"`
	}

	views := make([]LessonView, 0, len(lessons))
	for _, lesson := range lessons {
		views = append(views, LessonView{
			ID:          lesson.ID,
			Slug:        lesson.Slug,
			Title:       lesson.Title,
			ShortDesc:   lesson.ShortDesc,
			Category:    lesson.Category,
			Difficulty:  lesson.Difficulty,
			TokenReward: lesson.TokenReward,
			Completed:   snapshot.HasCompleted(lesson.Slug),
			Score:       snapshot.ChapterScores[lesson.Slug],
		})
	}

	return c.JSON(fiber.Map{"lessons": views})
}

// GetLessonDetails godoc
// @Summary Get lesson content and quiz questions
// @Tags lessons
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id} [get]
func (lc *LessonsController) GetLessonDetails(c *fiber.Ctx) error {
	var lesson models.Lesson
	err := lc.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order")
	}).First(&lesson, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	// Correct answers stay server-side; the quiz is graded on submit.
	type QuestionView struct {
		ID       uint   `json:"id"`
		Question string `json:"question"`
		Options  string `json:"options"`
	}
	questions := make([]QuestionView, 0, len(lesson.Questions))
	for _, q := range lesson.Questions {
		questions = append(questions, QuestionView{ID: q.ID, Question: q.Question, Options: q.Options})
	}

	return c.JSON(fiber.Map{
		"id":           lesson.ID,
		"slug":         lesson.Slug,
		"title":        lesson.Title,
		"content":      lesson.Content,
		"category":     lesson.Category,
		"difficulty":   lesson.Difficulty,
		"token_reward": lesson.TokenReward,
		"questions":    questions,
	})
}

// CompleteLesson godoc
// @Summary Submit quiz answers and complete a lesson
// @Description Grades the answers, then runs the completion through the gamification engine
// @Tags lessons
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /lessons/{id}/complete [post]
func (lc *LessonsController) CompleteLesson(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var lesson models.Lesson
	err := lc.DB.Preload("Questions").First(&lesson, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	type AnswerInput struct {
		QuestionID uint `json:"question_id"`
		Answer     int  `json:"answer"`
	}
	type CompleteInput struct {
		Answers []AnswerInput `json:"answers"`
	}

	var input CompleteInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	// Content-only lessons complete with a full score; quizzes are
	// graded against the stored correct answers. Grading runs per
	// stored question with at most one answer each, so duplicate
	// submissions cannot inflate the score.
	scorePct := 100.0
	if len(lesson.Questions) > 0 {
		answers := make(map[uint]int, len(input.Answers))
		for _, answer := range input.Answers {
			if _, seen := answers[answer.QuestionID]; !seen {
				answers[answer.QuestionID] = answer.Answer
			}
		}

		correct := 0
		for _, question := range lesson.Questions {
			if answer, ok := answers[question.ID]; ok && answer == question.CorrectAnswer {
				correct++
			}
		}
		scorePct = float64(correct) / float64(len(lesson.Questions)) * 100
	}

	now := time.Now()
	if _, _, err := lc.Progress.Dispatch(userID, gamification.DailyVisit{Today: now}); err != nil {
		return respondEngineError(c, err)
	}

	snapshot, notifications, err := lc.Progress.Dispatch(userID, gamification.ChapterCompleted{
		LessonID:     lesson.Slug,
		ScorePct:     scorePct,
		TokensEarned: lesson.TokenReward,
	})
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(fiber.Map{
		"score":         snapshot.ChapterScores[lesson.Slug],
		"progress":      snapshot,
		"notifications": notifications,
	})
}

// CreateLesson godoc
// @Summary Create a lesson (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/lessons [post]
func (lc *LessonsController) CreateLesson(c *fiber.Ctx) error {
	var lesson models.Lesson
	if err := c.BodyParser(&lesson); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if lesson.Slug == "" || lesson.Title == "" {
		return utils.BadRequest(c, "Slug and title are required")
	}

	if err := lc.DB.Create(&lesson).Error; err != nil {
		return utils.InternalServerError(c, "Could not create lesson")
	}

	return utils.Success(c, fiber.StatusCreated, lesson)
}

// AddQuestion godoc
// @Summary Add a quiz question to a lesson (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/lessons/{id}/questions [post]
func (lc *LessonsController) AddQuestion(c *fiber.Ctx) error {
	var lesson models.Lesson
	if err := lc.DB.First(&lesson, "id = ?", c.Params("id")).Error; err != nil {
		return utils.NotFound(c, "Lesson not found")
	}

	var question models.QuizQuestion
	if err := c.BodyParser(&question); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	question.LessonID = lesson.ID

	if err := lc.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	return utils.Success(c, fiber.StatusCreated, question)
}
