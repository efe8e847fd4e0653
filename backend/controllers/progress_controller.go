package controllers

import (
	"time"

	"finquest/backend/config"
	"finquest/backend/gamification"
	"finquest/backend/middleware"
	"finquest/backend/progress"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *progress.Service
}

func NewProgressController(db *gorm.DB, cfg *config.Config, svc *progress.Service) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Progress: svc}
}

// GetProgress godoc
// @Summary Get the current gamification snapshot
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	snapshot, err := pc.Progress.Snapshot(userID)
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(fiber.Map{
		"progress":     snapshot,
		"level_table":  pc.Progress.Levels(),
		"achievements": achievementCatalog(snapshot),
	})
}

// RecordVisit godoc
// @Summary Record a daily visit
// @Description Advances or resets the streak depending on the calendar gap
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/visit [post]
func (pc *ProgressController) RecordVisit(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	snapshot, notifications, err := pc.Progress.Dispatch(userID, gamification.DailyVisit{Today: time.Now()})
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(fiber.Map{
		"progress":      snapshot,
		"notifications": notifications,
	})
}

// RecordInvestment godoc
// @Summary Record that the user took a real investment action
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/investment [post]
func (pc *ProgressController) RecordInvestment(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	snapshot, notifications, err := pc.Progress.Dispatch(userID, gamification.InvestmentAction{})
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(fiber.Map{
		"progress":      snapshot,
		"notifications": notifications,
	})
}

func achievementCatalog(snapshot gamification.Snapshot) []fiber.Map {
	catalog := make([]fiber.Map, 0, 5)
	for _, definition := range gamification.Achievements() {
		catalog = append(catalog, fiber.Map{
			"id":       definition.ID,
			"title":    definition.Title,
			"unlocked": snapshot.HasAchievement(definition.ID),
		})
	}
	return catalog
}
