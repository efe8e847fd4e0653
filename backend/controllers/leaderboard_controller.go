package controllers

import (
	"finquest/backend/config"
	"finquest/backend/leaderboard"
	"finquest/backend/middleware"
	"finquest/backend/models"
	"finquest/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const leaderboardSize = 10

type LeaderboardController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Board *leaderboard.Board
}

func NewLeaderboardController(db *gorm.DB, cfg *config.Config, board *leaderboard.Board) *LeaderboardController {
	return &LeaderboardController{DB: db, Cfg: cfg, Board: board}
}

// GetLeaderboard godoc
// @Summary Top users by XP plus the caller's own rank
// @Tags leaderboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /leaderboard [get]
func (lc *LeaderboardController) GetLeaderboard(c *fiber.Ctx) error {
	if lc.Board == nil {
		return utils.Error(c, fiber.StatusServiceUnavailable,
			fiber.NewError(fiber.StatusServiceUnavailable, "Leaderboard is not configured"))
	}

	entries, err := lc.Board.Top(leaderboardSize)
	if err != nil {
		return utils.InternalServerError(c, "Could not read leaderboard")
	}

	type RankedUser struct {
		Rank     int    `json:"rank"`
		UserID   uint   `json:"user_id"`
		Username string `json:"username"`
		XP       int    `json:"xp"`
	}

	ranked := make([]RankedUser, 0, len(entries))
	for _, entry := range entries {
		var user models.User
		username := "unknown"
		if err := lc.DB.First(&user, entry.UserID).Error; err == nil {
			username = user.Username
		}
		ranked = append(ranked, RankedUser{
			Rank:     entry.Rank,
			UserID:   entry.UserID,
			Username: username,
			XP:       entry.XP,
		})
	}

	ownRank, err := lc.Board.Rank(middleware.UserID(c))
	if err != nil {
		return utils.InternalServerError(c, "Could not read leaderboard")
	}

	return c.JSON(fiber.Map{
		"top":      ranked,
		"own_rank": ownRank,
	})
}
