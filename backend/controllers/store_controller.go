package controllers

import (
	"errors"

	"finquest/backend/config"
	"finquest/backend/gamification"
	"finquest/backend/middleware"
	"finquest/backend/models"
	"finquest/backend/progress"
	"finquest/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *progress.Service
}

func NewStoreController(db *gorm.DB, cfg *config.Config, svc *progress.Service) *StoreController {
	return &StoreController{DB: db, Cfg: cfg, Progress: svc}
}

// GetItems godoc
// @Summary List redeemable reward items
// @Tags store
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /store/items [get]
func (sc *StoreController) GetItems(c *fiber.Ctx) error {
	var items []models.RewardItem
	if err := sc.DB.Where("available = ?", true).Order("cost_tokens").Find(&items).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"items": items})
}

// Redeem godoc
// @Summary Redeem tokens for a reward item
// @Description Deducts the item cost from the token balance and issues a receipt
// @Tags store
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /store/redeem [post]
func (sc *StoreController) Redeem(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	type RedeemInput struct {
		ItemID uint `json:"item_id"`
	}

	var input RedeemInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var item models.RewardItem
	if err := sc.DB.First(&item, input.ItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Reward item not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if !item.Available {
		return utils.BadRequest(c, "Reward item is not available")
	}

	redemption := models.Redemption{
		UserID:       userID,
		RewardItemID: item.ID,
		Receipt:      uuid.NewString(),
		CostTokens:   item.CostTokens,
	}

	// The deduction and the receipt commit or roll back together, so a
	// failed insert can never leave the user with tokens gone and no
	// redemption on record.
	var snapshot gamification.Snapshot
	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		next, _, err := sc.Progress.WithStore(progress.NewGormStore(tx)).
			Dispatch(userID, gamification.RewardRedeemed{CostTokens: item.CostTokens})
		if err != nil {
			return err
		}
		snapshot = next
		return tx.Create(&redemption).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gamification.ErrInsufficientTokens),
			errors.Is(err, gamification.ErrInvalidAmount),
			errors.Is(err, progress.ErrNotFound),
			errors.Is(err, progress.ErrVersionConflict):
			return respondEngineError(c, err)
		default:
			return utils.InternalServerError(c, "Could not record redemption")
		}
	}

	return c.JSON(fiber.Map{
		"receipt":       redemption.Receipt,
		"token_balance": snapshot.TokenBalance,
	})
}
