package controllers

import (
	"errors"

	"finquest/backend/config"
	"finquest/backend/middleware"
	"finquest/backend/models"
	"finquest/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Tags user
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{
		"id":               user.ID,
		"username":         user.Username,
		"email":            user.Email,
		"experience_level": user.ExperienceLevel,
		"investment_goal":  user.InvestmentGoal,
		"monthly_budget":   user.MonthlyBudget,
	})
}

// UpdateProfile godoc
// @Summary Update onboarding profile fields
// @Tags user
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	type ProfileInput struct {
		ExperienceLevel string `json:"experience_level"`
		InvestmentGoal  string `json:"investment_goal"`
		MonthlyBudget   int    `json:"monthly_budget"`
	}

	var input ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	user.ExperienceLevel = input.ExperienceLevel
	user.InvestmentGoal = input.InvestmentGoal
	user.MonthlyBudget = input.MonthlyBudget
	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"experience_level": user.ExperienceLevel,
		"investment_goal":  user.InvestmentGoal,
		"monthly_budget":   user.MonthlyBudget,
	})
}
