package controllers

import (
	"errors"
	"log"
	"time"

	"finquest/backend/config"
	"finquest/backend/gamification"
	"finquest/backend/models"
	"finquest/backend/progress"
	"finquest/backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *progress.Service
}

func NewAuthController(db *gorm.DB, cfg *config.Config, svc *progress.Service) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Progress: svc}
}

// Register godoc
// @Summary Register a new user
// @Description Creates a user account with a zero-valued progress snapshot
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	type RegisterInput struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ExperienceLevel string `json:"experience_level"`
		InvestmentGoal  string `json:"investment_goal"`
		MonthlyBudget   int    `json:"monthly_budget"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "Username, email and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Username:        input.Username,
		Email:           input.Email,
		PasswordHash:    string(hashedPassword),
		ExperienceLevel: input.ExperienceLevel,
		InvestmentGoal:  input.InvestmentGoal,
		MonthlyBudget:   input.MonthlyBudget,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not create user")
	}

	// Every account starts with an empty progress snapshot.
	if err := ac.Progress.Init(user.ID); err != nil {
		return utils.InternalServerError(c, "Could not initialize progress")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Login godoc
// @Summary User login
// @Description Authenticates the user, returns a JWT and records a daily visit
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	// History is best-effort; a failed insert must not block login.
	if err := ac.DB.Create(&models.LoginHistory{UserID: user.ID, LoginTime: time.Now()}).Error; err != nil {
		log.Printf("could not record login history for user %d: %v", user.ID, err)
	}

	// The visit event keeps streaks and the daily goal in sync; the
	// engine treats a second login on the same day as a no-op.
	snapshot, notifications, err := ac.Progress.Dispatch(user.ID, gamification.DailyVisit{Today: time.Now()})
	if err != nil {
		return respondEngineError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
		"progress":      snapshot,
		"notifications": notifications,
	})
}
