package controllers

import (
	"errors"

	"finquest/backend/gamification"
	"finquest/backend/progress"
	"finquest/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// respondEngineError maps engine and store errors onto HTTP statuses.
// Validation failures are the caller's fault; a version conflict that
// survived the dispatch retries is reported as a transient conflict.
func respondEngineError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gamification.ErrInsufficientTokens):
		return utils.BadRequest(c, "Not enough tokens")
	case errors.Is(err, gamification.ErrInvalidAmount), errors.Is(err, gamification.ErrInvalidScore):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, progress.ErrNotFound):
		return utils.NotFound(c, "Progress not found")
	case errors.Is(err, progress.ErrVersionConflict):
		return utils.Conflict(c, "Progress was updated concurrently, please retry")
	default:
		return utils.InternalServerError(c, "Could not update progress")
	}
}
