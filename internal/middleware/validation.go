package middleware

import (
	"github.com/gofiber/fiber/v2"
	"tubequiz/internal/domain"
	"tubequiz/internal/util"
)

// ValidateQuizID rejects malformed quiz IDs in the :id path parameter as not
// found, before any storage lookup happens.
func ValidateQuizID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !util.IsULID(id) {
			return domain.NewQuizNotFoundError(id)
		}
		return c.Next()
	}
}
