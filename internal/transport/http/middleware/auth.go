package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/internal/service"
	"github.com/Hverma1206/saan-candles-backend/pkg/utils"
)

const userLocalKey = "user"

// NewAuthMiddleware validates the Bearer token and loads the live user
// record into c.Locals, so role changes take effect without reissuing
// tokens.
func NewAuthMiddleware(authService service.AuthService, jwtSecret string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: missing header",
			})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: invalid header format",
			})
		}

		claims, err := utils.ValidateToken(jwtSecret, parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: invalid token",
			})
		}

		user, err := authService.GetUser(c.UserContext(), claims.UserID)
		if err != nil {
			logger.Warn(
				"Token references unknown user",
				zap.Int64("user_id", claims.UserID),
				zap.Error(err),
			)

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized: invalid token",
			})
		}

		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

// NewAdminMiddleware gates admin routes; it must run after the auth
// middleware.
func NewAdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(userLocalKey).(*domain.User)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized",
			})
		}

		if user.Role != domain.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Forbidden: admin access required",
			})
		}

		return c.Next()
	}
}

// CurrentUser returns the user loaded by the auth middleware.
func CurrentUser(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(userLocalKey).(*domain.User)
	return user, ok
}
