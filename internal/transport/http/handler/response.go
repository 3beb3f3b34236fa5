package handler

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/repository"
	"github.com/Hverma1206/saan-candles-backend/internal/service"
	"github.com/Hverma1206/saan-candles-backend/pkg/utils"
)

var (
	zipPattern   = regexp.MustCompile(`^\d{5,6}$`)
	phonePattern = regexp.MustCompile(`^\d{10,15}$`)
)

// newValidator registers the custom formats used by shipping addresses.
func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return v
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "validation failed",
		"errors":  utils.FormatValidationError(err),
	})
}

// respondError maps domain errors to HTTP statuses. Anything unmapped is
// a 500 with a generic message so internals never leak to clients.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var (
		notFoundErr    *service.ProductsNotFoundError
		unavailableErr *service.ProductUnavailableError
		stockErr       *service.InsufficientStockError
	)

	switch {
	case errors.Is(err, repository.ErrCandleNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		status = fiber.StatusNotFound
		message = err.Error()

	case errors.Is(err, repository.ErrEmailTaken),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrNoPasswordSet),
		errors.Is(err, service.ErrInvalidOTP):
		status = fiber.StatusBadRequest
		message = err.Error()

	case errors.As(err, &notFoundErr),
		errors.As(err, &unavailableErr),
		errors.As(err, &stockErr):
		status = fiber.StatusBadRequest
		message = err.Error()

	case errors.Is(err, service.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
		message = err.Error()

	case errors.Is(err, service.ErrAccessDenied),
		errors.Is(err, service.ErrNotVerified):
		status = fiber.StatusForbidden
		message = err.Error()

	default:
		logger.Error("Request failed", zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
