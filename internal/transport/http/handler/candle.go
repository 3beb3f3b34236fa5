package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/internal/service"
)

type CandleHandler struct {
	catalog  service.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCandleHandler(catalog service.CatalogService, logger *zap.Logger) *CandleHandler {
	return &CandleHandler{
		catalog:  catalog,
		validate: newValidator(),
		logger:   logger,
	}
}

type createCandleRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"required"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Weight      *int32 `json:"weight" validate:"omitempty,gt=0"`
	Height      *int32 `json:"height" validate:"omitempty,gt=0"`
	Width       *int32 `json:"width" validate:"omitempty,gt=0"`
	Category    string `json:"category"`
	Fragrance   string `json:"fragrance"`
	Color       string `json:"color"`
	BurnTime    string `json:"burnTime"`
	Material    string `json:"material"`
	Stock       *int64 `json:"stock" validate:"omitempty,gte=0"`
	Photo       string `json:"photo" validate:"omitempty,url"`
}

func (h *CandleHandler) List(c *fiber.Ctx) error {
	candles, err := h.catalog.ListCandles(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"candles": candles,
	})
}

func (h *CandleHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid candle id")
	}

	candle, err := h.catalog.GetCandle(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"candle":  candle,
	})
}

func (h *CandleHandler) Create(c *fiber.Ctx) error {
	var req createCandleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "error parsing body")
	}

	if err := h.validate.Struct(&req); err != nil {
		return validationFailed(c, err)
	}

	candle := &domain.Candle{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Weight:      req.Weight,
		Height:      req.Height,
		Width:       req.Width,
		Category:    req.Category,
		Fragrance:   req.Fragrance,
		Color:       req.Color,
		BurnTime:    req.BurnTime,
		Material:    req.Material,
		Stock:       req.Stock,
		Photo:       req.Photo,
		Active:      true,
	}

	if err := h.catalog.CreateCandle(c.UserContext(), candle); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "candle created",
		"candle":  candle,
	})
}

func (h *CandleHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid candle id")
	}

	var input domain.UpdateCandleInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "error parsing body")
	}

	if input.Price != nil && *input.Price <= 0 {
		return badRequest(c, "price must be greater than 0")
	}
	if input.Stock != nil && *input.Stock < 0 {
		return badRequest(c, "stock must not be negative")
	}

	candle, err := h.catalog.UpdateCandle(c.UserContext(), id, &input)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "candle updated",
		"candle":  candle,
	})
}

func (h *CandleHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid candle id")
	}

	if err := h.catalog.DeleteCandle(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "candle deleted",
	})
}
