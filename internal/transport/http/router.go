package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/Hverma1206/saan-candles-backend/internal/metrics"
	"github.com/Hverma1206/saan-candles-backend/internal/service"
	"github.com/Hverma1206/saan-candles-backend/internal/transport/http/handler"
	"github.com/Hverma1206/saan-candles-backend/internal/transport/http/middleware"
)

type RouterDeps struct {
	AuthService    service.AuthService
	CatalogService service.CatalogService
	OrderService   service.OrderService
	JWTSecret      string
	Logger         *zap.Logger
}

// SetupRoutes wires all endpoints. Catalog reads are public, catalog
// writes and the order admin surface require an admin token.
func SetupRoutes(app *fiber.App, deps RouterDeps) {
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Logger)
	candleHandler := handler.NewCandleHandler(deps.CatalogService, deps.Logger)
	orderHandler := handler.NewOrderHandler(deps.OrderService, deps.Logger)

	requireAuth := middleware.NewAuthMiddleware(deps.AuthService, deps.JWTSecret, deps.Logger)
	requireAdmin := middleware.NewAdminMiddleware()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/send-otp", authHandler.SendOTP)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/register", authHandler.Register)
	auth.Get("/me", requireAuth, authHandler.Me)

	candles := api.Group("/candles")
	candles.Get("/", candleHandler.List)
	candles.Get("/:id", candleHandler.Get)
	candles.Post("/", requireAuth, requireAdmin, candleHandler.Create)
	candles.Put("/:id", requireAuth, requireAdmin, candleHandler.Update)
	candles.Delete("/:id", requireAuth, requireAdmin, candleHandler.Delete)

	orders := api.Group("/orders", requireAuth)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.ListMine)

	admin := orders.Group("/admin", requireAdmin)
	admin.Get("/all", orderHandler.ListAll)
	admin.Get("/:id", orderHandler.GetAdmin)
	admin.Put("/:id/status", orderHandler.UpdateStatus)

	// Registered after /admin so "admin" is never captured as an :id.
	orders.Get("/:id", orderHandler.GetMine)
}
