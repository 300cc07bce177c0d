package controller

import (
	"ca-assistant-be/internal/pkg/serverutils"
	"ca-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Collections(ctx *fiber.Ctx) error
}

type healthController struct {
	healthService service.IHealthService
}

func NewHealthController(healthService service.IHealthService) IHealthController {
	return &healthController{
		healthService: healthService,
	}
}

// RegisterRoutes takes the app root, not the api group: load balancers
// probe /health without the prefix.
func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/api/collections", c.Collections)
}

// Health reports raw capability status without the response envelope so
// probes can read it directly.
func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(c.healthService.Check(ctx.Context()))
}

func (c *healthController) Collections(ctx *fiber.Ctx) error {
	res := c.healthService.Collections(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Success list collections", res))
}
