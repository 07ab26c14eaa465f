package controller

import (
	"context"
	"time"

	"mindcare-be/internal/dto"
	"mindcare-be/internal/pkg/serverutils"
	"mindcare-be/pkg/crisis"

	"github.com/gofiber/fiber/v2"
)

// HealthProbe reports the state of the dependencies shown by /health.
type HealthProbe struct {
	PingDatabase   func(ctx context.Context) error
	KnowledgeReady func() bool
	LLMConfigured  bool
	// Connections counts open websocket connections on this instance.
	Connections func() int
}

type IResourceController interface {
	RegisterRoutes(r fiber.Router)
	CrisisResources(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type resourceController struct {
	probe HealthProbe
}

func NewResourceController(probe HealthProbe) IResourceController {
	return &resourceController{probe: probe}
}

func (c *resourceController) RegisterRoutes(r fiber.Router) {
	r.Get("/resources/crisis", c.CrisisResources)
	r.Get("/health", c.Health)
}

func (c *resourceController) CrisisResources(ctx *fiber.Ctx) error {
	resources := crisis.Resources()
	res := make([]dto.CrisisResource, 0, len(resources))
	for _, r := range resources {
		res = append(res, dto.CrisisResource{Name: r.Name, Contact: r.Contact})
	}
	return ctx.JSON(serverutils.SuccessResponse("Crisis resources", res))
}

func (c *resourceController) Health(ctx *fiber.Ctx) error {
	res := dto.HealthResponse{
		Status:        "ok",
		Database:      "ok",
		LLMConfigured: c.probe.LLMConfigured,
	}
	if c.probe.KnowledgeReady != nil {
		res.KnowledgeReady = c.probe.KnowledgeReady()
	}
	if c.probe.Connections != nil {
		res.WebsocketConnections = c.probe.Connections()
	}

	if c.probe.PingDatabase != nil {
		pingCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
		defer cancel()
		if err := c.probe.PingDatabase(pingCtx); err != nil {
			res.Status = "degraded"
			res.Database = "unreachable"
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.Response(fiber.StatusServiceUnavailable, "Service degraded", res))
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("Service healthy", res))
}
