package controller

import (
	"errors"

	"mindcare-be/internal/dto"
	"mindcare-be/internal/pkg/serverutils"
	"mindcare-be/internal/service"
	"mindcare-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	service       service.IChatService
	jwtMiddleware fiber.Handler
}

func NewKnowledgeController(service service.IChatService, jwtMiddleware fiber.Handler) IKnowledgeController {
	return &knowledgeController{service: service, jwtMiddleware: jwtMiddleware}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge")
	h.Get("/", c.List)
	h.Post("/search", c.jwtMiddleware, c.Search)
}

func (c *knowledgeController) List(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Knowledge base", c.service.ListKnowledge(ctx.UserContext())))
}

func (c *knowledgeController) Search(ctx *fiber.Ctx) error {
	var req dto.KnowledgeSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SearchKnowledge(ctx.UserContext(), &req)
	if errors.Is(err, rag.ErrEmptyQuery) {
		return serverutils.BadRequest("query is required")
	}
	if err != nil {
		return &serverutils.HTTPError{Code: fiber.StatusServiceUnavailable, Message: "Knowledge search unavailable", Err: err}
	}
	return ctx.JSON(serverutils.SuccessResponse("Nearest passages", res))
}
