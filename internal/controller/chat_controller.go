package controller

import (
	"context"
	"encoding/json"
	"errors"

	"mindcare-be/internal/dto"
	"mindcare-be/internal/pkg/serverutils"
	"mindcare-be/internal/service"
	internalWS "mindcare-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	frameChatReply = "chat_reply"
	frameError     = "error"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type chatController struct {
	service       service.IChatService
	hub           *internalWS.Hub
	jwtMiddleware fiber.Handler
	limiter       serverutils.Limiter
}

// NewChatController shares limiter between POST /chat and websocket frames.
// A nil limiter disables rate limiting.
func NewChatController(service service.IChatService, hub *internalWS.Hub, jwtMiddleware fiber.Handler, limiter serverutils.Limiter) IChatController {
	return &chatController{
		service:       service,
		hub:           hub,
		jwtMiddleware: jwtMiddleware,
		limiter:       limiter,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat", c.jwtMiddleware)
	h.Post("/", serverutils.RateLimit(c.limiter), c.SendChat)
	h.Post("/history", c.GetHistory)
	h.Get("/history", c.GetHistory)
	h.Post("/sessions", c.CreateSession)
	h.Get("/sessions", c.ListSessions)
	h.Delete("/sessions/:id", c.DeleteSession)

	if c.hub != nil {
		h.Use("/ws", func(ctx *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(ctx) {
				return ctx.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		h.Get("/ws", c.ServeWs)
	}
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Message is required")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendChat(ctx.UserContext(), userId, &req)
	if err != nil {
		return chatError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Reply generated", res))
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.HistoryRequest
	if ctx.Method() == fiber.MethodPost && len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return serverutils.BadRequest("Invalid request body")
		}
	} else if raw := ctx.Query("session_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return serverutils.BadRequest("Invalid session id")
		}
		req.SessionId = &id
	}

	res, err := c.service.GetHistory(ctx.UserContext(), userId, req.SessionId)
	if err != nil {
		return chatError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history", res))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return serverutils.BadRequest("Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateSession(ctx.UserContext(), userId, &req)
	if err != nil {
		return chatError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.Response(fiber.StatusCreated, "Chat session created", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListSessions(ctx.UserContext(), userId)
	if err != nil {
		return chatError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat sessions", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.BadRequest("Invalid session id")
	}

	if err := c.service.DeleteSession(ctx.UserContext(), userId, sessionId); err != nil {
		return chatError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Chat session deleted", nil))
}

func (c *chatController) ServeWs(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	return websocket.New(func(conn *websocket.Conn) {
		internalWS.ServeWs(c.hub, conn, userId, c)
	})(ctx)
}

// HandleMessage answers one websocket chat frame.
func (c *chatController) HandleMessage(ctx context.Context, userID uuid.UUID, payload []byte) internalWS.Frame {
	if c.limiter != nil && !c.limiter.Allow(ctx, userID.String()).Allowed {
		return errorFrame(serverutils.MsgRateLimited)
	}

	var req dto.SendChatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return errorFrame("Invalid message format")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		_, message := serverutils.StatusOf(err)
		return errorFrame(message)
	}

	res, err := c.service.SendChat(ctx, userID, &req)
	if err != nil {
		_, message := serverutils.StatusOf(chatError(err))
		return errorFrame(message)
	}
	return internalWS.Frame{Type: frameChatReply, Data: res}
}

func errorFrame(message string) internalWS.Frame {
	return internalWS.Frame{Type: frameError, Data: fiber.Map{"message": message}}
}

func chatError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return serverutils.BadRequest("Message is required")
	case errors.Is(err, service.ErrSessionNotFound):
		return serverutils.NotFound("Chat session not found")
	default:
		return serverutils.Internal(err)
	}
}
