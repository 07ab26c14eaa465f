package controller

import (
	"errors"
	"strings"
	"time"

	"mindcare-be/internal/constant"
	"mindcare-be/internal/dto"
	"mindcare-be/internal/pkg/serverutils"
	"mindcare-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
}

type CookieConfig struct {
	Secure   bool
	SameSite string
}

type authController struct {
	service       service.IAuthService
	jwtMiddleware fiber.Handler
	cookie        CookieConfig
}

func NewAuthController(service service.IAuthService, jwtMiddleware fiber.Handler, cookie CookieConfig) IAuthController {
	if cookie.SameSite == "" {
		cookie.SameSite = fiber.CookieSameSiteLaxMode
	}
	return &authController{
		service:       service,
		jwtMiddleware: jwtMiddleware,
		cookie:        cookie,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Post("/logout", c.jwtMiddleware, c.Logout)
	h.Get("/me", c.jwtMiddleware, c.Me)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest(constant.MsgCredentialsRequired)
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return serverutils.BadRequest(constant.MsgCredentialsRequired)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.UserContext(), &req)
	if err != nil {
		return authError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.Response(fiber.StatusCreated, constant.MsgRegistered, res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest(constant.MsgCredentialsRequired)
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return serverutils.BadRequest(constant.MsgCredentialsRequired)
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		return authError(err)
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     serverutils.SessionCookie,
		Value:    res.AccessToken,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: c.cookie.SameSite,
	})
	return ctx.JSON(serverutils.SuccessResponse(constant.MsgLoggedIn, res))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	jti, expiresAt := serverutils.CurrentTokenID(ctx)
	if err := c.service.Logout(ctx.UserContext(), jti, expiresAt); err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     serverutils.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: c.cookie.SameSite,
	})
	return ctx.JSON(serverutils.SuccessResponse[any](constant.MsgLoggedOut, nil))
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Me(ctx.UserContext(), userId)
	if err != nil {
		return authError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("User profile", res))
}

func authError(err error) error {
	switch {
	case errors.Is(err, service.ErrCredentialsRequired):
		return serverutils.BadRequest(constant.MsgCredentialsRequired)
	case errors.Is(err, service.ErrUsernameTaken):
		return serverutils.BadRequest(constant.MsgUsernameTaken)
	case errors.Is(err, service.ErrUserNotFound):
		return serverutils.NotFound(constant.MsgUserNotFound)
	case errors.Is(err, service.ErrInvalidCredentials):
		return serverutils.Unauthorized(constant.MsgInvalidCredentials)
	default:
		return serverutils.Internal(err)
	}
}
