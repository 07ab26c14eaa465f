package serverutils

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RevocationChecker interface {
	IsRevoked(jti string) bool
}

// NewJwtMiddleware accepts the token from the Authorization header or the
// session cookie. Browsers send the cookie on the websocket upgrade too.
func NewJwtMiddleware(secret string, revoked RevocationChecker) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := extractToken(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		claims, err := ParseToken(secret, tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}
		if revoked != nil && revoked.IsRevoked(claims.ID) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Session has ended"))
		}

		ctx.Locals("user_id", claims.UserId)
		ctx.Locals("username", claims.Username)
		ctx.Locals("jti", claims.ID)
		if claims.ExpiresAt != nil {
			ctx.Locals("expires_at", claims.ExpiresAt.Time)
		}
		return ctx.Next()
	}
}

func extractToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ctx.Cookies(SessionCookie)
}

// CurrentUserID reads the id stored by the jwt middleware.
func CurrentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, Unauthorized("Invalid session")
	}
	return userId, nil
}

func CurrentTokenID(ctx *fiber.Ctx) (string, time.Time) {
	jti, _ := ctx.Locals("jti").(string)
	expiresAt, _ := ctx.Locals("expires_at").(time.Time)
	return jti, expiresAt
}
