package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(jti string) bool { return r[jti] }

func decode(t *testing.T, body io.Reader) BaseResponse[map[string]interface{}] {
	t.Helper()
	var res BaseResponse[map[string]interface{}]
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/bad", func(ctx *fiber.Ctx) error { return BadRequest("Username and password required") })
	app.Get("/boom", func(ctx *fiber.Ctx) error { return errors.New("db exploded") })
	app.Get("/fiber", func(ctx *fiber.Ctx) error { return fiber.ErrForbidden })

	cases := []struct {
		path    string
		code    int
		message string
	}{
		{"/bad", 400, "Username and password required"},
		{"/boom", 500, "Internal server error"},
		{"/fiber", 403, "Forbidden"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.code, resp.StatusCode, tc.path)

		res := decode(t, resp.Body)
		assert.False(t, res.Success)
		assert.Equal(t, tc.code, res.Code)
		assert.Equal(t, tc.message, res.Message)
	}
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Username string `json:"username" validate:"required,min=3"`
		Message  string `json:"message" validate:"max=5"`
	}

	assert.NoError(t, ValidateRequest(req{Username: "alice"}))

	err := ValidateRequest(req{Username: "al"})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)
	assert.Equal(t, "username must be at least 3 characters", httpErr.Message)

	err = ValidateRequest(req{Username: "alice", Message: "too long"})
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "message must be at most 5 characters", httpErr.Message)
}

func TestIssueAndParseToken(t *testing.T) {
	userId := uuid.New()
	token, claims, err := IssueToken(testSecret, userId, "alice", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userId.String(), parsed.UserId)
	assert.Equal(t, "alice", parsed.Username)

	_, err = ParseToken("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, err := IssueToken(testSecret, userId, "alice", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJwtMiddleware(t *testing.T) {
	userId := uuid.New()
	token, claims, err := IssueToken(testSecret, userId, "alice", time.Hour)
	require.NoError(t, err)
	revoked := revokedSet{}

	app := fiber.New()
	app.Get("/me", NewJwtMiddleware(testSecret, revoked), func(ctx *fiber.Ctx) error {
		id, err := CurrentUserID(ctx)
		if err != nil {
			return err
		}
		return ctx.SendString(id.String())
	})

	t.Run("missing token", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest("GET", "/me", nil))
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, _ := app.Test(req)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Cookie", SessionCookie+"="+token)
		resp, _ := app.Test(req)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("query token is ignored", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest("GET", "/me?token="+token, nil))
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer nope")
		resp, _ := app.Test(req)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("revoked token", func(t *testing.T) {
		revoked[claims.ID] = true
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, _ := app.Test(req)
		assert.Equal(t, 401, resp.StatusCode)
	})
}

func TestRateLimiterDisabledWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Get("/chat", RateLimit(NewRateLimiter(nil, "chat", 1, time.Minute, nil)), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(200)
	})

	for i := 0; i < 3; i++ {
		resp, _ := app.Test(httptest.NewRequest("GET", "/chat", nil))
		assert.Equal(t, 200, resp.StatusCode)
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	app := fiber.New()
	app.Get("/chat", RateLimit(NewRateLimiter(client, "chat", 1, time.Minute, nil)), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(200)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/chat", nil), 2000)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
}
