package integration

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"mindcare-be/internal/bootstrap"
	"mindcare-be/internal/config"
	"mindcare-be/internal/constant"
	"mindcare-be/internal/dto"
	"mindcare-be/internal/pkg/serverutils"
	"mindcare-be/internal/server"
	"mindcare-be/pkg/crisis"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call[T any](t *testing.T, app *fiber.App, method, path, token, body string) (int, serverutils.BaseResponse[T]) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out serverutils.BaseResponse[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestChatFlow(t *testing.T) {
	db := openTestDB(t)

	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("EMOTION_PROVIDER", "lexicon")
	t.Setenv("REDIS_URL", "")
	t.Setenv("NATS_URL", "")
	cfg := config.Load()
	cfg.App.LogFilePath = t.TempDir() + "/app.log"
	cfg.App.LLMLogFilePath = t.TempDir() + "/llm.log"

	container, err := bootstrap.NewContainer(db, cfg)
	require.NoError(t, err)
	defer container.Close()
	app := server.New(cfg, container).GetApp()

	username := "flow-" + uuid.NewString()[:8]
	creds := `{"username":"` + username + `","password":"secret123"}`
	defer func() {
		_ = db.Exec("DELETE FROM conversations WHERE user_id IN (SELECT id FROM users WHERE username = ?)", username).Error
		_ = db.Exec("DELETE FROM crisis_events WHERE user_id IN (SELECT id FROM users WHERE username = ?)", username).Error
		_ = db.Exec("DELETE FROM chat_sessions WHERE user_id IN (SELECT id FROM users WHERE username = ?)", username).Error
		_ = db.Exec("DELETE FROM users WHERE username = ?", username).Error
	}()

	code, _ := call[dto.RegisterResponse](t, app, "POST", "/api/auth/register", "", creds)
	require.Equal(t, fiber.StatusCreated, code)

	code, dup := call[any](t, app, "POST", "/api/auth/register", "", creds)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, constant.MsgUsernameTaken, dup.Message)

	code, login := call[dto.LoginResponse](t, app, "POST", "/api/auth/login", "", creds)
	require.Equal(t, fiber.StatusOK, code)
	token := login.Data.AccessToken
	require.NotEmpty(t, token)

	code, reply := call[dto.SendChatResponse](t, app, "POST", "/api/chat", token, `{"message":"I feel so sad and lonely"}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "sadness", reply.Data.Emotion)
	assert.Equal(t, constant.NoAPIKeyReply, reply.Data.Reply)
	sessionID := reply.Data.SessionId

	code, crisisReply := call[dto.SendChatResponse](t, app, "POST", "/api/chat", token,
		`{"message":"I want to kill myself","session_id":"`+sessionID.String()+`"}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, crisisReply.Data.Crisis)
	assert.Equal(t, crisis.EmotionLabel, crisisReply.Data.Emotion)
	assert.Equal(t, crisis.Reply, crisisReply.Data.Reply)

	code, history := call[[]dto.ConversationResponse](t, app, "GET", "/api/chat/history?session_id="+sessionID.String(), token, "")
	require.Equal(t, fiber.StatusOK, code)
	require.Len(t, history.Data, 2)
	assert.Equal(t, "I feel so sad and lonely", history.Data[0].Message)
	assert.True(t, history.Data[1].Crisis)

	code, _ = call[any](t, app, "POST", "/api/auth/logout", token, "")
	require.Equal(t, fiber.StatusOK, code)

	code, _ = call[any](t, app, "GET", "/api/auth/me", token, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
}
