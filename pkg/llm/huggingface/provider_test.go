package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mindcare-be/pkg/llm"
	"mindcare-be/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(url string) *HuggingFaceProvider {
	p := NewHuggingFaceProvider("hf_test", url, "test/model")
	p.retry = retry.Config{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiple: 1}
	return p
}

func TestChatRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test/model", body.Model)
		assert.Equal(t, 500, body.MaxTokens)
		assert.Equal(t, 0.3, body.Temperature)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, llm.RoleSystem, body.Messages[0].Role)
		assert.Equal(t, "I can't sleep", body.Messages[1].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Let's try a breathing exercise."}}]}`))
	}))
	defer srv.Close()

	reply, err := newTestProvider(srv.URL).Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "Be supportive."},
		{Role: llm.RoleUser, Content: "I can't sleep"},
	}, llm.WithTemperature(0.3))
	require.NoError(t, err)
	assert.Equal(t, "Let's try a breathing exercise.", reply)
}

func TestChatClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model not supported"}}`))
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "status 400")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChatServerErrorIsRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	reply, err := newTestProvider(srv.URL).Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestChatEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "empty choices")
}

func TestChatWithoutKey(t *testing.T) {
	_, err := NewHuggingFaceProvider("", "", "").Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}
