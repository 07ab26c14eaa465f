package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mindcare-be/internal/constant"
	"mindcare-be/internal/dto"
	"mindcare-be/internal/entity"
	"mindcare-be/internal/pkg/logger"
	"mindcare-be/internal/repository/memory"
	"mindcare-be/pkg/crisis"
	"mindcare-be/pkg/emotion"
	"mindcare-be/pkg/events"
	"mindcare-be/pkg/llm"
	"mindcare-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	hits []rag.Hit
	err  error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string) ([]rag.Hit, error) {
	return f.Search(ctx, query, rag.DefaultTopK)
}

func (f *fakeRetriever) Search(ctx context.Context, query string, k int) ([]rag.Hit, error) {
	if f.err != nil {
		return nil, f.err
	}
	if k > len(f.hits) {
		k = len(f.hits)
	}
	return f.hits[:k], nil
}

func (f *fakeRetriever) Corpus() []rag.Passage {
	out := make([]rag.Passage, len(f.hits))
	for i, h := range f.hits {
		out[i] = h.Passage
	}
	return out
}

type fakeLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	calls [][]llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, history)
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.CrisisDetected
}

func (f *fakePublisher) PublishCrisis(ctx context.Context, event events.CrisisDetected) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type chatFixture struct {
	svc       IChatService
	store     *fakeStore
	llm       *fakeLLM
	retriever *fakeRetriever
	publisher *fakePublisher
	history   *memory.HistoryRepository
	user      *entity.User
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		store: newFakeStore(),
		llm:   &fakeLLM{reply: "That sounds hard. I'm here with you."},
		retriever: &fakeRetriever{hits: []rag.Hit{
			{Passage: rag.Passage{ID: 0, Text: "Anxiety can cause rapid heartbeat and excessive worry."}, Distance: 0.1},
			{Passage: rag.Passage{ID: 7, Text: "Mindfulness meditation can reduce stress and anxiety."}, Distance: 0.4},
		}},
		publisher: &fakePublisher{},
		history:   memory.NewHistoryRepository(time.Minute),
		user:      &entity.User{Id: uuid.New(), Username: "alice"},
	}
	f.store.users = append(f.store.users, f.user)
	f.svc = NewChatService(
		f.store,
		emotion.NewLexiconClassifier(),
		f.retriever,
		f.llm,
		f.history,
		f.publisher,
		ChatServiceConfig{HistoryWindow: 6},
		logger.NewNopLogger(),
		logger.NewNopLogger(),
	)
	return f
}

func TestSendChatBuildsPromptAndPersists(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	res, err := f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "I'm so anxious about my exams"})
	require.NoError(t, err)

	assert.Equal(t, "fear", res.Emotion)
	assert.False(t, res.Crisis)
	assert.Equal(t, f.llm.reply, res.Reply)
	assert.Len(t, res.Context, 2)
	assert.NotEqual(t, uuid.Nil, res.SessionId)

	require.Len(t, f.llm.calls, 1)
	userPrompt := f.llm.calls[0][1].Content
	assert.Contains(t, userPrompt, "Detected emotion: fear")
	assert.Contains(t, userPrompt, "Anxiety can cause rapid heartbeat and excessive worry. Mindfulness meditation")
	assert.Contains(t, userPrompt, "User message:\nI'm so anxious about my exams")

	require.Len(t, f.store.conversations, 1)
	stored := f.store.conversations[0]
	assert.Equal(t, res.SessionId, stored.SessionId)
	assert.Equal(t, "fear", stored.Emotion)
	assert.Len(t, stored.RetrievedContext, 2)

	require.Len(t, f.store.sessions, 1)
	assert.Equal(t, "I'm so anxious about my exams", f.store.sessions[0].Title)
}

func TestSendChatCarriesHistoryWindow(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	first, err := f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "hello there"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "message " + string(rune('a'+i)), SessionId: &first.SessionId})
		require.NoError(t, err)
	}

	lines, found := f.history.Get(first.SessionId)
	require.True(t, found)
	assert.Len(t, lines, 6)
	assert.Equal(t, "User: message a", lines[0])

	last := f.llm.calls[len(f.llm.calls)-1][1].Content
	assert.Contains(t, last, "Conversation history:\nUser: hello there\nAssistant: ")
}

func TestSendChatRebuildsHistoryFromStore(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	first, err := f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "I lost my job"})
	require.NoError(t, err)
	f.history.Delete(first.SessionId)

	_, err = f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "what now", SessionId: &first.SessionId})
	require.NoError(t, err)

	last := f.llm.calls[len(f.llm.calls)-1][1].Content
	assert.Contains(t, last, "User: I lost my job\nAssistant: "+f.llm.reply)
}

func TestSendChatCrisisSkipsModel(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	res, err := f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "I want to die"})
	require.NoError(t, err)

	assert.True(t, res.Crisis)
	assert.Equal(t, crisis.EmotionLabel, res.Emotion)
	assert.Equal(t, crisis.Reply, res.Reply)
	assert.Empty(t, res.Context)
	assert.Empty(t, f.llm.calls)

	require.Len(t, f.publisher.events, 1)
	event := f.publisher.events[0]
	assert.Equal(t, f.user.Id, event.UserId)
	assert.Equal(t, "alice", event.Username)
	assert.Equal(t, []string{"want to die"}, event.MatchedPhrases)

	require.Len(t, f.store.conversations, 1)
	assert.True(t, f.store.conversations[0].IsCrisis)
}

func TestSendChatModelFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"missing key", llm.ErrMissingAPIKey, constant.NoAPIKeyReply},
		{"wrapped missing key", errors.Join(errors.New("groq"), llm.ErrMissingAPIKey), constant.NoAPIKeyReply},
		{"upstream error", errors.New("503 service unavailable"), constant.FallbackReply},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newChatFixture(t)
			f.llm.err = tc.err

			res, err := f.svc.SendChat(context.Background(), f.user.Id, &dto.SendChatRequest{Message: "I feel sad"})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Reply)
			assert.Equal(t, "sadness", res.Emotion)
		})
	}
}

func TestSendChatRetrievalFailureStillReplies(t *testing.T) {
	f := newChatFixture(t)
	f.retriever.err = errors.New("embedding service down")

	res, err := f.svc.SendChat(context.Background(), f.user.Id, &dto.SendChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, f.llm.reply, res.Reply)
	assert.Empty(t, res.Context)
}

func TestSendChatValidation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	other := uuid.New()
	_, err = f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "hi", SessionId: &other})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionsAndHistory(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateSession(ctx, f.user.Id, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, constant.DefaultSessionTitle, a.Title)
	b, err := f.svc.CreateSession(ctx, f.user.Id, &dto.CreateSessionRequest{Title: "Sleep"})
	require.NoError(t, err)

	_, err = f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "first", SessionId: &a.Id})
	require.NoError(t, err)
	_, err = f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "second", SessionId: &b.Id})
	require.NoError(t, err)

	all, err := f.svc.GetHistory(ctx, f.user.Id, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].Message)
	assert.Equal(t, "second", all[1].Message)

	onlyB, err := f.svc.GetHistory(ctx, f.user.Id, &b.Id)
	require.NoError(t, err)
	require.Len(t, onlyB, 1)
	assert.Equal(t, "second", onlyB[0].Message)

	sessions, err := f.svc.ListSessions(ctx, f.user.Id)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Sleep", sessions[0].Title)

	require.NoError(t, f.svc.DeleteSession(ctx, f.user.Id, b.Id))
	_, found := f.history.Get(b.Id)
	assert.False(t, found)
	remaining, err := f.svc.GetHistory(ctx, f.user.Id, nil)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	assert.ErrorIs(t, f.svc.DeleteSession(ctx, uuid.New(), a.Id), ErrSessionNotFound)
}

func TestHistoryIsScopedToUser(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "private"})
	require.NoError(t, err)

	other, err := f.svc.GetHistory(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSessionTitleTruncates(t *testing.T) {
	long := strings.Repeat("word ", 30)
	title := sessionTitle(long)
	assert.True(t, strings.HasSuffix(title, "..."))
	assert.LessOrEqual(t, len([]rune(title)), constant.SessionTitleMaxLen+3)
	assert.Equal(t, "short one", sessionTitle("  short \n one "))
}

func TestKnowledgeSearch(t *testing.T) {
	f := newChatFixture(t)

	hits, err := f.svc.SearchKnowledge(context.Background(), &dto.KnowledgeSearchRequest{Query: "panic", K: 1})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0, hits[0].Id)
	require.NotNil(t, hits[0].Distance)

	assert.Len(t, f.svc.ListKnowledge(context.Background()), 2)
}

// gatedLLM holds every call until release is closed.
type gatedLLM struct {
	arrived chan struct{}
	release chan struct{}
}

func (g *gatedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	g.arrived <- struct{}{}
	<-g.release
	return "ok", nil
}

func (g *gatedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return g.Chat(ctx, nil, options...)
}

func TestSendChatConcurrentTurnsKeepBothInWindow(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	first, err := f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "hello"})
	require.NoError(t, err)

	gate := &gatedLLM{arrived: make(chan struct{}, 2), release: make(chan struct{})}
	svc := NewChatService(f.store, emotion.NewLexiconClassifier(), f.retriever, gate, f.history, f.publisher,
		ChatServiceConfig{HistoryWindow: 6}, logger.NewNopLogger(), logger.NewNopLogger())

	var wg sync.WaitGroup
	for _, msg := range []string{"first concurrent", "second concurrent"} {
		wg.Add(1)
		go func(msg string) {
			defer wg.Done()
			_, err := svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: msg, SessionId: &first.SessionId})
			assert.NoError(t, err)
		}(msg)
	}
	<-gate.arrived
	<-gate.arrived
	close(gate.release)
	wg.Wait()

	assert.Len(t, f.store.conversations, 3)
	lines, found := f.history.Get(first.SessionId)
	require.True(t, found)
	assert.Len(t, lines, 6)
	assert.Contains(t, lines, "User: hello")
	assert.Contains(t, lines, "User: first concurrent")
	assert.Contains(t, lines, "User: second concurrent")
}

func TestSendChatRefillsWindowAfterEviction(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	first, err := f.svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "hello"})
	require.NoError(t, err)

	gate := &gatedLLM{arrived: make(chan struct{}, 1), release: make(chan struct{})}
	svc := NewChatService(f.store, emotion.NewLexiconClassifier(), f.retriever, gate, f.history, f.publisher,
		ChatServiceConfig{HistoryWindow: 6}, logger.NewNopLogger(), logger.NewNopLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.SendChat(ctx, f.user.Id, &dto.SendChatRequest{Message: "still there?", SessionId: &first.SessionId})
		assert.NoError(t, err)
	}()
	<-gate.arrived
	f.history.Delete(first.SessionId)
	close(gate.release)
	<-done

	lines, found := f.history.Get(first.SessionId)
	require.True(t, found)
	assert.Equal(t, []string{"User: hello", "Assistant: " + f.llm.reply, "User: still there?", "Assistant: ok"}, lines)
}

type erroringClassifier struct{}

func (erroringClassifier) Classify(context.Context, string) (emotion.Label, error) {
	return "", errors.New("classifier offline")
}

func TestSendChatClassifierErrorIsNeutral(t *testing.T) {
	f := newChatFixture(t)
	svc := NewChatService(f.store, erroringClassifier{}, f.retriever, f.llm, f.history, f.publisher,
		ChatServiceConfig{HistoryWindow: 6}, logger.NewNopLogger(), logger.NewNopLogger())

	res, err := svc.SendChat(context.Background(), f.user.Id, &dto.SendChatRequest{Message: "I feel so sad"})
	require.NoError(t, err)
	assert.Equal(t, string(emotion.Neutral), res.Emotion)
	assert.Equal(t, f.llm.reply, res.Reply)
	require.Len(t, f.store.conversations, 1)
	assert.Equal(t, string(emotion.Neutral), f.store.conversations[0].Emotion)
}
