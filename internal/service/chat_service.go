package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"mindcare-be/internal/constant"
	"mindcare-be/internal/dto"
	"mindcare-be/internal/entity"
	"mindcare-be/internal/pkg/logger"
	"mindcare-be/internal/repository/specification"
	"mindcare-be/internal/repository/unitofwork"
	"mindcare-be/pkg/crisis"
	"mindcare-be/pkg/emotion"
	"mindcare-be/pkg/events"
	"mindcare-be/pkg/llm"
	"mindcare-be/pkg/rag"
	"mindcare-be/pkg/rag/history"
	"mindcare-be/pkg/rag/prompt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var chatTracer = otel.Tracer("mindcare-be/internal/service/chat")

var (
	ErrEmptyMessage    = errors.New("message is required")
	ErrSessionNotFound = errors.New("chat session not found")
)

type KnowledgeRetriever interface {
	Retrieve(ctx context.Context, query string) ([]rag.Hit, error)
	Search(ctx context.Context, query string, k int) ([]rag.Hit, error)
	Corpus() []rag.Passage
}

// HistoryCache holds the recent prompt lines per chat session.
type HistoryCache interface {
	Get(sessionId uuid.UUID) ([]string, bool)
	Save(sessionId uuid.UUID, lines []string)
	Delete(sessionId uuid.UUID)
}

type IChatService interface {
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, sessionId *uuid.UUID) ([]*dto.ConversationResponse, error)
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.ChatSessionResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error
	SearchKnowledge(ctx context.Context, req *dto.KnowledgeSearchRequest) ([]*dto.KnowledgePassage, error)
	ListKnowledge(ctx context.Context) []*dto.KnowledgePassage
}

type ChatServiceConfig struct {
	HistoryWindow int
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	classifier  emotion.Classifier
	retriever   KnowledgeRetriever
	llmProvider llm.LLMProvider
	history     HistoryCache
	publisher   IPublisherService
	window      int
	logger      logger.ILogger
	llmLogger   logger.ILogger

	sessionLocks sessionLocks
}

// sessionLocks serialises history window updates per chat session.
type sessionLocks struct {
	stripes [64]sync.Mutex
}

func (l *sessionLocks) lock(sessionId uuid.UUID) func() {
	mu := &l.stripes[sessionId[len(sessionId)-1]%byte(len(l.stripes))]
	mu.Lock()
	return mu.Unlock
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	classifier emotion.Classifier,
	retriever KnowledgeRetriever,
	llmProvider llm.LLMProvider,
	history HistoryCache,
	publisher IPublisherService,
	cfg ChatServiceConfig,
	log logger.ILogger,
	llmLog logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:  uowFactory,
		classifier:  classifier,
		retriever:   retriever,
		llmProvider: llmProvider,
		history:     history,
		publisher:   publisher,
		window:      cfg.HistoryWindow,
		logger:      log,
		llmLogger:   llmLog,
	}
}

func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.SendChat")
	defer span.End()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.resolveSession(ctx, userId, req.SessionId)
	if err != nil {
		return nil, err
	}

	lines, err := s.loadHistory(ctx, session.Id)
	if err != nil {
		return nil, err
	}

	res := &dto.SendChatResponse{SessionId: session.Id, Context: []string{}}

	if detection := crisis.Detect(message); detection.IsCrisis {
		res.Crisis = true
		res.Emotion = crisis.EmotionLabel
		res.Reply = crisis.Reply
		s.logger.Warn(constant.ModuleCrisis, "Crisis language detected", map[string]interface{}{
			"user_id":    userId,
			"session_id": session.Id,
			"matched":    detection.Matched,
		})
		s.publishCrisis(ctx, userId, session.Id, message, detection.Matched)
	} else {
		label, err := s.classifier.Classify(ctx, message)
		if err != nil {
			s.logger.Warn(constant.ModuleEmotion, "Emotion classification failed", map[string]interface{}{"error": err.Error()})
			label = emotion.Neutral
		}
		res.Emotion = string(label)

		hits := s.retrieve(ctx, message)
		res.Context = rag.Texts(hits)

		res.Reply = s.generateReply(ctx, prompt.Input{
			Emotion: string(label),
			Tone:    emotion.ToneInstruction(label),
			Context: rag.Context(hits),
			History: lines,
			Message: message,
		})
	}

	conversation := &entity.Conversation{
		Id:               uuid.New(),
		UserId:           userId,
		SessionId:        session.Id,
		Message:          message,
		Response:         res.Reply,
		Emotion:          res.Emotion,
		IsCrisis:         res.Crisis,
		RetrievedContext: res.Context,
		CreatedAt:        time.Now(),
	}
	if err := s.recordTurn(ctx, session, conversation); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist conversation")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("chat.session_id", session.Id.String()),
		attribute.String("chat.emotion", res.Emotion),
		attribute.Bool("chat.crisis", res.Crisis),
		attribute.Int("chat.context_passages", len(res.Context)),
	)

	return res, nil
}

func (s *chatService) retrieve(ctx context.Context, message string) []rag.Hit {
	ctx, span := chatTracer.Start(ctx, "ChatService.Retrieve")
	defer span.End()

	hits, err := s.retriever.Retrieve(ctx, message)
	if err != nil {
		span.RecordError(err)
		s.llmLogger.Error(constant.ModuleRag, "Retrieval failed, continuing without context", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return hits
}

func (s *chatService) generateReply(ctx context.Context, in prompt.Input) string {
	ctx, span := chatTracer.Start(ctx, "ChatService.GenerateReply")
	defer span.End()

	messages := prompt.NewBuilder(in).Messages()
	s.llmLogger.Debug(constant.ModuleChat, "LLM request", map[string]interface{}{
		"emotion": in.Emotion,
		"prompt":  messages[len(messages)-1].Content,
	})

	reply, err := s.llmProvider.Chat(ctx, messages)
	if err != nil {
		span.RecordError(err)
	}
	if errors.Is(err, llm.ErrMissingAPIKey) {
		s.logger.Warn(constant.ModuleChat, "LLM API key not configured", nil)
		return constant.NoAPIKeyReply
	}
	if err != nil {
		s.logger.Error(constant.ModuleChat, "LLM call failed", map[string]interface{}{"error": err.Error()})
		return constant.FallbackReply
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return constant.FallbackReply
	}
	s.llmLogger.Debug(constant.ModuleChat, "LLM response", map[string]interface{}{"reply": reply})
	return reply
}

func (s *chatService) publishCrisis(ctx context.Context, userId, sessionId uuid.UUID, message string, matched []string) {
	if s.publisher == nil {
		return
	}

	username := ""
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId}); err == nil && user != nil {
		username = user.Username
	}

	event := events.CrisisDetected{
		EventId:        uuid.New(),
		UserId:         userId,
		Username:       username,
		SessionId:      sessionId,
		Message:        message,
		MatchedPhrases: matched,
		OccurredAt:     time.Now(),
	}
	if err := s.publisher.PublishCrisis(ctx, event); err != nil {
		s.logger.Error(constant.ModuleCrisis, "Failed to publish crisis event", map[string]interface{}{"error": err.Error()})
	}
}

// resolveSession returns the requested session, or the user's latest one, or a new one.
func (s *chatService) resolveSession(ctx context.Context, userId uuid.UUID, sessionId *uuid.UUID) (*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	if sessionId != nil {
		session, err := repo.FindOne(ctx,
			specification.ByID{ID: *sessionId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
		return session, nil
	}

	latest, err := repo.FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		return latest, nil
	}

	return s.createSession(ctx, userId, "")
}

func (s *chatService) createSession(ctx context.Context, userId uuid.UUID, title string) (*entity.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = constant.DefaultSessionTitle
	}
	now := time.Now()
	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// loadHistory reads the cached window, rebuilding it from stored turns on a miss.
func (s *chatService) loadHistory(ctx context.Context, sessionId uuid.UUID) ([]string, error) {
	if lines, found := s.history.Get(sessionId); found {
		return lines, nil
	}

	unlock := s.sessionLocks.lock(sessionId)
	defer unlock()
	return s.loadHistoryLocked(ctx, sessionId)
}

func (s *chatService) loadHistoryLocked(ctx context.Context, sessionId uuid.UUID) ([]string, error) {
	if lines, found := s.history.Get(sessionId); found {
		return lines, nil
	}

	window := s.windowSize()
	uow := s.uowFactory.NewUnitOfWork(ctx)
	recent, err := uow.ConversationRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: (window + 1) / 2},
	)
	if err != nil {
		return nil, err
	}

	var lines []string
	for i := len(recent) - 1; i >= 0; i-- {
		lines = append(lines, history.Exchange(recent[i].Message, recent[i].Response)...)
	}
	lines = history.Trim(lines, window)
	s.history.Save(sessionId, lines)
	return lines, nil
}

func (s *chatService) windowSize() int {
	if s.window <= 0 {
		return history.DefaultWindow
	}
	return s.window
}

// recordTurn stores the turn and appends it to the current cached window
// while holding the session lock.
func (s *chatService) recordTurn(ctx context.Context, session *entity.ChatSession, conversation *entity.Conversation) error {
	unlock := s.sessionLocks.lock(session.Id)
	defer unlock()

	if err := s.persistTurn(ctx, session, conversation); err != nil {
		return err
	}

	lines, found := s.history.Get(session.Id)
	if !found {
		// Rebuilt from the store, which already holds this turn.
		_, err := s.loadHistoryLocked(ctx, session.Id)
		if err != nil {
			s.logger.Warn(constant.ModuleChat, "Failed to rebuild history window", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}
	s.history.Save(session.Id, history.Append(lines, conversation.Message, conversation.Response, s.windowSize()))
	return nil
}

func (s *chatService) persistTurn(ctx context.Context, session *entity.ChatSession, conversation *entity.Conversation) error {
	return unitofwork.WithTransaction(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
			return err
		}

		if session.Title == constant.DefaultSessionTitle {
			session.Title = sessionTitle(conversation.Message)
		}
		session.UpdatedAt = conversation.CreatedAt
		return uow.ChatSessionRepository().Touch(ctx, session.Id, session.Title, session.UpdatedAt)
	})
}

func sessionTitle(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	if utf8.RuneCountInString(title) <= constant.SessionTitleMaxLen {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:constant.SessionTitleMaxLen])) + "..."
}

func (s *chatService) GetHistory(ctx context.Context, userId uuid.UUID, sessionId *uuid.UUID) ([]*dto.ConversationResponse, error) {
	specs := []specification.Specification{specification.UserOwnedBy{UserID: userId}}
	if sessionId != nil {
		specs = append(specs, specification.BySessionID{SessionID: *sessionId})
	}
	specs = append(specs, specification.OrderBy{Field: "created_at"})

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversations, err := uow.ConversationRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		retrieved := c.RetrievedContext
		if retrieved == nil {
			retrieved = []string{}
		}
		res = append(res, &dto.ConversationResponse{
			Id:        c.Id,
			SessionId: c.SessionId,
			Message:   c.Message,
			Response:  c.Response,
			Emotion:   c.Emotion,
			Crisis:    c.IsCrisis,
			Context:   retrieved,
			CreatedAt: c.CreatedAt,
		})
	}
	return res, nil
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.ChatSessionResponse, error) {
	session, err := s.createSession(ctx, userId, req.Title)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (s *chatService) ListSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, toSessionResponse(session))
	}
	return res, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	err = unitofwork.WithTransaction(ctx, s.uowFactory, func(tx unitofwork.UnitOfWork) error {
		if err := tx.ConversationRepository().DeleteBySessionId(ctx, sessionId); err != nil {
			return err
		}
		return tx.ChatSessionRepository().Delete(ctx, sessionId)
	})
	if err != nil {
		return err
	}

	unlock := s.sessionLocks.lock(sessionId)
	s.history.Delete(sessionId)
	unlock()
	return nil
}

func (s *chatService) SearchKnowledge(ctx context.Context, req *dto.KnowledgeSearchRequest) ([]*dto.KnowledgePassage, error) {
	k := req.K
	if k <= 0 {
		k = rag.DefaultTopK
	}
	hits, err := s.retriever.Search(ctx, req.Query, k)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.KnowledgePassage, 0, len(hits))
	for _, hit := range hits {
		distance := hit.Distance
		res = append(res, &dto.KnowledgePassage{Id: hit.ID, Text: hit.Text, Distance: &distance})
	}
	return res, nil
}

func (s *chatService) ListKnowledge(ctx context.Context) []*dto.KnowledgePassage {
	corpus := s.retriever.Corpus()
	res := make([]*dto.KnowledgePassage, 0, len(corpus))
	for _, p := range corpus {
		res = append(res, &dto.KnowledgePassage{Id: p.ID, Text: p.Text})
	}
	return res
}

func toSessionResponse(session *entity.ChatSession) *dto.ChatSessionResponse {
	return &dto.ChatSessionResponse{
		Id:        session.Id,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}
