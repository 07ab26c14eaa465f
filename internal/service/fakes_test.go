package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"mindcare-be/internal/entity"
	"mindcare-be/internal/repository/contract"
	"mindcare-be/internal/repository/specification"
	"mindcare-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// fakeStore backs every fake repository; specs are interpreted by type.
type fakeStore struct {
	mu            sync.Mutex
	users         []*entity.User
	sessions      []*entity.ChatSession
	conversations []*entity.Conversation
	crisisEvents  []*entity.CrisisEvent
}

func newFakeStore() *fakeStore { return &fakeStore{} }

func (s *fakeStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: s}
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return &fakeUserRepo{u.store}
}
func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeSessionRepo{u.store}
}
func (u *fakeUnitOfWork) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepo{u.store}
}
func (u *fakeUnitOfWork) CrisisEventRepository() contract.CrisisEventRepository {
	return &fakeCrisisRepo{u.store}
}
func (u *fakeUnitOfWork) KnowledgeRepository() contract.KnowledgeRepository {
	return nil
}

type row struct {
	id        uuid.UUID
	userId    uuid.UUID
	sessionId uuid.UUID
	username  string
	crisis    bool
	sortKey   int64
}

func matches(r row, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if r.id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if r.userId != s.UserID {
				return false
			}
		case specification.BySessionID:
			if r.sessionId != s.SessionID {
				return false
			}
		case specification.ByUsername:
			if r.username != s.Username {
				return false
			}
		case specification.CrisisOnly:
			if !r.crisis {
				return false
			}
		}
	}
	return true
}

// order applies OrderBy (on the row's time key) and Pagination to indexes.
func order(rows []row, specs []specification.Specification) []int {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	limit := -1
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			desc := s.Desc
			sort.SliceStable(idx, func(a, b int) bool {
				if desc {
					return rows[idx[a]].sortKey > rows[idx[b]].sortKey
				}
				return rows[idx[a]].sortKey < rows[idx[b]].sortKey
			})
		case specification.Pagination:
			limit = s.Limit
		}
	}
	if limit >= 0 && limit < len(idx) {
		idx = idx[:limit]
	}
	return idx
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	copied := *user
	r.s.users = append(r.s.users, &copied)
	return nil
}

func (r *fakeUserRepo) find(specs []specification.Specification) []*entity.User {
	var out []*entity.User
	for _, u := range r.s.users {
		if matches(row{id: u.Id, userId: u.Id, username: u.Username}, specs) {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if found := r.find(specs); len(found) > 0 {
		return found[0], nil
	}
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.find(specs))), nil
}

type fakeSessionRepo struct{ s *fakeStore }

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *session
	r.s.sessions = append(r.s.sessions, &copied)
	return nil
}

func (r *fakeSessionRepo) Touch(ctx context.Context, id uuid.UUID, title string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.sessions {
		if existing.Id == id {
			existing.Title = title
			existing.UpdatedAt = at
			return nil
		}
	}
	return errors.New("session not found")
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.sessions[:0]
	for _, session := range r.s.sessions {
		if session.Id != id {
			kept = append(kept, session)
		}
	}
	r.s.sessions = kept
	return nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []row
	var candidates []*entity.ChatSession
	for _, session := range r.s.sessions {
		rw := row{id: session.Id, userId: session.UserId, sortKey: session.UpdatedAt.UnixNano()}
		if matches(rw, specs) {
			rows = append(rows, rw)
			candidates = append(candidates, session)
		}
	}
	var out []*entity.ChatSession
	for _, i := range order(rows, specs) {
		copied := *candidates[i]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeConversationRepo struct{ s *fakeStore }

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *conversation
	r.s.conversations = append(r.s.conversations, &copied)
	return nil
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []row
	var candidates []*entity.Conversation
	for i, c := range r.s.conversations {
		// insertion order breaks ties between equal timestamps
		rw := row{id: c.Id, userId: c.UserId, sessionId: c.SessionId, crisis: c.IsCrisis, sortKey: c.CreatedAt.UnixNano() + int64(i)}
		if matches(rw, specs) {
			rows = append(rows, rw)
			candidates = append(candidates, c)
		}
	}
	var out []*entity.Conversation
	for _, i := range order(rows, specs) {
		copied := *candidates[i]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeConversationRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.conversations[:0]
	for _, c := range r.s.conversations {
		if c.SessionId != sessionId {
			kept = append(kept, c)
		}
	}
	r.s.conversations = kept
	return nil
}

type fakeCrisisRepo struct{ s *fakeStore }

func (r *fakeCrisisRepo) Create(ctx context.Context, event *entity.CrisisEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *event
	r.s.crisisEvents = append(r.s.crisisEvents, &copied)
	return nil
}

func (r *fakeCrisisRepo) MarkNotified(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.crisisEvents {
		if e.Id == id {
			e.Notified = true
			return nil
		}
	}
	return errors.New("crisis event not found")
}

func (r *fakeCrisisRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CrisisEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.CrisisEvent
	for _, e := range r.s.crisisEvents {
		if matches(row{id: e.Id, userId: e.UserId, sessionId: e.SessionId}, specs) {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeStore) crisisEventsSnapshot() []entity.CrisisEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.CrisisEvent, len(s.crisisEvents))
	for i, e := range s.crisisEvents {
		out[i] = *e
	}
	return out
}
