package unitofwork

import (
	"context"

	"mindcare-be/internal/repository/contract"
)

// RepositoryFactory hands out one UnitOfWork per operation.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

// UnitOfWork groups repositories over one connection. Between Begin and
// Commit/Rollback every repository it returns runs inside the transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ConversationRepository() contract.ConversationRepository
	CrisisEventRepository() contract.CrisisEventRepository
	KnowledgeRepository() contract.KnowledgeRepository
}

// WithTransaction runs fn inside a fresh transaction, committing when fn
// returns nil and rolling back otherwise.
func WithTransaction(ctx context.Context, factory RepositoryFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}
