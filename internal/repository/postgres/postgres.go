package postgres

import (
	"context"
	"database/sql"

	"sharesphere-backend/internal/repository"

	_ "github.com/lib/pq"
)

// execer is satisfied by both *sql.DB and *sql.Tx so the ledger helpers can
// run standalone or inside a larger transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.ItemRepository
	repository.TransactionRepository
	repository.LedgerRepository
	repository.ComplaintRepository
	repository.ReviewRepository
	repository.MessageRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		ItemRepository:         NewItemRepository(db),
		TransactionRepository:  NewTransactionRepository(db),
		LedgerRepository:       NewLedgerRepository(db),
		ComplaintRepository:    NewComplaintRepository(db),
		ReviewRepository:       NewReviewRepository(db),
		MessageRepository:      NewMessageRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
