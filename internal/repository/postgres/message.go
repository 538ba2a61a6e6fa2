package postgres

import (
	"context"
	"database/sql"
	"time"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/repository"

	"github.com/google/uuid"
)

type messageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, m *domain.ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO chat_messages (id, transaction_id, sender_id, message, created_at)
	          VALUES ($1,$2,$3,$4,$5)`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.TransactionID, m.SenderID, m.Message, m.CreatedAt)
	return err
}

func (r *messageRepository) ListByTransaction(ctx context.Context, transactionID string) ([]domain.ChatMessage, error) {
	query := `SELECT id, transaction_id, sender_id, message, created_at
	          FROM chat_messages WHERE transaction_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.SenderID, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
