package domain

import "time"

// ChatMessage belongs to the conversation between the two parties of a
// transaction.
type ChatMessage struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	SenderID      string    `json:"sender_id"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"timestamp"`
}
