package domain

import "time"

type LedgerEntryType string

const (
	LedgerTypeGrant   LedgerEntryType = "grant"
	LedgerTypeSpent   LedgerEntryType = "spent"
	LedgerTypeEarned  LedgerEntryType = "earned"
	LedgerTypeRefund  LedgerEntryType = "refund"
	LedgerTypePenalty LedgerEntryType = "penalty"
)

// LedgerEntry is one append-only record of token movement. A user's balance
// is the running sum of their entries; the cached User.Tokens must always
// match it.
type LedgerEntry struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	// Amount is signed: positive credits, negative debits.
	Amount               int32           `json:"amount"`
	Type                 LedgerEntryType `json:"transaction_type"`
	Description          string          `json:"description"`
	RelatedTransactionID *string         `json:"related_transaction_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// PendingPenalty is a penalty the user could not cover at settlement time.
// It is resolved only by an explicit payment, which appends the matching
// debit entry.
type PendingPenalty struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	Amount        int32     `json:"amount"`
	Reason        string    `json:"reason"`
	IsPaid        bool      `json:"is_paid"`
	CreatedAt     time.Time `json:"created_at"`
}
