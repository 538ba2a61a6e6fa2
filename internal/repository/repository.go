package repository

import (
	"context"
	"time"

	"sharesphere-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIdentifier looks a user up by email or username.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	UpdateRating(ctx context.Context, userID string, rating float64, totalReviews int32) error
	UpdateSuccessRate(ctx context.Context, userID string, rate float64, completed, failed int32) error
	CountActive(ctx context.Context) (int32, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, category, query string, page, pageSize int32) ([]domain.Item, int32, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error)
	SetStatus(ctx context.Context, id string, status domain.ItemStatus) error
	Delete(ctx context.Context, id string) error
}

type TransactionRepository interface {
	// CreateWithEscrow inserts the transaction and debits the borrower's
	// total_tokens in the same database transaction. The debit is a
	// compare-and-set on the cached balance; an uncovered debit fails with
	// an insufficient-funds error and nothing is written.
	CreateWithEscrow(ctx context.Context, t *domain.Transaction, description string) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)

	// Approve flips pending -> approved and marks the item borrowed.
	// Returns false without error when the transaction was not pending.
	Approve(ctx context.Context, id string, at time.Time) (bool, error)
	// RejectWithRefund flips pending -> rejected and refunds the escrowed
	// tokens to the borrower, atomically. Returns false when not pending,
	// so a repeated reject can never refund twice.
	RejectWithRefund(ctx context.Context, t *domain.Transaction, description string) (bool, error)

	// SetDeliveryConfirmed sets the role's delivery flag (idempotent) and
	// appends proof image paths, returning the updated row.
	SetDeliveryConfirmed(ctx context.Context, id string, role domain.Role, images []string) (*domain.Transaction, error)
	SetReturnConfirmed(ctx context.Context, id string, role domain.Role, images []string) (*domain.Transaction, error)
	// MarkDelivered fires the approved -> delivered edge. The underlying
	// update is guarded on status and both flags so the edge fires exactly
	// once even when both confirmations race.
	MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error)
	// SettleReturn fires delivered -> returned and applies the settlement's
	// ledger movements in one database transaction: owner credit, borrower
	// penalty (immediate debit or pending penalty), item release.
	SettleReturn(ctx context.Context, s *domain.Settlement) (bool, error)

	// RecordDamage latches damage_reported (one-shot), accumulates the
	// capped penalty and stores the report. Returns false when the latch
	// was already set or the transaction is not delivered.
	RecordDamage(ctx context.Context, report *domain.DamageReport, itemValue int32) (bool, error)

	MarkDisputed(ctx context.Context, id string) error
	// MarkCompleted flips returned -> completed once both reviews are in.
	MarkCompleted(ctx context.Context, id string) (bool, error)

	ListForUser(ctx context.Context, userID string, limit int32) ([]domain.Transaction, error)
	CountPendingForOwner(ctx context.Context, ownerID string) (int32, error)
	// CountOutcomes returns the user's completed and disputed transaction
	// counts, the inputs to the success-rate projection.
	CountOutcomes(ctx context.Context, userID string) (completed, disputed int32, err error)
	HasActiveForItem(ctx context.Context, itemID string) (bool, error)
	// ListOverdue returns delivered transactions whose end date has passed.
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Transaction, error)
}

type LedgerRepository interface {
	// Append records one entry and moves the cached balance with it in the
	// same database transaction. Negative amounts fail with an
	// insufficient-funds error when the balance cannot cover them.
	Append(ctx context.Context, entry *domain.LedgerEntry) error
	ListEntries(ctx context.Context, userID string, limit int32) ([]domain.LedgerEntry, error)
	GetBalance(ctx context.Context, userID string) (int32, error)

	ListPendingPenalties(ctx context.Context, userID string) ([]domain.PendingPenalty, error)
	ListUnpaidPenalties(ctx context.Context) ([]domain.PendingPenalty, error)
	// PayPendingPenalty atomically debits the balance, decrements the
	// cached pending total and marks the penalty paid. Fails with
	// insufficient funds when the balance is short, leaving everything
	// unchanged.
	PayPendingPenalty(ctx context.Context, userID, penaltyID string) (*domain.PendingPenalty, error)
}

type ComplaintRepository interface {
	Create(ctx context.Context, c *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	// Resolve sets validity exactly once. For a valid complaint it also
	// increments the defendant's complaint count and sets the ban flag when
	// the count reaches banThreshold, all in one database transaction.
	// Returns the defendant's new banned state.
	Resolve(ctx context.Context, id string, valid bool, banThreshold int32, at time.Time) (*domain.Complaint, bool, error)
	ListByComplainant(ctx context.Context, userID string) ([]domain.Complaint, error)
	ListByDefendant(ctx context.Context, userID string) ([]domain.Complaint, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	ExistsForReviewer(ctx context.Context, transactionID, reviewerID string) (bool, error)
	CountForTransaction(ctx context.Context, transactionID string) (int32, error)
	ListByReviewee(ctx context.Context, revieweeID string, limit int32) ([]domain.Review, error)
	RatingStats(ctx context.Context, revieweeID string) (average float64, count int32, err error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *domain.ChatMessage) error
	ListByTransaction(ctx context.Context, transactionID string) ([]domain.ChatMessage, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID string, limit int32) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int32, error)
}
