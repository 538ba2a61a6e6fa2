package service

import (
	"context"
	"time"

	"sharesphere-backend/internal/domain"
)

// TokenPair is an access/refresh token bundle issued at login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, TokenPair, error)
	Login(ctx context.Context, identifier, password string) (*domain.User, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	GetPublicProfile(ctx context.Context, userID string) (*domain.UserProfile, []domain.Review, error)
}

type ItemService interface {
	CreateItem(ctx context.Context, ownerID string, item *domain.Item) (*domain.Item, error)
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context, category, query string, page, pageSize int32) ([]domain.Item, int32, error)
	ListMyItems(ctx context.Context, ownerID string) ([]domain.Item, error)
	SetItemStatus(ctx context.Context, ownerID, itemID string, status domain.ItemStatus) error
	DeleteItem(ctx context.Context, ownerID, itemID string) error
}

type TransactionService interface {
	// RequestBorrow opens a pending transaction and escrows the rental fee
	// from the borrower's balance.
	RequestBorrow(ctx context.Context, borrowerID, itemID string, startDate, endDate time.Time, message string) (*domain.TransactionView, error)
	Approve(ctx context.Context, ownerID, transactionID string) (*domain.TransactionView, error)
	Reject(ctx context.Context, ownerID, transactionID string) (*domain.TransactionView, error)
	// ConfirmDelivery records one side of the delivery handshake. The
	// approved -> delivered edge fires on the confirmation that completes
	// the pair.
	ConfirmDelivery(ctx context.Context, userID, transactionID string, proofImages []string) (*domain.TransactionView, error)
	// ConfirmReturn records one side of the return handshake. Completing
	// the pair settles the transaction: the escrowed fee is credited to the
	// owner and any accumulated penalty is charged to the borrower.
	ConfirmReturn(ctx context.Context, userID, transactionID string, proofImages []string) (*domain.TransactionView, error)
	ReportDamage(ctx context.Context, ownerID, transactionID string, severity domain.DamageSeverity, description string, proofImages []string) (*domain.TransactionView, error)
	GetTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionView, error)
	ListTransactions(ctx context.Context, userID string, limit int32) ([]domain.TransactionView, error)
}

type LedgerService interface {
	GetBalance(ctx context.Context, userID string) (tokens, pendingPenalties int32, err error)
	ListEntries(ctx context.Context, userID string, limit int32) ([]domain.LedgerEntry, error)
	ListPendingPenalties(ctx context.Context, userID string) ([]domain.PendingPenalty, error)
	// PayPenalty settles one pending penalty from the user's current
	// balance. Fails with insufficient funds when the balance is short.
	PayPenalty(ctx context.Context, userID, penaltyID string) (*domain.PendingPenalty, error)
}

type FileComplaintInput struct {
	TransactionID string                `json:"transaction_id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Severity      domain.DamageSeverity `json:"severity"`
	ProofImages   []string              `json:"proof_images"`
}

type ComplaintService interface {
	File(ctx context.Context, complainantID string, in FileComplaintInput) (*domain.Complaint, error)
	// Resolve decides a complaint's validity exactly once. A valid
	// complaint counts against the defendant and can ban them.
	Resolve(ctx context.Context, complaintID string, valid bool) (*domain.Complaint, error)
	ListMine(ctx context.Context, userID string) (filed, against []domain.Complaint, err error)
}

type ReviewService interface {
	// Submit stores one party's post-return review. The second review of a
	// transaction moves it from returned to completed.
	Submit(ctx context.Context, reviewerID, transactionID string, rating int32, comment string) (*domain.Review, error)
	ListForUser(ctx context.Context, userID string, limit int32) ([]domain.Review, error)
}

type ChatService interface {
	Send(ctx context.Context, senderID, transactionID, message string) (*domain.ChatMessage, error)
	History(ctx context.Context, userID, transactionID string) ([]domain.ChatMessage, error)
}

type NotificationService interface {
	List(ctx context.Context, userID string, limit int32) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int32, error)
}

// DashboardSummary aggregates the numbers shown on a member's home screen.
type DashboardSummary struct {
	Tokens              int32                    `json:"tokens"`
	PendingPenalties    int32                    `json:"pending_penalties"`
	StarRating          float64                  `json:"star_rating"`
	SuccessRate         float64                  `json:"success_rate"`
	ItemsListed         int32                    `json:"items_listed"`
	PendingApprovals    int32                    `json:"pending_approvals"`
	UnreadNotifications int32                    `json:"unread_notifications"`
	ActiveMembers       int32                    `json:"active_members"`
	RecentTransactions  []domain.TransactionView `json:"recent_transactions"`
}

type DashboardService interface {
	GetSummary(ctx context.Context, userID string) (*DashboardSummary, error)
}

// EmailService delivers transactional mail. Implementations must be safe for
// concurrent use; callers treat delivery as best effort.
type EmailService interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

// Pusher is the realtime fan-out the services publish events through. It is
// satisfied by push.Hub.
type Pusher interface {
	Publish(userID, eventType string, data any)
}
