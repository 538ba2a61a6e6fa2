package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"sharesphere-backend/internal/domain"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) UpdateRating(ctx context.Context, userID string, rating float64, totalReviews int32) error {
	args := m.Called(ctx, userID, rating, totalReviews)
	return args.Error(0)
}
func (m *MockUserRepo) UpdateSuccessRate(ctx context.Context, userID string, rate float64, completed, failed int32) error {
	args := m.Called(ctx, userID, rate, completed, failed)
	return args.Error(0)
}
func (m *MockUserRepo) CountActive(ctx context.Context) (int32, error) {
	args := m.Called(ctx)
	return args.Get(0).(int32), args.Error(1)
}

// MockItemRepo
type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepo) List(ctx context.Context, category, query string, page, pageSize int32) ([]domain.Item, int32, error) {
	args := m.Called(ctx, category, query, page, pageSize)
	return args.Get(0).([]domain.Item), args.Get(1).(int32), args.Error(2)
}
func (m *MockItemRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.Item), args.Error(1)
}
func (m *MockItemRepo) SetStatus(ctx context.Context, id string, status domain.ItemStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockItemRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTransactionRepo
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) CreateWithEscrow(ctx context.Context, t *domain.Transaction, description string) error {
	args := m.Called(ctx, t, description)
	return args.Error(0)
}
func (m *MockTransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) Approve(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}
func (m *MockTransactionRepo) RejectWithRefund(ctx context.Context, t *domain.Transaction, description string) (bool, error) {
	args := m.Called(ctx, t, description)
	return args.Bool(0), args.Error(1)
}
func (m *MockTransactionRepo) SetDeliveryConfirmed(ctx context.Context, id string, role domain.Role, images []string) (*domain.Transaction, error) {
	args := m.Called(ctx, id, role, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) SetReturnConfirmed(ctx context.Context, id string, role domain.Role, images []string) (*domain.Transaction, error) {
	args := m.Called(ctx, id, role, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}
func (m *MockTransactionRepo) SettleReturn(ctx context.Context, s *domain.Settlement) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}
func (m *MockTransactionRepo) RecordDamage(ctx context.Context, report *domain.DamageReport, itemValue int32) (bool, error) {
	args := m.Called(ctx, report, itemValue)
	return args.Bool(0), args.Error(1)
}
func (m *MockTransactionRepo) MarkDisputed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockTransactionRepo) MarkCompleted(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockTransactionRepo) ListForUser(ctx context.Context, userID string, limit int32) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) CountPendingForOwner(ctx context.Context, ownerID string) (int32, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockTransactionRepo) CountOutcomes(ctx context.Context, userID string) (int32, int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Get(1).(int32), args.Error(2)
}
func (m *MockTransactionRepo) HasActiveForItem(ctx context.Context, itemID string) (bool, error) {
	args := m.Called(ctx, itemID)
	return args.Bool(0), args.Error(1)
}
func (m *MockTransactionRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockLedgerRepo
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockLedgerRepo) ListEntries(ctx context.Context, userID string, limit int32) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}
func (m *MockLedgerRepo) GetBalance(ctx context.Context, userID string) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockLedgerRepo) ListPendingPenalties(ctx context.Context, userID string) ([]domain.PendingPenalty, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.PendingPenalty), args.Error(1)
}
func (m *MockLedgerRepo) ListUnpaidPenalties(ctx context.Context) ([]domain.PendingPenalty, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.PendingPenalty), args.Error(1)
}
func (m *MockLedgerRepo) PayPendingPenalty(ctx context.Context, userID, penaltyID string) (*domain.PendingPenalty, error) {
	args := m.Called(ctx, userID, penaltyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PendingPenalty), args.Error(1)
}

// MockComplaintRepo
type MockComplaintRepo struct {
	mock.Mock
}

func (m *MockComplaintRepo) Create(ctx context.Context, c *domain.Complaint) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockComplaintRepo) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Complaint), args.Error(1)
}
func (m *MockComplaintRepo) Resolve(ctx context.Context, id string, valid bool, banThreshold int32, at time.Time) (*domain.Complaint, bool, error) {
	args := m.Called(ctx, id, valid, banThreshold, at)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Complaint), args.Bool(1), args.Error(2)
}
func (m *MockComplaintRepo) ListByComplainant(ctx context.Context, userID string) ([]domain.Complaint, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Complaint), args.Error(1)
}
func (m *MockComplaintRepo) ListByDefendant(ctx context.Context, userID string) ([]domain.Complaint, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Complaint), args.Error(1)
}

// MockReviewRepo
type MockReviewRepo struct {
	mock.Mock
}

func (m *MockReviewRepo) Create(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockReviewRepo) ExistsForReviewer(ctx context.Context, transactionID, reviewerID string) (bool, error) {
	args := m.Called(ctx, transactionID, reviewerID)
	return args.Bool(0), args.Error(1)
}
func (m *MockReviewRepo) CountForTransaction(ctx context.Context, transactionID string) (int32, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockReviewRepo) ListByReviewee(ctx context.Context, revieweeID string, limit int32) ([]domain.Review, error) {
	args := m.Called(ctx, revieweeID, limit)
	return args.Get(0).([]domain.Review), args.Error(1)
}
func (m *MockReviewRepo) RatingStats(ctx context.Context, revieweeID string) (float64, int32, error) {
	args := m.Called(ctx, revieweeID)
	return args.Get(0).(float64), args.Get(1).(int32), args.Error(2)
}

// MockMessageRepo
type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
func (m *MockMessageRepo) ListByTransaction(ctx context.Context, transactionID string) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).([]domain.ChatMessage), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID string, limit int32) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *MockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *MockNotificationRepo) CountUnread(ctx context.Context, userID string) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	args := m.Called(ctx, toEmail, toName, subject, body)
	return args.Error(0)
}

// stubPusher records published events without a live hub.
type stubPusher struct {
	events []publishedEvent
}

type publishedEvent struct {
	UserID string
	Type   string
}

func (p *stubPusher) Publish(userID, eventType string, data any) {
	p.events = append(p.events, publishedEvent{UserID: userID, Type: eventType})
}

// relaxedNotifier builds a Notifier whose repository accepts everything, for
// tests that do not assert on notifications.
func relaxedNotifier() (*Notifier, *MockNotificationRepo, *stubPusher) {
	noteRepo := new(MockNotificationRepo)
	noteRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil).Maybe()
	pusher := &stubPusher{}
	return NewNotifier(noteRepo, pusher), noteRepo, pusher
}
