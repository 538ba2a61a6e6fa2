package service

import (
	"context"

	"sharesphere-backend/internal/logger"
	"sharesphere-backend/internal/repository"
)

type dashboardService struct {
	userRepo repository.UserRepository
	itemRepo repository.ItemRepository
	txRepo   repository.TransactionRepository
	noteRepo repository.NotificationRepository
	txSvc    TransactionService
}

func NewDashboardService(
	userRepo repository.UserRepository,
	itemRepo repository.ItemRepository,
	txRepo repository.TransactionRepository,
	noteRepo repository.NotificationRepository,
	txSvc TransactionService,
) DashboardService {
	return &dashboardService{
		userRepo: userRepo,
		itemRepo: itemRepo,
		txRepo:   txRepo,
		noteRepo: noteRepo,
		txSvc:    txSvc,
	}
}

func (s *dashboardService) GetSummary(ctx context.Context, userID string) (*DashboardSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		Tokens:           user.Tokens,
		PendingPenalties: user.PendingPenalties,
		StarRating:       user.StarRating,
		SuccessRate:      user.SuccessRate,
	}

	if items, err := s.itemRepo.ListByOwner(ctx, userID); err == nil {
		summary.ItemsListed = int32(len(items))
	} else {
		logger.WarnContext(ctx, "Dashboard item count failed", "user_id", userID, "error", err)
	}
	if pending, err := s.txRepo.CountPendingForOwner(ctx, userID); err == nil {
		summary.PendingApprovals = pending
	}
	if unread, err := s.noteRepo.CountUnread(ctx, userID); err == nil {
		summary.UnreadNotifications = unread
	}
	if active, err := s.userRepo.CountActive(ctx); err == nil {
		summary.ActiveMembers = active
	}
	if recent, err := s.txSvc.ListTransactions(ctx, userID, 5); err == nil {
		summary.RecentTransactions = recent
	}

	return summary, nil
}
