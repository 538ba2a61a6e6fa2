package service

import (
	"context"
	"fmt"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/logger"
	"sharesphere-backend/internal/repository"
)

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
	userRepo   repository.UserRepository
	notifier   *Notifier
}

func NewLedgerService(ledgerRepo repository.LedgerRepository, userRepo repository.UserRepository, notifier *Notifier) LedgerService {
	return &ledgerService{ledgerRepo: ledgerRepo, userRepo: userRepo, notifier: notifier}
}

func (s *ledgerService) GetBalance(ctx context.Context, userID string) (int32, int32, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return user.Tokens, user.PendingPenalties, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, userID string, limit int32) ([]domain.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.ledgerRepo.ListEntries(ctx, userID, limit)
}

func (s *ledgerService) ListPendingPenalties(ctx context.Context, userID string) ([]domain.PendingPenalty, error) {
	return s.ledgerRepo.ListPendingPenalties(ctx, userID)
}

func (s *ledgerService) PayPenalty(ctx context.Context, userID, penaltyID string) (*domain.PendingPenalty, error) {
	penalty, err := s.ledgerRepo.PayPendingPenalty(ctx, userID, penaltyID)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Pending penalty paid", "user_id", userID, "penalty_id", penaltyID, "amount", penalty.Amount)
	s.notifier.Notify(ctx, userID, domain.NotificationPenalty, "Penalty paid",
		fmt.Sprintf("Your pending penalty of %d tokens was settled.", penalty.Amount), &penalty.TransactionID)
	return penalty, nil
}
