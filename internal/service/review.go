package service

import (
	"context"
	"fmt"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/logger"
	"sharesphere-backend/internal/repository"
)

type reviewService struct {
	reviewRepo repository.ReviewRepository
	txRepo     repository.TransactionRepository
	userRepo   repository.UserRepository
	notifier   *Notifier
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	txRepo repository.TransactionRepository,
	userRepo repository.UserRepository,
	notifier *Notifier,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		txRepo:     txRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

func (s *reviewService) Submit(ctx context.Context, reviewerID, transactionID string, rating int32, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, errors.Validation("rating must be between 1 and 5")
	}

	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	role, ok := t.PartyRole(reviewerID)
	if !ok {
		return nil, errors.Authorization("you are not a party to this transaction")
	}
	if t.Status != domain.TransactionStatusReturned {
		return nil, errors.StateConflict("reviews can only be left after the return is settled")
	}

	review := &domain.Review{
		TransactionID: t.ID,
		ReviewerID:    reviewerID,
		RevieweeID:    t.PartyID(role.Other()),
		ItemID:        t.ItemID,
		Rating:        rating,
		Comment:       comment,
	}
	// The unique constraint on (transaction, reviewer) turns a duplicate
	// submit into a state conflict inside Create.
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := s.applyRating(ctx, review.RevieweeID); err != nil {
		logger.WarnContext(ctx, "Failed to refresh reviewee rating", "user_id", review.RevieweeID, "error", err)
	}

	count, err := s.reviewRepo.CountForTransaction(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if count >= 2 {
		completed, err := s.txRepo.MarkCompleted(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		if completed {
			logger.InfoContext(ctx, "Transaction completed", "transaction_id", t.ID)
			for _, partyID := range []string{t.OwnerID, t.BorrowerID} {
				if err := s.refreshSuccessRate(ctx, partyID); err != nil {
					logger.WarnContext(ctx, "Failed to refresh success rate", "user_id", partyID, "error", err)
				}
			}
		}
	}

	s.notifier.Notify(ctx, review.RevieweeID, domain.NotificationReview, "New review",
		fmt.Sprintf("You received a %d-star review.", rating), &t.ID)

	return review, nil
}

func (s *reviewService) ListForUser(ctx context.Context, userID string, limit int32) ([]domain.Review, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.reviewRepo.ListByReviewee(ctx, userID, limit)
}

// applyRating recomputes the reviewee's cached star rating from the review
// table.
func (s *reviewService) applyRating(ctx context.Context, revieweeID string) error {
	average, count, err := s.reviewRepo.RatingStats(ctx, revieweeID)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateRating(ctx, revieweeID, average, count)
}

// refreshSuccessRate reprojects completed vs disputed counts onto the user
// row.
func (s *reviewService) refreshSuccessRate(ctx context.Context, userID string) error {
	completed, disputed, err := s.txRepo.CountOutcomes(ctx, userID)
	if err != nil {
		return err
	}
	rate := 100.0
	if completed+disputed > 0 {
		rate = float64(completed) / float64(completed+disputed) * 100
	}
	return s.userRepo.UpdateSuccessRate(ctx, userID, rate, completed, disputed)
}
