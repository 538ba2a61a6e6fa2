package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
)

type reviewFixture struct {
	reviewRepo *MockReviewRepo
	txRepo     *MockTransactionRepo
	userRepo   *MockUserRepo
	svc        ReviewService
}

func newReviewFixture() *reviewFixture {
	reviewRepo := new(MockReviewRepo)
	txRepo := new(MockTransactionRepo)
	userRepo := new(MockUserRepo)
	notifier, _, _ := relaxedNotifier()
	return &reviewFixture{
		reviewRepo: reviewRepo,
		txRepo:     txRepo,
		userRepo:   userRepo,
		svc:        NewReviewService(reviewRepo, txRepo, userRepo, notifier),
	}
}

func TestReviewService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("First review leaves the transaction returned", func(t *testing.T) {
		f := newReviewFixture()
		f.txRepo.On("GetByID", ctx, "tx-1").Return(returnedTx(), nil)
		f.reviewRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.Review) bool {
			return r.ReviewerID == "borrower-1" && r.RevieweeID == "owner-1" && r.Rating == 5
		})).Return(nil)
		f.reviewRepo.On("RatingStats", ctx, "owner-1").Return(5.0, int32(1), nil)
		f.userRepo.On("UpdateRating", ctx, "owner-1", 5.0, int32(1)).Return(nil)
		f.reviewRepo.On("CountForTransaction", ctx, "tx-1").Return(int32(1), nil)

		review, err := f.svc.Submit(ctx, "borrower-1", "tx-1", 5, "great item")
		assert.NoError(t, err)
		assert.Equal(t, "owner-1", review.RevieweeID)
		f.txRepo.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything)
	})

	t.Run("Second review completes the transaction", func(t *testing.T) {
		f := newReviewFixture()
		f.txRepo.On("GetByID", ctx, "tx-1").Return(returnedTx(), nil)
		f.reviewRepo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
		f.reviewRepo.On("RatingStats", ctx, "borrower-1").Return(4.0, int32(2), nil)
		f.userRepo.On("UpdateRating", ctx, "borrower-1", 4.0, int32(2)).Return(nil)
		f.reviewRepo.On("CountForTransaction", ctx, "tx-1").Return(int32(2), nil)
		f.txRepo.On("MarkCompleted", ctx, "tx-1").Return(true, nil)
		f.txRepo.On("CountOutcomes", ctx, "owner-1").Return(int32(3), int32(1), nil)
		f.txRepo.On("CountOutcomes", ctx, "borrower-1").Return(int32(1), int32(0), nil)
		f.userRepo.On("UpdateSuccessRate", ctx, "owner-1", 75.0, int32(3), int32(1)).Return(nil)
		f.userRepo.On("UpdateSuccessRate", ctx, "borrower-1", 100.0, int32(1), int32(0)).Return(nil)

		_, err := f.svc.Submit(ctx, "owner-1", "tx-1", 4, "returned on time")
		assert.NoError(t, err)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("Rating out of range", func(t *testing.T) {
		f := newReviewFixture()
		for _, rating := range []int32{0, 6, -1} {
			_, err := f.svc.Submit(ctx, "owner-1", "tx-1", rating, "")
			assert.True(t, errors.Is(err, errors.KindValidation))
		}
	})

	t.Run("Before settlement", func(t *testing.T) {
		f := newReviewFixture()
		active := returnedTx()
		active.Status = domain.TransactionStatusDelivered
		f.txRepo.On("GetByID", ctx, "tx-1").Return(active, nil)

		_, err := f.svc.Submit(ctx, "owner-1", "tx-1", 4, "")
		assert.True(t, errors.Is(err, errors.KindStateConflict))
	})

	t.Run("Duplicate surfaces the conflict from storage", func(t *testing.T) {
		f := newReviewFixture()
		f.txRepo.On("GetByID", ctx, "tx-1").Return(returnedTx(), nil)
		f.reviewRepo.On("Create", ctx, mock.Anything).
			Return(errors.StateConflict("you already reviewed this transaction"))

		_, err := f.svc.Submit(ctx, "owner-1", "tx-1", 4, "")
		assert.True(t, errors.Is(err, errors.KindStateConflict))
	})

	t.Run("Stranger", func(t *testing.T) {
		f := newReviewFixture()
		f.txRepo.On("GetByID", ctx, "tx-1").Return(returnedTx(), nil)

		_, err := f.svc.Submit(ctx, "stranger", "tx-1", 4, "")
		assert.True(t, errors.Is(err, errors.KindAuthorization))
	})
}

func TestReviewService_ListForUser(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture()
	f.reviewRepo.On("ListByReviewee", ctx, "owner-1", int32(50)).
		Return([]domain.Review{{ID: "r-1"}}, nil)

	// Out-of-range limits fall back to the default page size.
	reviews, err := f.svc.ListForUser(ctx, "owner-1", 0)
	assert.NoError(t, err)
	assert.Len(t, reviews, 1)
}
