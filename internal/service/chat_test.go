package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/push"
)

func TestChatService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Message is pushed to the other party", func(t *testing.T) {
		msgRepo := new(MockMessageRepo)
		txRepo := new(MockTransactionRepo)
		pusher := &stubPusher{}
		txRepo.On("GetByID", ctx, "tx-1").Return(returnedTx(), nil)
		msgRepo.On("Create", ctx, mock.MatchedBy(func(m *domain.ChatMessage) bool {
			return m.SenderID == "owner-1" && m.Message == "when can you pick it up?"
		})).Return(nil)

		m, err := NewChatService(msgRepo, txRepo, pusher).Send(ctx, "owner-1", "tx-1", "when can you pick it up?")
		assert.NoError(t, err)
		assert.Equal(t, "tx-1", m.TransactionID)
		if assert.Len(t, pusher.events, 1) {
			assert.Equal(t, "borrower-1", pusher.events[0].UserID)
			assert.Equal(t, push.EventNewMessage, pusher.events[0].Type)
		}
	})

	t.Run("Empty message", func(t *testing.T) {
		svc := NewChatService(new(MockMessageRepo), new(MockTransactionRepo), &stubPusher{})
		_, err := svc.Send(ctx, "owner-1", "tx-1", "")
		assert.True(t, errors.Is(err, errors.KindValidation))
	})

	t.Run("Stranger", func(t *testing.T) {
		txRepo := new(MockTransactionRepo)
		txRepo.On("GetByID", ctx, "tx-1").Return(returnedTx(), nil)

		_, err := NewChatService(new(MockMessageRepo), txRepo, &stubPusher{}).Send(ctx, "stranger", "tx-1", "hi")
		assert.True(t, errors.Is(err, errors.KindAuthorization))
	})
}

func TestChatService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("Party can read the thread", func(t *testing.T) {
		msgRepo := new(MockMessageRepo)
		txRepo := new(MockTransactionRepo)
		txRepo.On("GetByID", ctx, "tx-1").Return(returnedTx(), nil)
		msgRepo.On("ListByTransaction", ctx, "tx-1").
			Return([]domain.ChatMessage{{ID: "m-1"}, {ID: "m-2"}}, nil)

		msgs, err := NewChatService(msgRepo, txRepo, &stubPusher{}).History(ctx, "borrower-1", "tx-1")
		assert.NoError(t, err)
		assert.Len(t, msgs, 2)
	})

	t.Run("Stranger", func(t *testing.T) {
		txRepo := new(MockTransactionRepo)
		txRepo.On("GetByID", ctx, "tx-1").Return(returnedTx(), nil)

		_, err := NewChatService(new(MockMessageRepo), txRepo, &stubPusher{}).History(ctx, "stranger", "tx-1")
		assert.True(t, errors.Is(err, errors.KindAuthorization))
	})
}
