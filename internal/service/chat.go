package service

import (
	"context"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/push"
	"sharesphere-backend/internal/repository"
)

type chatService struct {
	msgRepo repository.MessageRepository
	txRepo  repository.TransactionRepository
	pusher  Pusher
}

func NewChatService(msgRepo repository.MessageRepository, txRepo repository.TransactionRepository, pusher Pusher) ChatService {
	return &chatService{msgRepo: msgRepo, txRepo: txRepo, pusher: pusher}
}

func (s *chatService) Send(ctx context.Context, senderID, transactionID, message string) (*domain.ChatMessage, error) {
	if message == "" {
		return nil, errors.Validation("message cannot be empty")
	}
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	role, ok := t.PartyRole(senderID)
	if !ok {
		return nil, errors.Authorization("you are not a party to this transaction")
	}

	m := &domain.ChatMessage{
		TransactionID: transactionID,
		SenderID:      senderID,
		Message:       message,
	}
	if err := s.msgRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.pusher.Publish(t.PartyID(role.Other()), push.EventNewMessage, m)
	return m, nil
}

func (s *chatService) History(ctx context.Context, userID, transactionID string) ([]domain.ChatMessage, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if _, ok := t.PartyRole(userID); !ok {
		return nil, errors.Authorization("you are not a party to this transaction")
	}
	return s.msgRepo.ListByTransaction(ctx, transactionID)
}
