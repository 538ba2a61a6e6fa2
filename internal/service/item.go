package service

import (
	"context"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/logger"
	"sharesphere-backend/internal/repository"
)

type itemService struct {
	itemRepo repository.ItemRepository
	txRepo   repository.TransactionRepository
}

func NewItemService(itemRepo repository.ItemRepository, txRepo repository.TransactionRepository) ItemService {
	return &itemService{itemRepo: itemRepo, txRepo: txRepo}
}

func (s *itemService) CreateItem(ctx context.Context, ownerID string, item *domain.Item) (*domain.Item, error) {
	if item.Title == "" {
		return nil, errors.Validation("item title is required")
	}
	if !item.Category.Valid() {
		return nil, errors.Validation("unknown category %q", item.Category)
	}
	if item.Value <= 0 {
		return nil, errors.Validation("item value must be positive")
	}
	if item.TokensPerDay <= 0 {
		item.TokensPerDay = domain.SuggestTokensPerDay(item.Value, item.Category)
	}

	item.OwnerID = ownerID
	item.Status = domain.ItemStatusAvailable
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Item listed", "item_id", item.ID, "owner_id", ownerID, "category", item.Category)
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return s.itemRepo.GetByID(ctx, id)
}

func (s *itemService) ListItems(ctx context.Context, category, query string, page, pageSize int32) ([]domain.Item, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	if category != "" && !domain.ItemCategory(category).Valid() {
		return nil, 0, errors.Validation("unknown category %q", category)
	}
	return s.itemRepo.List(ctx, category, query, page, pageSize)
}

func (s *itemService) ListMyItems(ctx context.Context, ownerID string) ([]domain.Item, error) {
	return s.itemRepo.ListByOwner(ctx, ownerID)
}

func (s *itemService) SetItemStatus(ctx context.Context, ownerID, itemID string, status domain.ItemStatus) error {
	if status != domain.ItemStatusAvailable && status != domain.ItemStatusUnavailable {
		return errors.Validation("status can only be set to available or unavailable")
	}
	item, err := s.ownedItem(ctx, ownerID, itemID)
	if err != nil {
		return err
	}
	if item.Status == domain.ItemStatusBorrowed {
		return errors.StateConflict("item is currently borrowed")
	}
	return s.itemRepo.SetStatus(ctx, itemID, status)
}

func (s *itemService) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	if _, err := s.ownedItem(ctx, ownerID, itemID); err != nil {
		return err
	}
	active, err := s.txRepo.HasActiveForItem(ctx, itemID)
	if err != nil {
		return err
	}
	if active {
		return errors.StateConflict("item has active transactions")
	}
	return s.itemRepo.Delete(ctx, itemID)
}

func (s *itemService) ownedItem(ctx context.Context, ownerID, itemID string) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, errors.Authorization("only the owner may modify this item")
	}
	return item, nil
}
