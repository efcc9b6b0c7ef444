package item

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-market-api/internal/domain"
	"github.com/campus-market-api/internal/pkg/id"
	"github.com/rs/zerolog"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldPrice       = "price"
	fieldCategory    = "category"
	fieldCondition   = "condition"
	fieldImages      = "images"
	fieldLocation    = "location"
	fieldTags        = "tags"
	fieldIsSold      = "is_sold"
)

const defaultPageSize = 20

type Service interface {
	Create(ctx context.Context, sellerID string, req domain.CreateItemRequest) (*domain.Item, error)
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	List(ctx context.Context, f domain.ItemFilter, limit int, cursor string) ([]domain.Item, string, error)
	ListBySeller(ctx context.Context, sellerID string, limit int, cursor string) ([]domain.Item, string, error)
	Update(ctx context.Context, itemID, callerID string, req domain.UpdateItemRequest) (*domain.Item, error)
	MarkSold(ctx context.Context, itemID, callerID string, sold bool) (*domain.Item, error)
	Delete(ctx context.Context, itemID, callerID string) error
}

type itemStore interface {
	Put(ctx context.Context, it *domain.Item) error
	Get(ctx context.Context, itemID string) (*domain.Item, error)
	Update(ctx context.Context, itemID string, updates map[string]interface{}) error
	Delete(ctx context.Context, itemID string) error
	ScanPage(ctx context.Context, f domain.ItemFilter, limit int32, cursor string) ([]domain.Item, string, error)
	QueryBySeller(ctx context.Context, sellerID string, limit int32, cursor string) ([]domain.Item, string, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	repo     itemStore
	userRepo userStore
	logger   zerolog.Logger
}

type ServiceDeps struct {
	ItemRepo itemStore
	UserRepo userStore
	Logger   zerolog.Logger
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:     deps.ItemRepo,
		userRepo: deps.UserRepo,
		logger:   deps.Logger,
	}
}

func (s *service) Create(ctx context.Context, sellerID string, req domain.CreateItemRequest) (*domain.Item, error) {
	if _, err := s.userRepo.Get(ctx, sellerID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	it := &domain.Item{
		ItemID:      id.New(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Images:      req.Images,
		SellerID:    sellerID,
		IsSold:      false,
		Location:    req.Location,
		Tags:        req.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// Get returns the item with its seller profile joined in. A missing seller
// record is logged but does not fail the lookup.
func (s *service) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	it, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	seller, err := s.userRepo.Get(ctx, it.SellerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("item_id", itemID).Str("seller_id", it.SellerID).
			Msg("item seller lookup failed")
	} else {
		it.Seller = seller.Sanitize()
	}
	return it, nil
}

func (s *service) List(ctx context.Context, f domain.ItemFilter, limit int, cursor string) ([]domain.Item, string, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	return s.repo.ScanPage(ctx, f, int32(limit), cursor)
}

func (s *service) ListBySeller(ctx context.Context, sellerID string, limit int, cursor string) ([]domain.Item, string, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	return s.repo.QueryBySeller(ctx, sellerID, int32(limit), cursor)
}

func (s *service) Update(ctx context.Context, itemID, callerID string, req domain.UpdateItemRequest) (*domain.Item, error) {
	if _, err := s.owned(ctx, itemID, callerID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = *req.Title
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.Price != nil {
		updates[fieldPrice] = *req.Price
	}
	if req.Category != nil {
		updates[fieldCategory] = *req.Category
	}
	if req.Condition != nil {
		updates[fieldCondition] = *req.Condition
	}
	if req.Images != nil {
		updates[fieldImages] = req.Images
	}
	if req.Location != nil {
		updates[fieldLocation] = *req.Location
	}
	if req.Tags != nil {
		updates[fieldTags] = req.Tags
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, itemID)
	}
	if err := s.repo.Update(ctx, itemID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, itemID)
}

func (s *service) MarkSold(ctx context.Context, itemID, callerID string, sold bool) (*domain.Item, error) {
	if _, err := s.owned(ctx, itemID, callerID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, itemID, map[string]interface{}{fieldIsSold: sold}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, itemID)
}

func (s *service) Delete(ctx context.Context, itemID, callerID string) error {
	if _, err := s.owned(ctx, itemID, callerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, itemID)
}

// owned loads the item and verifies the caller is its seller.
func (s *service) owned(ctx context.Context, itemID, callerID string) (*domain.Item, error) {
	it, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.SellerID != callerID {
		return nil, fmt.Errorf("only the seller can modify this listing: %w", domain.ErrForbidden)
	}
	return it, nil
}
