package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/domain"
)

// cacheInvalidatingInventoryService drops cached product entries whose
// counters just changed, so reads do not serve stale availability.
type cacheInvalidatingInventoryService struct {
	next        InventoryService
	redisClient *redis.Client
}

func NewCacheInvalidatingInventoryService(next InventoryService, redisClient *redis.Client) InventoryService {
	return &cacheInvalidatingInventoryService{
		next:        next,
		redisClient: redisClient,
	}
}

func (s *cacheInvalidatingInventoryService) Reserve(ctx context.Context, items []domain.StockItem) error {
	err := s.next.Reserve(ctx, items)
	if err != nil {
		return err
	}

	s.invalidate(ctx, items)
	return nil
}

func (s *cacheInvalidatingInventoryService) Release(ctx context.Context, items []domain.StockItem) error {
	err := s.next.Release(ctx, items)
	if err != nil {
		return err
	}

	s.invalidate(ctx, items)
	return nil
}

func (s *cacheInvalidatingInventoryService) Confirm(ctx context.Context, items []domain.StockItem) error {
	err := s.next.Confirm(ctx, items)
	if err != nil {
		return err
	}

	s.invalidate(ctx, items)
	return nil
}

func (s *cacheInvalidatingInventoryService) invalidate(ctx context.Context, items []domain.StockItem) {
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}

		s.redisClient.Del(ctx, productCacheKey(item.ProductID))
	}
}
