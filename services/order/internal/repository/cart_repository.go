package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	generalDomain "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"go.uber.org/zap"
)

// CartRepository keeps the pre-checkout cart in redis, one hash per user.
// Hash fields are "<product_id>:<size>" so putting the same line twice
// overwrites instead of duplicating.
type CartRepository interface {
	Get(ctx context.Context, username string) ([]generalDomain.OrderItem, error)
	Put(ctx context.Context, username string, items []generalDomain.OrderItem) error
	Clear(ctx context.Context, username string) error
}

type cartRepo struct {
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewCartRepository(redisClient *redis.Client, logger *zap.Logger) CartRepository {
	return &cartRepo{
		redisClient: redisClient,
		logger:      logger,
	}
}

func cartKey(username string) string {
	return fmt.Sprintf("cart:%s", username)
}

func itemField(item generalDomain.OrderItem) string {
	return fmt.Sprintf("%d:%s", item.ProductID, item.Size)
}

func (r *cartRepo) Get(ctx context.Context, username string) ([]generalDomain.OrderItem, error) {
	values, err := r.redisClient.HGetAll(ctx, cartKey(username)).Result()
	if err != nil {
		logging.Error(ctx, r.logger, "Failed to read cart",
			zap.String("username", username), zap.Error(err))

		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	items := make([]generalDomain.OrderItem, 0, len(values))
	for _, raw := range values {
		var item generalDomain.OrderItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			logging.Warn(ctx, r.logger, "Skipping malformed cart entry",
				zap.String("username", username), zap.Error(err))
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

func (r *cartRepo) Put(ctx context.Context, username string, items []generalDomain.OrderItem) error {
	values := make(map[string]any, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal cart item: %w", err)
		}
		values[itemField(item)] = data
	}

	if len(values) == 0 {
		return nil
	}

	if err := r.redisClient.HSet(ctx, cartKey(username), values).Err(); err != nil {
		logging.Error(ctx, r.logger, "Failed to write cart",
			zap.String("username", username), zap.Error(err))

		return fmt.Errorf("failed to write cart: %w", err)
	}

	return nil
}

func (r *cartRepo) Clear(ctx context.Context, username string) error {
	if err := r.redisClient.Del(ctx, cartKey(username)).Err(); err != nil {
		logging.Error(ctx, r.logger, "Failed to clear cart",
			zap.String("username", username), zap.Error(err))

		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
