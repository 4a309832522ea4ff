package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/repository"
	"go.uber.org/zap"
)

// InventoryService is the stock ledger. Reserve holds units for an order
// awaiting payment, Release returns held units, Confirm turns held units into
// a sale.
type InventoryService interface {
	Reserve(ctx context.Context, items []domain.StockItem) error
	Release(ctx context.Context, items []domain.StockItem) error
	Confirm(ctx context.Context, items []domain.StockItem) error
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	pool          *pgxpool.Pool
	logger        *zap.Logger
}

func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		pool:          pool,
		logger:        logger,
	}
}

func (s *inventoryService) Reserve(ctx context.Context, items []domain.StockItem) error {
	items = mergeStockItems(items)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logging.Warn(ctx, s.logger, "Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	for _, item := range items {
		if err := s.inventoryRepo.Reserve(ctx, tx, item.ProductID, item.Size, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrOutOfStock) {
				logging.Warn(ctx, s.logger, "Out of stock",
					zap.Int64("product_id", item.ProductID),
					zap.String("size", item.Size),
					zap.Int64("quantity", item.Quantity))
				return err
			}

			logging.Error(ctx, s.logger, "Error reserving stock", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		logging.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit: %w", err)
	}

	logging.Info(ctx, s.logger, "Stock reserved", zap.Int("items", len(items)))
	return nil
}

func (s *inventoryService) Release(ctx context.Context, items []domain.StockItem) error {
	items = mergeStockItems(items)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logging.Warn(ctx, s.logger, "Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	for _, item := range items {
		released, err := s.inventoryRepo.Release(ctx, tx, item.ProductID, item.Size, item.Quantity)
		if err != nil {
			logging.Error(ctx, s.logger, "Error releasing stock", zap.Error(err))
			return err
		}

		if !released {
			logging.Warn(ctx, s.logger, "Release skipped, nothing reserved",
				zap.Int64("product_id", item.ProductID),
				zap.String("size", item.Size),
				zap.Int64("quantity", item.Quantity))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		logging.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

func (s *inventoryService) Confirm(ctx context.Context, items []domain.StockItem) error {
	items = mergeStockItems(items)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logging.Warn(ctx, s.logger, "Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	touched := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if err := s.inventoryRepo.Confirm(ctx, tx, item.ProductID, item.Size, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrInsufficientReservation) {
				logging.Error(ctx, s.logger, "Confirm exceeds reservation",
					zap.Int64("product_id", item.ProductID),
					zap.String("size", item.Size),
					zap.Int64("quantity", item.Quantity))
				return err
			}

			logging.Error(ctx, s.logger, "Error confirming stock", zap.Error(err))
			return err
		}

		touched[item.ProductID] = struct{}{}
	}

	for productID := range touched {
		if err := s.inventoryRepo.RecomputeProductCount(ctx, tx, productID); err != nil {
			logging.Error(ctx, s.logger, "Error recomputing product count",
				zap.Int64("product_id", productID), zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		logging.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit: %w", err)
	}

	logging.Info(ctx, s.logger, "Stock confirmed", zap.Int("items", len(items)))
	return nil
}

func (s *inventoryService) rollback(ctx context.Context, tx pgx.Tx) {
	cleanupCtx := context.WithoutCancel(ctx)
	err := tx.Rollback(cleanupCtx)

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logging.Warn(
			ctx,
			s.logger,
			"Error rolling back transaction",
			zap.Error(err),
		)
	}
}
