package tests

import (
	"sync"

	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/repository"
)

func (s *IntegrationTestSuite) TestReserveStock() {
	productID := s.createProduct(domain.Size{Name: "42", Quantity: 10})

	err := s.InventoryService.Reserve(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "42", Quantity: 3},
	})
	s.Require().NoError(err)

	quantity, reserved := s.sizeCounters(productID, "42")
	s.Equal(int64(10), quantity)
	s.Equal(int64(3), reserved)
}

func (s *IntegrationTestSuite) TestReserveOutOfStock() {
	productID := s.createProduct(domain.Size{Name: "42", Quantity: 2})

	err := s.InventoryService.Reserve(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "42", Quantity: 3},
	})
	s.Require().ErrorIs(err, repository.ErrOutOfStock)

	_, reserved := s.sizeCounters(productID, "42")
	s.Equal(int64(0), reserved)
}

func (s *IntegrationTestSuite) TestReserveDeduplicatesItems() {
	productID := s.createProduct(domain.Size{Name: "42", Quantity: 5})

	// Two lines for the same size are one reservation of 4, not two of 2.
	err := s.InventoryService.Reserve(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "42", Quantity: 2},
		{ProductID: productID, Size: "42", Quantity: 2},
	})
	s.Require().NoError(err)

	_, reserved := s.sizeCounters(productID, "42")
	s.Equal(int64(4), reserved)

	// Merged quantity of 3 exceeds remaining free stock of 1.
	err = s.InventoryService.Reserve(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "42", Quantity: 1},
		{ProductID: productID, Size: "42", Quantity: 2},
	})
	s.Require().ErrorIs(err, repository.ErrOutOfStock)

	_, reserved = s.sizeCounters(productID, "42")
	s.Equal(int64(4), reserved)
}

func (s *IntegrationTestSuite) TestReserveFailureRollsBackEarlierItems() {
	productID := s.createProduct(
		domain.Size{Name: "41", Quantity: 5},
		domain.Size{Name: "42", Quantity: 1},
	)

	err := s.InventoryService.Reserve(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "41", Quantity: 2},
		{ProductID: productID, Size: "42", Quantity: 2},
	})
	s.Require().ErrorIs(err, repository.ErrOutOfStock)

	_, reserved41 := s.sizeCounters(productID, "41")
	_, reserved42 := s.sizeCounters(productID, "42")
	s.Equal(int64(0), reserved41)
	s.Equal(int64(0), reserved42)
}

func (s *IntegrationTestSuite) TestReserveUnknownSize() {
	productID := s.createProduct(domain.Size{Name: "42", Quantity: 5})

	err := s.InventoryService.Reserve(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "43", Quantity: 1},
	})
	s.Require().ErrorIs(err, repository.ErrSizeNotFound)
}

func (s *IntegrationTestSuite) TestConcurrentReserveOfLastUnit() {
	productID := s.createProduct(domain.Size{Name: "42", Quantity: 1})

	const workers = 8

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.InventoryService.Reserve(s.Ctx, []domain.StockItem{
				{ProductID: productID, Size: "42", Quantity: 1},
			})
		}()
	}

	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			s.Require().ErrorIs(err, repository.ErrOutOfStock)
		}
	}

	s.Equal(1, succeeded)

	quantity, reserved := s.sizeCounters(productID, "42")
	s.Equal(int64(1), quantity)
	s.Equal(int64(1), reserved)
}
