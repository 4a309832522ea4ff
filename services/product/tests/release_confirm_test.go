package tests

import (
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/repository"
)

func (s *IntegrationTestSuite) TestReserveReleaseRoundTrip() {
	productID := s.createProduct(domain.Size{Name: "42", Quantity: 10})

	items := []domain.StockItem{{ProductID: productID, Size: "42", Quantity: 4}}

	s.Require().NoError(s.InventoryService.Reserve(s.Ctx, items))
	s.Require().NoError(s.InventoryService.Release(s.Ctx, items))

	quantity, reserved := s.sizeCounters(productID, "42")
	s.Equal(int64(10), quantity)
	s.Equal(int64(0), reserved)
}

func (s *IntegrationTestSuite) TestReleaseBeyondReservedIsSkipped() {
	productID := s.createProduct(domain.Size{Name: "42", Quantity: 10})

	s.Require().NoError(s.InventoryService.Reserve(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "42", Quantity: 2},
	}))

	// Releasing more than is held must not fail and must not touch counters.
	err := s.InventoryService.Release(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "42", Quantity: 5},
	})
	s.Require().NoError(err)

	quantity, reserved := s.sizeCounters(productID, "42")
	s.Equal(int64(10), quantity)
	s.Equal(int64(2), reserved)
}

func (s *IntegrationTestSuite) TestConfirmStock() {
	productID := s.createProduct(
		domain.Size{Name: "41", Quantity: 5},
		domain.Size{Name: "42", Quantity: 10},
	)

	s.Require().NoError(s.InventoryService.Reserve(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "42", Quantity: 4},
	}))

	s.Require().NoError(s.InventoryService.Confirm(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "42", Quantity: 4},
	}))

	quantity, reserved := s.sizeCounters(productID, "42")
	s.Equal(int64(6), quantity)
	s.Equal(int64(0), reserved)

	// product_count is recomputed from the remaining size quantities.
	s.Equal(int64(11), s.productCount(productID))
}

func (s *IntegrationTestSuite) TestConfirmBeyondReservedFails() {
	productID := s.createProduct(domain.Size{Name: "42", Quantity: 10})

	s.Require().NoError(s.InventoryService.Reserve(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "42", Quantity: 2},
	}))

	err := s.InventoryService.Confirm(s.Ctx, []domain.StockItem{
		{ProductID: productID, Size: "42", Quantity: 3},
	})
	s.Require().ErrorIs(err, repository.ErrInsufficientReservation)

	quantity, reserved := s.sizeCounters(productID, "42")
	s.Equal(int64(10), quantity)
	s.Equal(int64(2), reserved)
	s.Equal(int64(10), s.productCount(productID))
}

func (s *IntegrationTestSuite) TestFindByIDReturnsSizes() {
	productID := s.createProduct(
		domain.Size{Name: "41", Quantity: 5},
		domain.Size{Name: "42", Quantity: 10},
	)

	product, err := s.ProductService.FindByID(s.Ctx, productID)
	s.Require().NoError(err)

	s.Equal(productID, product.ID)
	s.Equal(int64(15), product.ProductCount)
	s.Len(product.Sizes, 2)
}

func (s *IntegrationTestSuite) TestFindByIDNotFound() {
	_, err := s.ProductService.FindByID(s.Ctx, 99999)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}
