package service

import "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/product/internal/domain"

type sizeKey struct {
	productID int64
	size      string
}

// mergeStockItems collapses duplicate (product, size) lines into one,
// summing their quantities. Order of first appearance is preserved so the
// counters are touched in a deterministic sequence.
func mergeStockItems(items []domain.StockItem) []domain.StockItem {
	merged := make(map[sizeKey]int64, len(items))
	order := make([]sizeKey, 0, len(items))

	for _, item := range items {
		key := sizeKey{productID: item.ProductID, size: item.Size}
		if _, ok := merged[key]; !ok {
			order = append(order, key)
		}
		merged[key] += item.Quantity
	}

	result := make([]domain.StockItem, 0, len(order))
	for _, key := range order {
		result = append(result, domain.StockItem{
			ProductID: key.productID,
			Size:      key.size,
			Quantity:  merged[key],
		})
	}

	return result
}
