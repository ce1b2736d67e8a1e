package services

import (
	"github.com/otoor/marketplace-backend/models"
)

// MergeLines aggregates duplicate cart lines for the same product, keeping
// the first-seen order.
func MergeLines(items []models.OrderItemInput) []models.InventoryLine {
	index := make(map[uint]int, len(items))
	lines := make([]models.InventoryLine, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.ProductID]; ok {
			lines[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, models.InventoryLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// CheckInventory validates every line against a product snapshot and
// returns one issue per offending line. An empty result means the whole
// cart is fulfillable against the snapshot; the authoritative check is the
// conditional decrement inside the order transaction.
func CheckInventory(lines []models.InventoryLine, products map[uint]models.Product) []models.InventoryIssue {
	var issues []models.InventoryIssue
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			issues = append(issues, models.InventoryIssue{
				ProductID:         line.ProductID,
				RequestedQuantity: line.Quantity,
				Reason:            models.IssueProductNotFound,
			})
			continue
		}
		if !product.Sellable() {
			issues = append(issues, models.InventoryIssue{
				ProductID:         line.ProductID,
				Name:              product.Name,
				RequestedQuantity: line.Quantity,
				AvailableQuantity: product.StockQuantity,
				Reason:            models.IssueProductUnavailable,
			})
			continue
		}
		if product.StockQuantity <= 0 {
			issues = append(issues, models.InventoryIssue{
				ProductID:         line.ProductID,
				Name:              product.Name,
				RequestedQuantity: line.Quantity,
				AvailableQuantity: 0,
				Reason:            models.IssueOutOfStock,
			})
			continue
		}
		if product.StockQuantity < line.Quantity {
			issues = append(issues, models.InventoryIssue{
				ProductID:         line.ProductID,
				Name:              product.Name,
				RequestedQuantity: line.Quantity,
				AvailableQuantity: product.StockQuantity,
				Reason:            models.IssueInsufficientStock,
			})
		}
	}
	return issues
}
