package payment

import "sari_back_end/internal/models"

// calcTotal calcule le montant total des articles d'une commande
func calcTotal(items []models.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Qty)
	}
	return total
}
