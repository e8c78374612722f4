package cache

import (
	"context"
	"encoding/json"
	"time"

	"sari_back_end/internal/database"
	"sari_back_end/internal/models"

	"github.com/gocql/gocql"
)

const ProductCacheTTL = 10 * time.Minute

// GetProductFromCache récupère un produit depuis Redis ou ScyllaDB.
// Le TTL court garde le prix proche du catalogue : c'est ce prix qui est
// capturé dans les OrderItems à la confirmation du paiement.
func GetProductFromCache(productID string) (*models.Product, error) {
	ctx := context.Background()
	key := "product:" + productID

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var product models.Product
		if json.Unmarshal([]byte(data), &product) == nil {
			return &product, nil
		}
	}

	// 2. Récupérer de ScyllaDB
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	productUUID, err := gocql.ParseUUID(productID)
	if err != nil {
		return nil, err
	}

	product := models.Product{ID: productUUID}
	err = session.Query(`SELECT name, description, price, stock, image_urls, tags, is_active, created_at, updated_at
		FROM products WHERE product_id = ?`, productUUID).Scan(
		&product.Name, &product.Description, &product.Price, &product.Stock,
		&product.ImageURLs, &product.Tags, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(product)
	database.Redis.Set(ctx, key, jsonData, ProductCacheTTL)

	return &product, nil
}

// InvalidateProduct purge l'entrée cache d'un produit après modification.
func InvalidateProduct(productID string) {
	database.Redis.Del(context.Background(), "product:"+productID)
}
