package product

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"sari_back_end/internal/cache"
	"sari_back_end/internal/database"
	"sari_back_end/internal/models"
	"sari_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const productListCacheTTL = 5 * time.Minute

// GetProducts liste le catalogue (cache Redis, TTL 5 min)
func GetProducts(c *gin.Context) {
	ctx := context.Background()
	const cacheKey = "products:all"

	if data, err := database.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var products []models.Product
		if json.Unmarshal([]byte(data), &products) == nil {
			c.JSON(http.StatusOK, gin.H{"products": products, "cached": true})
			return
		}
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT product_id, name, description, price, stock, image_urls, tags, is_active, created_at, updated_at
		FROM products`).Iter()

	var products []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURLs, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
		if p.IsActive {
			products = append(products, p)
		}
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur lecture produits:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produits"})
		return
	}

	if jsonData, err := json.Marshal(products); err == nil {
		database.Redis.Set(ctx, cacheKey, jsonData, productListCacheTTL)
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProductDetails renvoie un produit par son ID
func GetProductDetails(c *gin.Context) {
	if _, err := gocql.ParseUUID(c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	product, err := cache.GetProductFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// SearchProducts recherche dans le catalogue via Elasticsearch
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		log.Println("❌ Erreur recherche Elastic:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche produits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": results, "count": len(results)})
}
