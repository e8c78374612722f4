package product

import (
	"context"
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

type productInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
	ImageURLs   []string `json:"image_urls"`
	Tags        []string `json:"tags"`
}

// CreateProduct ajoute un produit au catalogue et l'indexe pour la recherche
func CreateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()
	product := models.Product{
		ID:          gocql.TimeUUID(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURLs:   input.ImageURLs,
		Tags:        input.Tags,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := session.Query(`INSERT INTO products (product_id, name, description, price, stock, image_urls, tags, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Description, product.Price, product.Stock,
		product.ImageURLs, product.Tags, product.IsActive, product.CreatedAt, product.UpdatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	services.IndexProduct(product)
	database.Redis.Del(context.Background(), "products:all")

	log.Printf("✅ Produit créé : %s (₱%.2f)", product.Name, product.Price)

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct modifie un produit. Le nouveau prix devient immédiatement
// celui capturé par les confirmations de paiement à venir.
func UpdateProduct(c *gin.Context) {
	productUUID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	existing, err := cache.GetProductFromCache(productUUID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	product := *existing
	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Stock = input.Stock
	product.ImageURLs = input.ImageURLs
	product.Tags = input.Tags
	product.UpdatedAt = time.Now()

	if err := session.Query(`UPDATE products SET name = ?, description = ?, price = ?, stock = ?, image_urls = ?, tags = ?, updated_at = ?
		WHERE product_id = ?`,
		product.Name, product.Description, product.Price, product.Stock,
		product.ImageURLs, product.Tags, product.UpdatedAt, productUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	services.IndexProduct(product)
	cache.InvalidateProduct(productUUID.String())
	database.Redis.Del(context.Background(), "products:all")

	c.JSON(http.StatusOK, product)
}
