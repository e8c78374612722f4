package user

import (
	"log"
	"net/http"

	"sari_back_end/internal/cache"
	"sari_back_end/internal/database"
	"sari_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// Les lignes de panier vivent dans ScyllaDB : c'est elles que le webhook
// PayMongo draine en OrderItems à la confirmation du paiement.

// GetCart renvoie le panier de l'utilisateur, enrichi des infos produit courantes
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query("SELECT product_id, qty FROM cart_lines WHERE user_id = ?", userID).Iter()

	items := []models.CartLineView{}
	var productID gocql.UUID
	var qty int
	for iter.Scan(&productID, &qty) {
		view := models.CartLineView{ProductID: productID.String(), Qty: qty}

		if product, err := cache.GetProductFromCache(view.ProductID); err == nil {
			view.Name = product.Name
			view.Price = product.Price
			if len(product.ImageURLs) > 0 {
				view.ImageURL = product.ImageURLs[0]
			}
		}

		items = append(items, view)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

//
// 🟢 POST /api/cart/add
//
func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	productUUID, err := gocql.ParseUUID(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	// Le produit doit exister dans le catalogue
	product, err := cache.GetProductFromCache(input.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Ligne existante : on cumule la quantité (read-then-write, comme le
	// get_or_create côté panier classique)
	qty := input.Quantity
	var existingQty int
	if err := session.Query("SELECT qty FROM cart_lines WHERE user_id = ? AND product_id = ?",
		userID, productUUID).Scan(&existingQty); err == nil {
		qty += existingQty
	}

	if err := session.Query("INSERT INTO cart_lines (user_id, product_id, qty) VALUES (?, ?, ?)",
		userID, productUUID, qty).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	log.Printf("🛒 %s x%d ajouté au panier de %s", product.Name, input.Quantity, userID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Produit ajouté au panier",
		"item": models.CartLineView{
			ProductID: input.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Qty:       qty,
		},
	})
}

//
// 🔁 PUT /api/cart/:productId
//
func UpdateCartItem(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	productUUID, err := gocql.ParseUUID(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var existingQty int
	if err := session.Query("SELECT qty FROM cart_lines WHERE user_id = ? AND product_id = ?",
		userID, productUUID).Scan(&existingQty); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ligne de panier introuvable"})
		return
	}

	if err := session.Query("UPDATE cart_lines SET qty = ? WHERE user_id = ? AND product_id = ?",
		input.Quantity, userID, productUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Panier mis à jour"})
}

//
// ❌ DELETE /api/cart/:productId
//
func RemoveFromCart(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	productUUID, err := gocql.ParseUUID(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("DELETE FROM cart_lines WHERE user_id = ? AND product_id = ?",
		userID, productUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression"})
		return
	}

	c.Status(http.StatusNoContent)
}
