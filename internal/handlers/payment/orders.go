package payment

import (
	"log"
	"net/http"
	"time"

	"sari_back_end/internal/database"
	"sari_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// GetMyOrders renvoie l'historique des paiements de l'utilisateur connecté,
// du plus récent au plus ancien, avec articles et adresse de livraison.
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// payment_id est un timeuuid en clustering DESC : l'ordre du plus récent
	// au plus ancien vient directement de la table
	iter := ordersSession.Query(`SELECT payment_id, total_price, is_paid, paymongo_payment_id, paymongo_status, paid_at, created_at
		FROM payments WHERE user_id = ?`, userID).Iter()

	var orders []models.Order
	var (
		paymentID      gocql.UUID
		totalPrice     float64
		isPaid         bool
		paymongoID     string
		paymongoStatus string
		paidAt         time.Time
		createdAt      time.Time
	)
	for iter.Scan(&paymentID, &totalPrice, &isPaid, &paymongoID, &paymongoStatus, &paidAt, &createdAt) {
		payment := models.Payment{
			ID:                paymentID,
			UserID:            userID,
			TotalPrice:        totalPrice,
			IsPaid:            isPaid,
			PaymongoPaymentID: paymongoID,
			PaymongoStatus:    paymongoStatus,
			CreatedAt:         createdAt,
		}
		// paid_at est null tant que le webhook n'est pas passé
		if !paidAt.IsZero() {
			t := paidAt
			payment.PaidAt = &t
		}
		orders = append(orders, models.Order{Payment: payment})
	}
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur lecture paiements:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	for i := range orders {
		if err := attachOrderDetails(ordersSession, &orders[i]); err != nil {
			log.Printf("⚠️ Détails incomplets pour la commande %s: %v", orders[i].Payment.ID, err)
		}
	}

	log.Printf("✅ %d commande(s) trouvée(s) pour user %s", len(orders), userID)

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderByID renvoie une commande précise, avec contrôle de propriété.
func GetOrderByID(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	paymentID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	order := models.Order{Payment: models.Payment{ID: paymentID, UserID: userID}}

	// La clé de partition est user_id : la requête ne peut pas retourner la
	// commande d'un autre utilisateur
	var paidAt time.Time
	err = ordersSession.Query(`SELECT total_price, is_paid, paymongo_payment_id, paymongo_status, paid_at, created_at
		FROM payments WHERE user_id = ? AND payment_id = ?`, userID, paymentID).Scan(
		&order.Payment.TotalPrice, &order.Payment.IsPaid, &order.Payment.PaymongoPaymentID,
		&order.Payment.PaymongoStatus, &paidAt, &order.Payment.CreatedAt)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if !paidAt.IsZero() {
		order.Payment.PaidAt = &paidAt
	}

	if err := attachOrderDetails(ordersSession, &order); err != nil {
		log.Printf("⚠️ Détails incomplets pour la commande %s: %v", paymentID, err)
	}

	c.JSON(http.StatusOK, order)
}

// attachOrderDetails complète une commande avec ses articles et son adresse.
func attachOrderDetails(session *gocql.Session, order *models.Order) error {
	iter := session.Query(`SELECT item_id, product_id, product_name, qty, price
		FROM order_items WHERE payment_id = ?`, order.Payment.ID).Iter()

	var (
		itemID      gocql.UUID
		productID   gocql.UUID
		productName string
		qty         int
		price       float64
	)
	for iter.Scan(&itemID, &productID, &productName, &qty, &price) {
		order.Items = append(order.Items, models.OrderItem{
			PaymentID:   order.Payment.ID,
			ItemID:      itemID,
			ProductID:   productID.String(),
			ProductName: productName,
			Qty:         qty,
			Price:       price,
		})
	}
	if err := iter.Close(); err != nil {
		return err
	}

	var shipping models.ShippingAddress
	err := session.Query(`SELECT full_name, address, city, postal_code, country
		FROM shipping_addresses WHERE payment_id = ?`, order.Payment.ID).Scan(
		&shipping.FullName, &shipping.Address, &shipping.City, &shipping.PostalCode, &shipping.Country)
	if err == nil {
		shipping.PaymentID = order.Payment.ID
		order.Shipping = &shipping
	} else if err != gocql.ErrNotFound {
		return err
	}

	return nil
}
