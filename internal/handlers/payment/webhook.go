package payment

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"sari_back_end/internal/cache"
	"sari_back_end/internal/database"
	"sari_back_end/internal/models"
	"sari_back_end/internal/services"
	"sari_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// webhookEvent est la forme typée du callback PayMongo. On ne descend jamais
// dans des maps non typées : un payload qui ne colle pas à cette forme est un
// échec de parsing, pas un accès optionnel silencieux.
type webhookEvent struct {
	Data struct {
		Attributes struct {
			Type string `json:"type"`
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"attributes"`
	} `json:"data"`
}

const eventLinkPaid = "link.payment.paid"

// PayMongoWebhook réconcilie le callback asynchrone de PayMongo : marque le
// paiement payé (au plus une fois), matérialise les lignes du panier en
// OrderItems au prix catalogue COURANT, puis vide le panier.
//
// Contrat de réponse : 400 uniquement si le payload est inexploitable ;
// 200 pour tout le reste (événement ignoré, paiement inconnu, déjà payé) afin
// de ne pas déclencher de tempête de retries côté provider.
func PayMongoWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload webhook échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Println("❌ Payload webhook non-JSON:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
		return
	}

	eventType := event.Data.Attributes.Type
	log.Printf("📥 Événement PayMongo reçu : %s", eventType)

	if eventType != eventLinkPaid {
		log.Printf("ℹ️ Événement ignoré : %s", eventType)
		c.JSON(http.StatusOK, gin.H{"message": "Webhook received. No action taken."})
		return
	}

	linkID := event.Data.Attributes.Data.ID
	if linkID == "" {
		log.Println("❌ Identifiant de lien absent du payload webhook")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de paiement manquant"})
		return
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Lookup par identifiant PayMongo (table dénormalisée)
	var userID string
	var paymentID gocql.UUID

	lookup := database.GetPreparedGetPaymentByProvider()
	if lookup != nil {
		err = lookup.Bind(linkID).Scan(&userID, &paymentID)
	} else {
		err = ordersSession.Query("SELECT user_id, payment_id FROM payments_by_provider WHERE paymongo_payment_id = ?",
			linkID).Scan(&userID, &paymentID)
	}
	if err == gocql.ErrNotFound {
		// Avalé volontairement : un 4xx ici ferait retenter PayMongo en boucle
		log.Printf("⚠️ Paiement inconnu pour le lien %s — webhook acquitté sans action", linkID)
		c.JSON(http.StatusOK, gin.H{"message": "Webhook received. No action taken."})
		return
	}
	if err != nil {
		log.Printf("❌ Lookup paiement %s échoué: %v", linkID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	// Write conditionnel : is_paid passe à true au plus une fois, même si
	// PayMongo livre le webhook deux fois en parallèle
	paidAt := time.Now()
	var prevPaid bool
	applied, err := ordersSession.Query(`UPDATE payments SET is_paid = true, paid_at = ?, paymongo_status = ?
		WHERE user_id = ? AND payment_id = ? IF is_paid = false`,
		paidAt, "paid", userID, paymentID).ScanCAS(&prevPaid)
	if err != nil {
		log.Printf("❌ Passage en payé échoué pour %s: %v", linkID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}
	if !applied {
		log.Printf("🔁 Paiement %s déjà payé, webhook acquitté sans action", linkID)
		c.JSON(http.StatusOK, gin.H{"message": "Webhook received. No action taken."})
		return
	}

	items, err := drainCart(ordersSession, userID, paymentID)
	if err != nil {
		// Le paiement est déjà marqué payé : on acquitte quand même, la
		// matérialisation manquante est loggée pour intervention manuelle
		log.Printf("❌ Matérialisation des articles échouée pour %s: %v", linkID, err)
		c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed."})
		return
	}

	log.Printf("✅ Paiement %s confirmé : %d article(s) créé(s), panier vidé", linkID, len(items))

	go sendReceipt(userID, paymentID, paidAt, items)

	c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed. Order items created."})
}

// drainCart convertit chaque ligne du panier en OrderItem (prix catalogue
// courant) dans un batch logged, puis supprime la partition panier.
func drainCart(ordersSession *gocql.Session, userID string, paymentID gocql.UUID) ([]models.OrderItem, error) {
	usersSession, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	var iter *gocql.Iter
	if q := database.GetPreparedGetCartLines(); q != nil {
		iter = q.Bind(userID).Iter()
	} else {
		iter = usersSession.Query("SELECT product_id, qty FROM cart_lines WHERE user_id = ?", userID).Iter()
	}

	var lines []models.CartLine
	var productID gocql.UUID
	var qty int
	for iter.Scan(&productID, &qty) {
		lines = append(lines, models.CartLine{UserID: userID, ProductID: productID.String(), Qty: qty})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	items := buildOrderItems(paymentID, lines, cache.GetProductFromCache)

	batch := ordersSession.NewBatch(gocql.LoggedBatch)
	for _, item := range items {
		batch.Query(`INSERT INTO order_items (payment_id, item_id, product_id, product_name, qty, price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			item.PaymentID, item.ItemID, productUUID(item.ProductID), item.ProductName, item.Qty, item.Price)
	}

	if len(items) > 0 {
		if err := ordersSession.ExecuteBatch(batch); err != nil {
			return nil, err
		}
	}

	// Le panier est vidé intégralement, même pour les lignes abandonnées
	if err := usersSession.Query("DELETE FROM cart_lines WHERE user_id = ?", userID).Exec(); err != nil {
		return items, err
	}

	return items, nil
}

// buildOrderItems convertit les lignes du panier en OrderItems au prix
// catalogue courant. Une ligne dont le produit a disparu entre l'ajout au
// panier et la confirmation est abandonnée (le panier sera vidé quand même).
func buildOrderItems(paymentID gocql.UUID, lines []models.CartLine, lookup func(string) (*models.Product, error)) []models.OrderItem {
	var items []models.OrderItem
	for _, line := range lines {
		product, err := lookup(line.ProductID)
		if err != nil {
			log.Printf("⚠️ Produit %s introuvable, ligne de panier ignorée: %v", line.ProductID, err)
			continue
		}

		items = append(items, models.OrderItem{
			PaymentID:   paymentID,
			ItemID:      gocql.TimeUUID(),
			ProductID:   line.ProductID,
			ProductName: product.Name,
			Qty:         line.Qty,
			Price:       product.Price, // prix courant, pas celui de l'ajout au panier
		})
	}
	return items
}

func productUUID(id string) gocql.UUID {
	u, err := gocql.ParseUUID(id)
	if err != nil {
		return gocql.UUID{}
	}
	return u
}

// sendReceipt envoie l'e-mail de confirmation avec le reçu PDF archivé dans
// MinIO. Best effort : ne bloque jamais l'acquittement du webhook.
func sendReceipt(userID string, paymentID gocql.UUID, paidAt time.Time, items []models.OrderItem) {
	usersSession, err := database.GetUsersSession()
	if err != nil {
		log.Println("❌ Reçu non envoyé (session users):", err)
		return
	}

	var email, name string
	if err := usersSession.Query("SELECT email, name FROM users WHERE user_id = ?", userID).Scan(&email, &name); err != nil {
		log.Printf("❌ Reçu non envoyé (utilisateur %s introuvable): %v", userID, err)
		return
	}

	order := models.Order{
		Payment: models.Payment{
			ID:         paymentID,
			UserID:     userID,
			TotalPrice: calcTotal(items),
			IsPaid:     true,
			PaidAt:     &paidAt,
		},
		Items: items,
	}

	html := utils.GenerateOrderConfirmationHTML(order, name)

	pdf, err := utils.RenderReceiptPDF(order)
	if err != nil {
		log.Println("❌ Erreur génération reçu PDF:", err)
		pdf = nil
	}

	if pdf != nil {
		if url, err := services.ArchiveReceipt(paymentID.String(), pdf); err != nil {
			log.Println("❌ Erreur archivage reçu MinIO:", err)
		} else {
			log.Println("🗄️ Reçu archivé:", url)
		}
	}

	if err := utils.SendConfirmationEmail(email, "Confirmation de votre commande Sari", html, pdf); err != nil {
		log.Println("❌ Erreur envoi e-mail confirmation:", err)
	} else {
		log.Println("📧 E-mail de confirmation envoyé à", email)
	}
}
