package payment

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"
	"time"

	"sari_back_end/internal/config"
	"sari_back_end/internal/database"
	"sari_back_end/internal/paymongo"
	"sari_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
)

var (
	gateway    *paymongo.Client
	gatewayCfg config.PayMongoConfig
)

// InitGateway injecte la configuration PayMongo dans le handler de checkout.
// Appelé au démarrage avec config.PayMongo(), remplacé par les tests.
func InitGateway(cfg config.PayMongoConfig) {
	gatewayCfg = cfg
	gateway = paymongo.NewClient(cfg)
}

// CheckoutInput est le formulaire de checkout. Tout est requis sauf le mobile.
// TotalPrice est un pointeur : le zéro de decimal.Decimal ne déclenche pas
// "required", un montant absent doit arriver en nil chez le validator.
type CheckoutInput struct {
	TotalPrice *decimal.Decimal `json:"total_price" binding:"required"`
	FullName   string          `json:"full_name" binding:"required"`
	Email      string          `json:"email" binding:"required,email"`
	Mobile     string          `json:"mobile"`
	Address    string          `json:"address" binding:"required"`
	City       string          `json:"city" binding:"required"`
	PostalCode string          `json:"postal_code" binding:"required"`
	Country    string          `json:"country" binding:"required"`
}

// CheckoutGCash valide le formulaire, crée le lien de paiement GCash chez
// PayMongo puis persiste le paiement "pending" et l'adresse de livraison.
// Ordre strict : validation → config → gateway → base. Une erreur de
// validation ne touche jamais le réseau, une erreur gateway jamais la base.
func CheckoutGCash(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, validationErrors(err))
		return
	}

	if !input.TotalPrice.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Données invalides",
			"fields": gin.H{"total_price": "Le montant doit être supérieur à zéro"},
		})
		return
	}

	// Erreur de configuration, distincte des erreurs de paiement : on échoue
	// avant tout appel réseau ou écriture en base
	if gatewayCfg.SecretKey == "" {
		log.Println("❌ PAYMONGO_SECRET_KEY manquante")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Clé PayMongo manquante"})
		return
	}

	link, err := gateway.CreateLink(c.Request.Context(), *input.TotalPrice, paymongo.Billing{
		Name:  input.FullName,
		Email: input.Email,
		Phone: input.Mobile,
	})
	if err != nil {
		respondGatewayError(c, err)
		return
	}

	status := link.Status
	if status == "" {
		status = "pending"
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Le lien PayMongo existe déjà côté provider : un échec d'écriture ici
	// laisse un lien orphelin sans trace locale (limite connue, loggée)
	paymentID := gocql.TimeUUID()
	totalPrice, _ := input.TotalPrice.Float64()

	if err := ordersSession.Query(`INSERT INTO payments (user_id, payment_id, total_price, is_paid, paymongo_payment_id, paymongo_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, paymentID, totalPrice, false, link.ID, status, time.Now()).Exec(); err != nil {
		log.Printf("❌ Insertion payment échouée (lien PayMongo orphelin %s): %v", link.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement paiement"})
		return
	}

	// Table de lookup dénormalisée : le webhook retrouve le paiement par
	// l'identifiant PayMongo
	if err := ordersSession.Query(`INSERT INTO payments_by_provider (paymongo_payment_id, user_id, payment_id)
		VALUES (?, ?, ?)`, link.ID, userID, paymentID).Exec(); err != nil {
		log.Printf("❌ Insertion payments_by_provider échouée pour %s: %v", link.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement paiement"})
		return
	}

	if err := ordersSession.Query(`INSERT INTO shipping_addresses (payment_id, full_name, address, city, postal_code, country)
		VALUES (?, ?, ?, ?, ?, ?)`,
		paymentID, input.FullName, input.Address, input.City, input.PostalCode, input.Country).Exec(); err != nil {
		log.Printf("❌ Insertion adresse de livraison échouée pour %s: %v", link.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement adresse"})
		return
	}

	log.Printf("💳 Lien GCash créé : %s (%s PHP) pour user %s", link.ID, input.TotalPrice.StringFixed(2), userID)

	response := gin.H{"checkout_url": link.CheckoutURL}

	// QR du lien pour affichage en caisse — best effort
	if qr, err := utils.CheckoutQR(link.CheckoutURL); err == nil {
		response["qr_code"] = qr
	}

	c.JSON(http.StatusOK, response)
}

// respondGatewayError projette la taxonomie d'erreurs PayMongo sur les statuts
// HTTP : timeout → 504, le reste → 502 avec le payload brut du provider.
func respondGatewayError(c *gin.Context, err error) {
	var pmErr *paymongo.Error
	if !errors.As(err, &pmErr) {
		log.Printf("❌ Erreur paiement inattendue: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch pmErr.Kind {
	case paymongo.KindTimeout:
		log.Println("❌ PayMongo timeout")
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "PayMongo timeout"})
	case paymongo.KindTransport:
		log.Printf("❌ Erreur réseau PayMongo: %v", pmErr.Err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur PayMongo: " + pmErr.Error()})
	case paymongo.KindGateway:
		log.Printf("❌ PayMongo a rejeté la requête (HTTP %d)", pmErr.StatusCode)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Requête refusée par PayMongo", "raw": rawPayload(pmErr)})
	case paymongo.KindMalformed:
		log.Printf("❌ Réponse PayMongo inattendue (HTTP %d)", pmErr.StatusCode)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Réponse PayMongo inattendue", "raw": rawPayload(pmErr)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": pmErr.Error()})
	}
}

func rawPayload(pmErr *paymongo.Error) json.RawMessage {
	if json.Valid(pmErr.Raw) {
		return pmErr.Raw
	}
	raw, _ := json.Marshal(string(pmErr.Raw))
	return raw
}

// validationErrors transforme les erreurs du validator en erreurs par champ,
// nommées d'après les tags json du formulaire.
func validationErrors(err error) gin.H {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return gin.H{"error": "Données invalides", "details": err.Error()}
	}

	inputType := reflect.TypeOf(CheckoutInput{})
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := fe.StructField()
		if f, ok := inputType.FieldByName(fe.StructField()); ok {
			if tag := strings.Split(f.Tag.Get("json"), ",")[0]; tag != "" {
				name = tag
			}
		}
		switch fe.Tag() {
		case "required":
			fields[name] = "Ce champ est requis"
		case "email":
			fields[name] = "Adresse e-mail invalide"
		default:
			fields[name] = "Valeur invalide"
		}
	}

	return gin.H{"error": "Données invalides", "fields": fields}
}
