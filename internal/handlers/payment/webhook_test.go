package payment

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sari_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/webhook/paymongo", PayMongoWebhook)
	return r
}

func postWebhook(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/paymongo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	webhookRouter().ServeHTTP(w, req)
	return w
}

func TestWebhookInvalidJSON(t *testing.T) {
	w := postWebhook(`{pas du json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "JSON invalide")
}

func TestWebhookIgnoredEventType(t *testing.T) {
	// Tout événement autre que link.payment.paid est acquitté sans mutation
	w := postWebhook(`{"data":{"attributes":{"type":"link.payment.failed","data":{"id":"link_abc"}}}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No action taken")
}

func TestWebhookUnknownEventShape(t *testing.T) {
	// Payload JSON valide mais sans la structure attendue : pas un événement
	// payé, donc simple acquittement
	w := postWebhook(`{"hello":"world"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No action taken")
}

func TestWebhookPaidEventMissingLinkID(t *testing.T) {
	// Événement payé sans identifiant de lien : payload inexploitable → 400
	w := postWebhook(`{"data":{"attributes":{"type":"link.payment.paid","data":{}}}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "manquant")
}

func TestBuildOrderItemsCurrentCatalogPrice(t *testing.T) {
	// Les OrderItems sont facturés au prix catalogue du moment de la
	// confirmation, pas à celui de l'ajout au panier
	paymentID := gocql.TimeUUID()
	catalog := map[string]*models.Product{
		"11111111-1111-1111-1111-111111111111": {Name: "Sardines Ligo", Price: 32.50},
		"22222222-2222-2222-2222-222222222222": {Name: "Riz 5kg", Price: 289.00},
	}
	lines := []models.CartLine{
		{UserID: "u1", ProductID: "11111111-1111-1111-1111-111111111111", Qty: 3},
		{UserID: "u1", ProductID: "22222222-2222-2222-2222-222222222222", Qty: 1},
	}

	items := buildOrderItems(paymentID, lines, func(id string) (*models.Product, error) {
		return catalog[id], nil
	})

	require.Len(t, items, 2)
	assert.Equal(t, "Sardines Ligo", items[0].ProductName)
	assert.Equal(t, 3, items[0].Qty)
	assert.InDelta(t, 32.50, items[0].Price, 0.001)
	assert.InDelta(t, 289.00, items[1].Price, 0.001)
	for _, item := range items {
		assert.Equal(t, paymentID, item.PaymentID)
		assert.NotEqual(t, gocql.UUID{}, item.ItemID)
	}
	assert.InDelta(t, 3*32.50+289.00, calcTotal(items), 0.001)
}

func TestBuildOrderItemsSkipsVanishedProduct(t *testing.T) {
	// Produit supprimé du catalogue entre l'ajout au panier et le paiement :
	// la ligne est abandonnée, les autres sont matérialisées normalement
	paymentID := gocql.TimeUUID()
	lines := []models.CartLine{
		{UserID: "u1", ProductID: "11111111-1111-1111-1111-111111111111", Qty: 2},
		{UserID: "u1", ProductID: "99999999-9999-9999-9999-999999999999", Qty: 5},
	}

	items := buildOrderItems(paymentID, lines, func(id string) (*models.Product, error) {
		if id == "99999999-9999-9999-9999-999999999999" {
			return nil, errors.New("produit introuvable")
		}
		return &models.Product{Name: "Sardines Ligo", Price: 32.50}, nil
	})

	require.Len(t, items, 1)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", items[0].ProductID)
	assert.Equal(t, 2, items[0].Qty)
}
