package payment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sari_back_end/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// checkoutRouter monte le handler derrière un faux middleware d'auth
func checkoutRouter(authenticated bool) *gin.Engine {
	r := gin.New()
	r.POST("/api/checkout/gcash", func(c *gin.Context) {
		if authenticated {
			c.Set("user_id", "8d9f7c3a-1111-2222-3333-444455556666")
			c.Set("email", "juan@example.com")
		}
		c.Next()
	}, CheckoutGCash)
	return r
}

func postCheckout(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/gcash", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validCheckoutBody = `{
	"total_price": 199.99,
	"full_name": "Juan Dela Cruz",
	"email": "juan@example.com",
	"mobile": "+639171234567",
	"address": "123 Mabini St",
	"city": "Quezon City",
	"postal_code": "1100",
	"country": "PH"
}`

func TestCheckoutUnauthenticated(t *testing.T) {
	InitGateway(config.PayMongoConfig{SecretKey: "sk_test"})

	w := postCheckout(checkoutRouter(false), validCheckoutBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckoutMissingFieldNoSideEffect(t *testing.T) {
	// La validation échoue AVANT tout appel réseau : le faux gateway ne doit
	// recevoir aucune requête
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	InitGateway(config.PayMongoConfig{SecretKey: "sk_test", BaseURL: srv.URL})

	body := `{
		"total_price": 199.99,
		"full_name": "Juan Dela Cruz",
		"email": "juan@example.com",
		"city": "Quezon City",
		"postal_code": "1100",
		"country": "PH"
	}`
	w := postCheckout(checkoutRouter(true), body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "address")
}

func TestCheckoutMissingTotalPrice(t *testing.T) {
	// Montant absent : c'est le validator qui refuse, pas le contrôle de
	// positivité, et le gateway n'est jamais appelé
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	InitGateway(config.PayMongoConfig{SecretKey: "sk_test", BaseURL: srv.URL})

	body := `{
		"full_name": "Juan Dela Cruz",
		"email": "juan@example.com",
		"address": "123 Mabini St",
		"city": "Quezon City",
		"postal_code": "1100",
		"country": "PH"
	}`
	w := postCheckout(checkoutRouter(true), body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Ce champ est requis", resp.Fields["total_price"])
}

func TestCheckoutInvalidEmail(t *testing.T) {
	InitGateway(config.PayMongoConfig{SecretKey: "sk_test"})

	body := strings.Replace(validCheckoutBody, "juan@example.com", "pas-un-email", 1)
	w := postCheckout(checkoutRouter(true), body)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "email")
}

func TestCheckoutNonPositiveTotal(t *testing.T) {
	InitGateway(config.PayMongoConfig{SecretKey: "sk_test"})

	body := strings.Replace(validCheckoutBody, "199.99", "-5", 1)
	w := postCheckout(checkoutRouter(true), body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "total_price")
}

func TestCheckoutMissingSecretKey(t *testing.T) {
	// Erreur de configuration : 500 avant tout appel réseau
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	InitGateway(config.PayMongoConfig{SecretKey: "", BaseURL: srv.URL})

	w := postCheckout(checkoutRouter(true), validCheckoutBody)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "PayMongo")
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestCheckoutGatewayTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	InitGateway(config.PayMongoConfig{
		SecretKey: "sk_test",
		BaseURL:   srv.URL,
		Timeout:   50 * time.Millisecond,
	})

	w := postCheckout(checkoutRouter(true), validCheckoutBody)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "timeout")
}

func TestCheckoutGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"code":"parameter_below_minimum"}]}`))
	}))
	defer srv.Close()

	InitGateway(config.PayMongoConfig{SecretKey: "sk_test", BaseURL: srv.URL})

	w := postCheckout(checkoutRouter(true), validCheckoutBody)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	// Le payload brut du provider est renvoyé pour le diagnostic
	assert.Contains(t, w.Body.String(), "parameter_below_minimum")
}

func TestCheckoutMalformedGatewayResponse(t *testing.T) {
	// Réponse sans identifiant : rien ne doit être persisté, 502
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"attributes":{"status":"unpaid"}}}`))
	}))
	defer srv.Close()

	InitGateway(config.PayMongoConfig{SecretKey: "sk_test", BaseURL: srv.URL})

	w := postCheckout(checkoutRouter(true), validCheckoutBody)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "inattendue")
}

func TestValidationErrorsFieldNames(t *testing.T) {
	InitGateway(config.PayMongoConfig{SecretKey: "sk_test"})

	w := postCheckout(checkoutRouter(true), `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Les champs sont nommés d'après les tags json, pas les noms Go
	for _, field := range []string{"total_price", "full_name", "email", "address", "city", "postal_code", "country"} {
		assert.Contains(t, resp.Fields, field)
	}
	assert.NotContains(t, resp.Fields, "mobile")
}
