package paymongo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sari_back_end/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.PayMongoConfig {
	return config.PayMongoConfig{
		SecretKey:  "sk_test_123",
		BaseURL:    baseURL,
		SuccessURL: "http://localhost:3000/payment-success",
		FailedURL:  "http://localhost:3000/payment-failed",
		Timeout:    2 * time.Second,
	}
}

func TestCentavos(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"199.99", 19999},
		{"0.01", 1},
		{"1", 100},
		{"1234.56", 123456},
		{"0.005", 1},
		{"99999999.99", 9999999999},
	}

	for _, c := range cases {
		d, err := decimal.NewFromString(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, Centavos(d), "montant %s", c.in)
	}
}

func TestCreateLinkSuccess(t *testing.T) {
	var gotAuth string
	var gotBody linkRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/links", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"link_abc123","attributes":{"checkout_url":"https://pm.link/abc123","status":"unpaid"}}}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	total, _ := decimal.NewFromString("199.99")
	link, err := client.CreateLink(context.Background(), total, Billing{
		Name:  "Juan Dela Cruz",
		Email: "juan@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "link_abc123", link.ID)
	assert.Equal(t, "https://pm.link/abc123", link.CheckoutURL)
	assert.Equal(t, "unpaid", link.Status)

	// Auth : base64("<clé>:") — mot de passe vide
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("sk_test_123:"))
	assert.Equal(t, wantAuth, gotAuth)

	// Montant en centavos, exact
	attrs := gotBody.Data.Attributes
	assert.Equal(t, int64(19999), attrs.Amount)
	assert.Equal(t, "Order Payment", attrs.Description)
	assert.Equal(t, []string{"gcash"}, attrs.PaymentMethodTypes)
	assert.Equal(t, "http://localhost:3000/payment-success", attrs.Redirect.Success)
	assert.Nil(t, attrs.Billing.Phone)
}

func TestCreateLinkOptionalPhone(t *testing.T) {
	var gotBody linkRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"data":{"id":"link_x","attributes":{"checkout_url":"https://pm.link/x","status":"unpaid"}}}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.CreateLink(context.Background(), decimal.NewFromInt(50), Billing{
		Name:  "Maria",
		Email: "maria@example.com",
		Phone: "+639171234567",
	})

	require.NoError(t, err)
	require.NotNil(t, gotBody.Data.Attributes.Billing.Phone)
	assert.Equal(t, "+639171234567", *gotBody.Data.Attributes.Billing.Phone)
}

func TestCreateLinkNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.CreateLink(context.Background(), decimal.NewFromInt(10), Billing{Name: "x", Email: "x@y.z"})

	var pmErr *Error
	require.ErrorAs(t, err, &pmErr)
	assert.Equal(t, KindMalformed, pmErr.Kind)
	assert.Contains(t, string(pmErr.Raw), "maintenance")
}

func TestCreateLinkGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"code":"invalid_api_key"}]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.CreateLink(context.Background(), decimal.NewFromInt(10), Billing{Name: "x", Email: "x@y.z"})

	var pmErr *Error
	require.ErrorAs(t, err, &pmErr)
	assert.Equal(t, KindGateway, pmErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, pmErr.StatusCode)
	assert.Contains(t, string(pmErr.Raw), "invalid_api_key")
}

func TestCreateLinkMissingFields(t *testing.T) {
	// checkout_url présent mais pas d'identifiant : rien ne doit être persistable
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"attributes":{"checkout_url":"https://pm.link/x","status":"unpaid"}}}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	link, err := client.CreateLink(context.Background(), decimal.NewFromInt(10), Billing{Name: "x", Email: "x@y.z"})

	assert.Nil(t, link)
	var pmErr *Error
	require.ErrorAs(t, err, &pmErr)
	assert.Equal(t, KindMalformed, pmErr.Kind)
}

func TestCreateLinkTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg)

	_, err := client.CreateLink(context.Background(), decimal.NewFromInt(10), Billing{Name: "x", Email: "x@y.z"})

	var pmErr *Error
	require.ErrorAs(t, err, &pmErr)
	assert.Equal(t, KindTimeout, pmErr.Kind)
}

func TestCreateLinkTransportError(t *testing.T) {
	// Serveur fermé immédiatement : échec de connexion
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.CreateLink(context.Background(), decimal.NewFromInt(10), Billing{Name: "x", Email: "x@y.z"})

	var pmErr *Error
	require.ErrorAs(t, err, &pmErr)
	assert.Equal(t, KindTransport, pmErr.Kind)
}
