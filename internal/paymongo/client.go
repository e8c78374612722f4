package paymongo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"sari_back_end/internal/config"

	"github.com/shopspring/decimal"
)

// Client encapsule l'appel de création de lien de paiement PayMongo.
// La configuration (clé secrète, endpoint, URLs de redirection) est injectée
// à la construction — les tests pointent vers un serveur factice.
type Client struct {
	cfg  config.PayMongoConfig
	http *http.Client
}

func NewClient(cfg config.PayMongoConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Billing est le bloc de facturation transmis à PayMongo.
type Billing struct {
	Name  string
	Email string
	Phone string // optionnel, envoyé null si vide
}

// Link est la réponse utile d'une création de lien : l'URL de checkout hébergée
// chez PayMongo et l'identifiant attribué par le provider.
type Link struct {
	ID          string
	CheckoutURL string
	Status      string
}

// Centavos convertit un montant PHP en centavos (unités mineures) en arithmétique
// décimale exacte. Jamais de float64 ici : 199.99 doit donner 19999, pas 19998.
func Centavos(total decimal.Decimal) int64 {
	return total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// --- Payload de la requête /v1/links ---

type linkRequest struct {
	Data linkRequestData `json:"data"`
}

type linkRequestData struct {
	Attributes linkAttributes `json:"attributes"`
}

type linkAttributes struct {
	Amount             int64          `json:"amount"`
	Description        string         `json:"description"`
	Remarks            string         `json:"remarks"`
	Redirect           linkRedirect   `json:"redirect"`
	Billing            billingPayload `json:"billing"`
	PaymentMethodTypes []string       `json:"payment_method_types"`
}

type linkRedirect struct {
	Success string `json:"success"`
	Failed  string `json:"failed"`
}

type billingPayload struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

// --- Réponse typée de PayMongo ---

type linkResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			CheckoutURL string `json:"checkout_url"`
			Status      string `json:"status"`
		} `json:"attributes"`
	} `json:"data"`
}

// CreateLink crée un lien de paiement GCash pour le montant donné.
// Un seul appel sortant, timeout borné, aucun retry, aucune mutation locale.
func (c *Client) CreateLink(ctx context.Context, total decimal.Decimal, billing Billing) (*Link, error) {
	attrs := linkAttributes{
		Amount:      Centavos(total),
		Description: "Order Payment",
		Remarks:     "GCash only",
		Redirect: linkRedirect{
			Success: c.cfg.SuccessURL,
			Failed:  c.cfg.FailedURL,
		},
		Billing: billingPayload{
			Name:  billing.Name,
			Email: billing.Email,
		},
		PaymentMethodTypes: []string{"gcash"},
	}
	if billing.Phone != "" {
		attrs.Billing.Phone = &billing.Phone
	}

	body, err := json.Marshal(linkRequest{Data: linkRequestData{Attributes: attrs}})
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/links", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	// Basic auth PayMongo : base64("<clé secrète>:"), mot de passe vide
	req.SetBasicAuth(c.cfg.SecretKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &Error{Kind: KindTimeout, Err: err}
		}
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}

	// PayMongo peut renvoyer du non-JSON (pages d'erreur HTML) : cas distinct
	var parsed linkResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &Error{Kind: KindMalformed, StatusCode: resp.StatusCode, Raw: raw, Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &Error{Kind: KindGateway, StatusCode: resp.StatusCode, Raw: raw}
	}

	link := &Link{
		ID:          parsed.Data.ID,
		CheckoutURL: parsed.Data.Attributes.CheckoutURL,
		Status:      parsed.Data.Attributes.Status,
	}

	// Sans checkout_url ET identifiant provider, rien ne doit être persisté
	if link.CheckoutURL == "" || link.ID == "" {
		return nil, &Error{Kind: KindMalformed, StatusCode: resp.StatusCode, Raw: raw}
	}

	return link, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
