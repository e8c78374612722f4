package utils

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"sari_back_end/internal/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// RenderReceiptPDF charge la page reçu du frontend côté serveur et l'imprime
// en PDF. La page React lit l'identifiant de paiement en query param.
func RenderReceiptPDF(order models.Order) ([]byte, error) {
	base := os.Getenv("FRONTEND_RECEIPT_URL")
	if base == "" {
		base = "http://localhost:3000/receipt"
	}

	q := url.Values{}
	q.Set("id", order.Payment.ID.String())

	fullURL := fmt.Sprintf("%s?%s", base, q.Encode())

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	// timeout pour éviter de bloquer la goroutine d'envoi de reçu
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(fullURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("erreur rendu PDF: %v", err)
	}

	return pdf, nil
}
