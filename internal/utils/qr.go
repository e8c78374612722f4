package utils

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"
)

// CheckoutQR encode le lien de paiement GCash en QR base64 prêt à mettre dans
// <img src="..."> — scannable directement depuis un écran de caisse.
func CheckoutQR(checkoutURL string) (string, error) {
	png, err := qrcode.Encode(checkoutURL, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
