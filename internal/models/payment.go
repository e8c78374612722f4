package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Payment identifie une tentative de checkout. Créé en état "pending" par le
// checkout GCash, passé à is_paid=true UNIQUEMENT par le webhook PayMongo
// (au plus une fois, garanti par un write conditionnel), jamais supprimé.
type Payment struct {
	ID                gocql.UUID `json:"id"`
	UserID            string     `json:"user_id"`
	TotalPrice        float64    `json:"total_price"`
	IsPaid            bool       `json:"is_paid"`
	PaymongoPaymentID string     `json:"paymongo_payment_id"`
	PaymongoStatus    string     `json:"paymongo_status"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ShippingAddress accompagne un Payment (créée juste après lui, même cycle de vie).
type ShippingAddress struct {
	PaymentID  gocql.UUID `json:"payment_id"`
	FullName   string     `json:"full_name"`
	Address    string     `json:"address"`
	City       string     `json:"city"`
	PostalCode string     `json:"postal_code"`
	Country    string     `json:"country"`
}

// OrderItem est la trace immuable d'une ligne achetée. Le prix est celui du
// catalogue AU MOMENT de la confirmation, pas celui de l'ajout au panier.
type OrderItem struct {
	PaymentID   gocql.UUID `json:"payment_id"`
	ItemID      gocql.UUID `json:"item_id"`
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	Qty         int        `json:"qty"`
	Price       float64    `json:"price"`
}

// Order est la vue assemblée renvoyée par l'historique des commandes :
// paiement + articles + adresse de livraison.
type Order struct {
	Payment  Payment          `json:"payment"`
	Items    []OrderItem      `json:"items"`
	Shipping *ShippingAddress `json:"shipping,omitempty"`
}
