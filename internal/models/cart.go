package models

// CartLine est une ligne de panier persistée : intention d'achat non confirmée.
// Créée par les endpoints panier, consommée puis supprimée par le webhook
// PayMongo lors de la confirmation du paiement.
type CartLine struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// CartLineView enrichit une ligne avec les infos produit courantes pour l'affichage.
type CartLineView struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	ImageURL  string  `json:"image_url,omitempty"`
}
