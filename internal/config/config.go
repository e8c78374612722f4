package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// PayMongoConfig regroupe tout ce dont le client de paiement a besoin.
// Injecté explicitement à la construction du client (pas de lookup global),
// ce qui permet aux tests de substituer une clé et un endpoint factices.
type PayMongoConfig struct {
	SecretKey  string
	BaseURL    string
	SuccessURL string
	FailedURL  string
	Timeout    time.Duration
}

// PayMongo charge la configuration PayMongo depuis l'environnement.
func PayMongo() PayMongoConfig {
	cfg := PayMongoConfig{
		SecretKey:  os.Getenv("PAYMONGO_SECRET_KEY"),
		BaseURL:    os.Getenv("PAYMONGO_BASE_URL"),
		SuccessURL: os.Getenv("PAYMONGO_SUCCESS_URL"),
		FailedURL:  os.Getenv("PAYMONGO_FAILED_URL"),
		Timeout:    20 * time.Second,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.paymongo.com"
	}
	if cfg.SuccessURL == "" {
		cfg.SuccessURL = "http://localhost:3000/payment-success"
	}
	if cfg.FailedURL == "" {
		cfg.FailedURL = "http://localhost:3000/payment-failed"
	}
	return cfg
}
