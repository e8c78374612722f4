package main

import (
	"context"
	"log"
	"os"

	"sari_back_end/internal/config"
	"sari_back_end/internal/database"
	"sari_back_end/internal/handlers/payment"
	"sari_back_end/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()

	// La clé PayMongo est vérifiée au checkout (erreur de config dédiée),
	// mais on prévient dès le démarrage si elle manque
	pmCfg := config.PayMongo()
	if pmCfg.SecretKey == "" {
		log.Println("⚠️ PAYMONGO_SECRET_KEY manquante — les checkouts échoueront en 500")
	} else {
		log.Println("✅ PayMongo initialisé")
	}

	database.ConnectDatabases()

	// ✅ Initialiser les prepared statements pour améliorer les performances
	database.InitPreparedStatements()

	// ✅ Pré-chauffer le cache Redis
	warmupRedisCache()

	// Injection de la config PayMongo dans le handler de checkout
	payment.InitGateway(pmCfg)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendOrigin()},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Sari lancé sur le port", port)
	r.Run(":" + port)
}

func frontendOrigin() string {
	origin := os.Getenv("FRONTEND_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	return origin
}

// warmupRedisCache pré-chauffe le cache Redis pour éviter la latence du premier appel
func warmupRedisCache() {
	ctx := context.Background()
	if err := database.Redis.Ping(ctx).Err(); err == nil {
		log.Println("✅ Cache Redis pré-chauffé")
	}
}
