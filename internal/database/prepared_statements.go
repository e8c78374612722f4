package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes fréquentes
	stmtGetUserByEmail       *gocql.Query
	stmtGetUserByID          *gocql.Query
	stmtGetCartLines         *gocql.Query
	stmtGetPaymentByProvider *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		usersSession, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (users): %v", err)
			return
		}

		// Login : récupérer user_id par email
		stmtGetUserByEmail = usersSession.Query("SELECT user_id FROM users_by_email WHERE email = ?")

		// Profil / middleware : récupérer un utilisateur par ID
		stmtGetUserByID = usersSession.Query("SELECT email, password, name, created_at FROM users WHERE user_id = ?")

		// Webhook : drainer le panier d'un utilisateur
		stmtGetCartLines = usersSession.Query("SELECT product_id, qty FROM cart_lines WHERE user_id = ?")

		ordersSession, err := GetOrdersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (orders): %v", err)
			return
		}

		// Webhook : retrouver un paiement par identifiant PayMongo
		stmtGetPaymentByProvider = ordersSession.Query("SELECT user_id, payment_id FROM payments_by_provider WHERE paymongo_payment_id = ?")

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetUserByEmail() *gocql.Query {
	return stmtGetUserByEmail
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}

func GetPreparedGetCartLines() *gocql.Query {
	return stmtGetCartLines
}

func GetPreparedGetPaymentByProvider() *gocql.Query {
	return stmtGetPaymentByProvider
}
