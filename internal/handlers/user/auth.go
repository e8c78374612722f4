package user

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"sari_back_end/internal/database"
	"sari_back_end/internal/models"
	"sari_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/golang-jwt/jwt/v5"
)

// ================== AUTH LOCALE ==================

func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// email déjà pris ?
	var existingID gocql.UUID
	if err := session.Query("SELECT user_id FROM users_by_email WHERE email = ?", input.Email).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	userID := gocql.TimeUUID()
	now := time.Now()

	if err := session.Query(`INSERT INTO users (user_id, email, password, name, created_at)
		VALUES (?, ?, ?, ?, ?)`, userID, input.Email, hashedPassword, input.Name, now).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}
	if err := session.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?)",
		input.Email, userID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	user := models.User{ID: userID.String(), Email: input.Email, Name: input.Name, CreatedAt: now}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("✅ Utilisateur enregistré : %s", input.Email)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User Registered Succesfully",
		"token":   token,
		"userId":  user.ID,
		"email":   user.Email,
		"name":    user.Name,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var userID gocql.UUID
	lookup := database.GetPreparedGetUserByEmail()
	if lookup != nil {
		err = lookup.Bind(input.Email).Scan(&userID)
	} else {
		err = session.Query("SELECT user_id FROM users_by_email WHERE email = ?", input.Email).Scan(&userID)
	}
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	var email, password, name string
	var createdAt time.Time
	if err := session.Query("SELECT email, password, name, created_at FROM users WHERE user_id = ?",
		userID).Scan(&email, &password, &name, &createdAt); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	user := models.User{ID: userID.String(), Email: email, Name: name, CreatedAt: createdAt}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("✅ Connexion réussie : %s", email)

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
	})
}

// Logout blackliste le token présenté dans Redis jusqu'à son expiration.
// Le middleware AuthRequired refuse ensuite ce token.
func Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token manquant"})
		return
	}
	tokenString := parts[1]

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super_secret"
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token invalide"})
		return
	}

	// TTL = temps restant avant expiration du token
	ttl := 24 * time.Hour
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if exp, ok := claims["exp"].(float64); ok {
			if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
				ttl = remaining
			}
		}
	}

	if err := database.Redis.Set(context.Background(), "jwt_blacklist:"+tokenString, "1", ttl).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur déconnexion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// Profile renvoie l'utilisateur courant (claims du JWT + base)
func Profile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	uid, err := gocql.ParseUUID(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var email, password, name string
	var createdAt time.Time
	lookup := database.GetPreparedGetUserByID()
	if lookup != nil {
		err = lookup.Bind(uid).Scan(&email, &password, &name, &createdAt)
	} else {
		err = session.Query("SELECT email, password, name, created_at FROM users WHERE user_id = ?",
			uid).Scan(&email, &password, &name, &createdAt)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, models.User{ID: userID, Email: email, Name: name, CreatedAt: createdAt})
}
