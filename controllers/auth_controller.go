package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	config "github.com/phillip/event-marketplace-go/config"
	models "github.com/phillip/event-marketplace-go/models"
)

func issueToken(cfg *config.Config, userID primitive.ObjectID, role, typ string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID.Hex(),
		"role": role,
		"typ":  typ,
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

func tokenPair(cfg *config.Config, user *models.User) (gin.H, error) {
	access, err := issueToken(cfg, user.ID, user.Role, "access", time.Duration(cfg.JWTExpireMin)*time.Minute)
	if err != nil {
		return nil, err
	}
	refresh, err := issueToken(cfg, user.ID, user.Role, "refresh", time.Duration(cfg.RefreshExpireHr)*time.Hour)
	if err != nil {
		return nil, err
	}
	return gin.H{"access_token": access, "refresh_token": refresh, "user": user}, nil
}

// ---------------- REGISTER ----------------
func Register(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name     string `json:"name" binding:"required"`
			Email    string `json:"email" binding:"required,email"`
			Phone    string `json:"phone"`
			Password string `json:"password" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}

		now := time.Now()
		user := models.User{
			ID:           primitive.NewObjectID(),
			Name:         input.Name,
			Email:        input.Email,
			Phone:        input.Phone,
			PasswordHash: string(hash),
			Role:         "user",
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		col := cfg.DB().Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := col.InsertOne(ctx, user); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
			return
		}

		resp, err := tokenPair(cfg, &user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// ---------------- LOGIN ----------------
func Login(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		err := cfg.DB().Collection("users").FindOne(ctx, bson.M{"email": input.Email}).Decode(&user)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		resp, err := tokenPair(cfg, &user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ---------------- REFRESH ----------------
func RefreshToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(input.RefreshToken, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		if typ, _ := claims["typ"].(string); typ != "refresh" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not a refresh token"})
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := primitive.ObjectIDFromHex(sub)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}
		role, _ := claims["role"].(string)

		access, err := issueToken(cfg, userID, role, "access", time.Duration(cfg.JWTExpireMin)*time.Minute)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": access})
	}
}
