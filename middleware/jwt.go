package middleware

import (
	"fmt"
	"strings"
	"time"

	"learnhub/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateJWT generates a JWT token for the user
func GenerateJWT(secret string, userID uint, name, role, email string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"iat":    time.Now().Unix(),                     // issued at
		"exp":    time.Now().Add(24 * time.Hour).Unix(), // expiry 24h
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// JWTMiddleware checks for a valid bearer token and stores the caller in Locals
func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperrors.Unauthorized("Missing or invalid Authorization header")
		}

		// The token should be prefixed with "Bearer "
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return apperrors.Unauthorized("Invalid Authorization header format")
		}
		tokenString := authHeader[len("Bearer "):]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return apperrors.Unauthorized("Invalid or expired token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return apperrors.Unauthorized("Invalid token payload")
		}
		// JWT numbers decode as float64
		userID, ok := claims["userId"].(float64)
		if !ok || userID <= 0 {
			return apperrors.Unauthorized("Invalid token payload")
		}

		c.Locals("userId", uint(userID))
		if role, ok := claims["role"].(string); ok {
			c.Locals("role", role)
		}
		return c.Next()
	}
}

// UserID returns the caller stored by JWTMiddleware
func UserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok || userID == 0 {
		return 0, apperrors.Unauthorized("Unauthorized: User ID not found")
	}
	return userID, nil
}
