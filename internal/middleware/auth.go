package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"ledgerbook/internal/logger"
)

// OwnerIDKey is the Gin context key holding the authenticated owner.
const OwnerIDKey = "ownerID"

// JWTClaims represents the claims in the JWT. Tokens are minted by the
// identity provider; the ledger only needs the owner.
type JWTClaims struct {
	OwnerID string `json:"owner_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for ownerID. The API never issues
// tokens itself; this backs the devtoken command and tests.
func GenerateToken(ownerID string, secret []byte, issuer string, ttl time.Duration) (string, error) {
	if ownerID == "" {
		return "", errors.New("owner id is required")
	}
	now := time.Now()
	claims := &JWTClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   ownerID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates tokenString and returns its claims.
func ParseToken(tokenString string, secret []byte, issuer string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.OwnerID == "" {
		return nil, errors.New("token carries no owner")
	}
	return claims, nil
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		gin.H{"error": gin.H{"code": "UNAUTHORIZED", "message": message}})
}

// AuthMiddleware verifies the bearer token and sets the owner in the context
func AuthMiddleware(secret []byte, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := ParseToken(parts[1], secret, issuer)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(OwnerIDKey, claims.OwnerID)
		ctx := c.Request.Context()
		log := logger.FromContext(ctx).With("owner_id", claims.OwnerID)
		c.Request = c.Request.WithContext(logger.WithContext(ctx, log))
		c.Next()
	}
}
