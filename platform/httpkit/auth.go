package httpkit

import (
	"errors"
	"net/http"
	"strings"

	"koppara_backend/platform/config"
	"koppara_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleAdmin       = "admin"
	RoleDistributor = "distributor"

	tokenTypeAccess = "access"
)

var errInvalidToken = errors.New("invalid token")

// AccessClaims is the payload of an access token. Subject is the user ID.
type AccessClaims struct {
	jwt.RegisteredClaims
	Type  string   `json:"type"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles"`
}

// AuthRequired admits requests carrying a valid HMAC-signed access token
// in the Authorization header.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing token")
			return
		}
		id, err := parseAccessToken(raw, []byte(cfg.GetJWTAccessSecret()))
		if err != nil {
			abortUnauthorized(c, errInvalidToken.Error())
			return
		}
		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(logger.ContextWithActor(c.Request.Context(), id.Actor()))
		c.Next()
	}
}

// RequireRole must run after AuthRequired.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := GetIdentity(c); id == nil || !id.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
			return
		}
		c.Next()
	}
}

func parseAccessToken(raw string, secret []byte) (*Identity, error) {
	var claims AccessClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeAccess {
		return nil, errInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errInvalidToken
	}
	return &Identity{
		userID: userID,
		email:  strings.TrimSpace(claims.Email),
		roles:  claims.Roles,
	}, nil
}

func bearerToken(header string) (string, bool) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	return raw, ok && raw != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}
