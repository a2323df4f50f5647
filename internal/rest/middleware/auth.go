package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/recibohq/recibo/internal/config"
	ierr "github.com/recibohq/recibo/internal/errors"
	"github.com/recibohq/recibo/internal/logger"
	"github.com/recibohq/recibo/internal/types"
)

// Claims are the JWT claims issued to end users. The workspace id
// scopes every billing operation downstream.
type Claims struct {
	WorkspaceID string `json:"workspace_id"`
	jwt.RegisteredClaims
}

// AuthenticateMiddleware authenticates requests with a bearer JWT and
// sets the user and workspace ids in the request context.
func AuthenticateMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := parseToken(tokenString, cfg.Auth.Secret)
		if err != nil {
			logger.Debugw("rejected bearer token", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		ctx = types.SetUserID(ctx, claims.Subject)
		ctx = types.SetWorkspaceID(ctx, claims.WorkspaceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func parseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHintf("token signed with %v", token.Header["alg"]).
				Mark(ierr.ErrAuthentication)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.Subject == "" || claims.WorkspaceID == "" {
		return nil, ierr.NewError("invalid token claims").
			WithHint("token must carry a subject and workspace id").
			Mark(ierr.ErrAuthentication)
	}
	return claims, nil
}
