package auth

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const UserIDKey = "userID"

// BearerToken reads the credential from the Authorization header,
// then from the token query parameter browsers use for websockets.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// Middleware rejects requests without a valid token and injects the
// caller's user id for downstream handlers.
func Middleware(verifier contract.AuthVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
			return
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// MustUserID is only valid behind Middleware.
func MustUserID(c *gin.Context) domain.UserID {
	return c.MustGet(UserIDKey).(domain.UserID)
}
