package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/taskflow-auth/pkg/helpers"
	"github.com/oksasatya/taskflow-auth/pkg/response"
)

// AccessTokenParser is satisfied by *helpers.JWTManager.
type AccessTokenParser interface {
	ParseAccessToken(token string) (userID string, err error)
}

// Auth requires a valid access token from the access_token cookie or an
// Authorization: Bearer header, and sets userID in the Gin context.
func Auth(parser AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(helpers.AccessCookie)
		}
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", response.ErrorBody{Code: "auth.unauthorized"})
			return
		}
		uid, err := parser.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", response.ErrorBody{Code: "auth.unauthorized"})
			return
		}
		c.Set("userID", uid)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
