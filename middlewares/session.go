package middlewares

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/ViBaTo/panel-control-tm/session"
	"github.com/ViBaTo/panel-control-tm/utils"
	"github.com/gin-gonic/gin"
)

const (
	principalKey = "principal"
	tokenKey     = "access_token"

	LoginPath = "/login"
)

// AccessToken returns the bearer token or, failing that, the access cookie.
func AccessToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(utils.AccessCookie); err == nil {
		return cookie
	}
	return ""
}

// RequireSession lets requests with a live session through. Browsers asking
// for HTML are redirected to the login page with the original path in from;
// API clients get a 401 carrying the same information.
func RequireSession(resolver session.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := AccessToken(c)
		var principal *models.Principal
		if token != "" {
			p, err := resolver.Resolve(c.Request.Context(), token)
			if err == nil {
				principal = p
			}
		}

		if principal == nil {
			from := c.Request.URL.RequestURI()
			if strings.Contains(c.GetHeader("Accept"), "text/html") {
				c.Redirect(http.StatusFound, LoginPath+"?from="+url.QueryEscape(from))
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Sesión no válida o caducada",
				"redirect": LoginPath,
				"from":     from,
			})
			return
		}

		c.Set(principalKey, principal)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by RequireSession.
func PrincipalFrom(c *gin.Context) *models.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*models.Principal)
	return p
}

// TokenFrom returns the access token RequireSession accepted.
func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}
