package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

func SetAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	setCookie(c, AccessCookie, accessToken, AccessTokenExpiry)
	setCookie(c, RefreshCookie, refreshToken, RefreshTokenExpiry)
}

func setCookie(c *gin.Context, name, value string, expiry time.Duration) {
	secure := true
	if gin.Mode() != gin.ReleaseMode { // plain http in local dev and tests
		secure = false
	}
	c.SetCookie(name, value, int(expiry.Seconds()), "/", "", secure, true)
}

func ClearAuthCookies(c *gin.Context) {
	clearCookie(c, AccessCookie)
	clearCookie(c, RefreshCookie)
}

func clearCookie(c *gin.Context, name string) {
	secure := true
	if gin.Mode() != gin.ReleaseMode {
		secure = false
	}
	c.SetCookie(name, "", -1, "/", "", secure, true)
}
