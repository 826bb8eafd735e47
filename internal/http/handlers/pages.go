package handlers

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed pages/*.html
var pageFS embed.FS

// Pages maps public paths to the embedded HTML served there.
var Pages = map[string]string{
	"/":           "pages/index.html",
	"/app":        "pages/app.html",
	"/onboarding": "pages/onboarding.html",
	"/register":   "pages/register.html",
	"/login":      "pages/login.html",
}

// Page serves the embedded HTML document at name.
func Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := pageFS.ReadFile(name)
		if err != nil {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "page not found")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", b)
	}
}
