package middleware

import (
	"strings"
	"time"

	"aqi-monitor-api/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsHeaders = []string{"Origin", "Content-Type", "Authorization"}
)

// allowedOrigins splits a comma separated origin list. An empty list or a
// lone "*" allows every origin.
func allowedOrigins(raw string) (origins []string, allowAll bool) {
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			return nil, true
		}
		origins = append(origins, o)
	}
	return origins, len(origins) == 0
}

// SetupCORS lets the public dashboard call the API from the browser.
// Credentials are only allowed for an explicit origin list.
func SetupCORS(cfg config.CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  corsMethods,
		AllowHeaders:  corsHeaders,
		ExposeHeaders: []string{"Content-Length", "X-Next-Cursor"},
		MaxAge:        12 * time.Hour,
	}

	origins, allowAll := allowedOrigins(cfg.AllowedOrigins)
	if allowAll {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return cors.New(c)
}
