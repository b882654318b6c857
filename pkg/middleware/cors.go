package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the web client origin. Local dev servers are always
// allowed outside production.
func CORSMiddleware(clientURL string, production bool) gin.HandlerFunc {
	origins := []string{strings.TrimRight(clientURL, "/")}
	if !production {
		origins = append(origins, "http://localhost:3000", "http://localhost:5173")
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", TraceIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", TraceIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}
