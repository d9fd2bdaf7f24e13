package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows any origin. The marking endpoint carries no cookies, so
// credentials stay disabled and preflights answer 200.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:             []string{headerRequestID, headerTraceID},
		OptionsResponseStatusCode: http.StatusOK,
	})
}
