package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"findash/internal/api"
	"findash/internal/service/workspace"
)

// UserCookie 用户标识 cookie
const UserCookie = "findash_uid"

const userCookieMaxAge = 365 * 24 * 3600

// RequestLogger 请求日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Str("user", c.GetString(api.UserIDKey)).
			Int("size", c.Writer.Size()).
			Msg("request")
	}
}

// Recovery panic 转为 500 JSON 响应
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal server error",
		})
	})
}

// CORS 跨域中间件；允许全部来源时不携带凭据
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", api.UserIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// Identity 识别用户：X-User-ID 请求头 > findash_uid cookie > 新签发的 uuid
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(api.UserIDHeader); id != "" {
			if !workspace.ValidUserID(id) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + api.UserIDHeader})
				return
			}
			c.Set(api.UserIDKey, id)
			c.Next()
			return
		}

		id, err := c.Cookie(UserCookie)
		if err != nil || !workspace.ValidUserID(id) {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(UserCookie, id, userCookieMaxAge, "/", "", false, true)
		}
		c.Set(api.UserIDKey, id)
		c.Next()
	}
}
