package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/admin"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
)

// OperatorLogin validates an operator name + token against
// operator_accounts and issues an HS256 session JWT.
func OperatorLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name  string `json:"name" binding:"required"`
			Token string `json:"token" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No database"})
			return
		}

		name := strings.TrimSpace(req.Name)
		acc, err := admin.ValidateOperator(db, name, strings.TrimSpace(req.Token))
		if err != nil {
			log.Printf("[ADMIN] Login failed for %s: %v", name, err)
			admin.LogOperatorAction(db, name, c.ClientIP(), "/api/v1/admin/login", "login", false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		expiresAt := time.Now().Add(time.Duration(cfg.SessionTimeoutMin) * time.Minute)
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"operator": acc.Name,
			"exp":      expiresAt.Unix(),
		})
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			log.Printf("[ADMIN] Failed to sign session token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		admin.LogOperatorAction(db, name, c.ClientIP(), "/api/v1/admin/login", "login", true)
		c.JSON(http.StatusOK, gin.H{"token": signed, "expires_at": expiresAt.Unix()})
	}
}

// OperatorAuthRequired validates the Bearer JWT on admin routes and
// stores the operator name in the context.
func OperatorAuthRequired(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		operator, _ := claims["operator"].(string)
		if operator == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("operator", operator)
		c.Next()
	}
}

// GetOperatorAudit returns recent operator audit rows.
func GetOperatorAudit(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No database"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		logs, err := admin.GetOperatorAuditLogs(db, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit logs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
	}
}

// Shutdown triggers the graceful stop. The response flushes before the
// stop function runs.
func Shutdown(db *sqlx.DB, stop func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := c.GetString("operator")
		log.Printf("[ADMIN] Shutdown requested by %s", operator)
		admin.LogOperatorAction(db, operator, c.ClientIP(), "/api/v1/admin/shutdown", "shutdown", true)
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Shutting down"})

		go func() {
			time.Sleep(200 * time.Millisecond)
			stop()
		}()
	}
}
