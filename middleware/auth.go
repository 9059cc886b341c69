package middleware

import (
	"MallBackend/jwt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const bearerPrefix = "Bearer "

// 解析Authorization標頭並驗證Session Token，
// 驗證成功才寫入身分資訊，失敗一律當作未登入繼續往下走
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.Header("Authorization", "")
			c.Next()
			return
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		userID, role, err := jwt.VerifyToken(&token, db)
		if err != nil {
			log.Printf("無法驗證Token: %v\n", err)
			c.Header("Authorization", "")
			c.Next()
			return
		}

		c.Header("Authorization", authHeader)
		c.Set("Token", token)
		c.Set("UserID", userID)
		c.Set("Role", role)
		c.Next()
	}
}
