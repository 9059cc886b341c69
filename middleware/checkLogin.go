package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 會員路由的登入門檻，AuthMiddleware沒寫入UserID就擋下
func CheckLoginMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("UserID"); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "尚未登入",
			})
			return
		}

		c.Next()
	}
}
