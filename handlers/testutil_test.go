package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"MallBackend/handlers"
	"MallBackend/models"
	"MallBackend/storage"
)

// 每個測試使用獨立的in-memory資料庫，避免測試間互相影響
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database: " + err.Error())
	}

	err = testDB.AutoMigrate(
		&models.User{},
		&models.LoginToken{},
		&models.Product{},
		&models.ProductImage{},
		&models.Order{},
		&models.OrderItem{},
		&models.Cart{},
		&models.CartItem{},
		&models.Notification{},
	)
	if err != nil {
		panic("failed to auto-migrate models: " + err.Error())
	}

	return testDB
}

// 指向不存在的Redis，測試商品快取失效時的資料庫fallback路徑
func setupTestRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:1",
	})
}

// 模擬AuthMiddleware驗證完Token後寫入的身分資訊
func injectSession(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != 0 {
			c.Set("UserID", userID)
			c.Set("Role", role)
		}
		c.Next()
	}
}

func setupTestRouter(t *testing.T, db *gorm.DB, userID uint, role string) (*gin.Engine, *redis.Client) {
	gin.SetMode(gin.TestMode)

	rdb := setupTestRedis()
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		panic("failed to create test storage: " + err.Error())
	}

	r := gin.New()
	r.Use(gin.Recovery(), injectSession(userID, role))

	api := r.Group("/api/v1")
	{
		api.POST("/register", func(c *gin.Context) {
			handlers.RegisterHandler(c, db)
		})
		api.GET("/products", func(c *gin.Context) {
			handlers.GetProductListHandler(c, db, rdb)
		})
		api.GET("/products/:productID", func(c *gin.Context) {
			handlers.GetProductDataHandler(c, db)
		})

		user := api.Group("/user")
		{
			user.GET("/profile", func(c *gin.Context) {
				handlers.GetUserProfileHandler(c, db)
			})
			user.PATCH("/profile/edit", func(c *gin.Context) {
				handlers.UpdateUserProfileHandler(c, db)
			})
			user.GET("/carts", func(c *gin.Context) {
				handlers.GetCartHandler(c, db)
			})
			user.POST("/carts/add", func(c *gin.Context) {
				handlers.AddToCartHandler(c, db)
			})
			user.POST("/carts/update", func(c *gin.Context) {
				handlers.UpdateCartItemQuantityHandler(c, db)
			})
			user.DELETE("/carts/:productID", func(c *gin.Context) {
				handlers.DeleteCartItemHandler(c, db)
			})
			user.DELETE("/carts", func(c *gin.Context) {
				handlers.ClearCartHandler(c, db)
			})
			user.POST("/orders", func(c *gin.Context) {
				handlers.SendOrderHandler(c, db, rdb)
			})
			user.GET("/orders", func(c *gin.Context) {
				handlers.GetOrderListHandler(c, db)
			})
			user.GET("/orders/:orderID", func(c *gin.Context) {
				handlers.GetOrderDataHandler(c, db)
			})
		}

		admin := api.Group("/admin")
		{
			admin.GET("/users", func(c *gin.Context) {
				handlers.GetUserListHandler(c, db)
			})
			admin.GET("/users/export", func(c *gin.Context) {
				handlers.ExportUsersToCSVHandler(c, db)
			})
			admin.GET("/users/export/excel", func(c *gin.Context) {
				handlers.ExportUsersToExcelHandler(c, db)
			})
			admin.POST("/users/import", func(c *gin.Context) {
				handlers.ImportUsersHandler(c, db)
			})
			admin.POST("/users/import/excel", func(c *gin.Context) {
				handlers.ImportUsersFromExcelHandler(c, db)
			})
			admin.GET("/users/:userID", func(c *gin.Context) {
				handlers.GetUserDataHandler(c, db)
			})
			admin.PATCH("/users/:userID", func(c *gin.Context) {
				handlers.UpdateUserDataHandler(c, db)
			})
			admin.DELETE("/users/:userID", func(c *gin.Context) {
				handlers.DeleteUserHandler(c, db)
			})
			admin.POST("/image", func(c *gin.Context) {
				handlers.UploadImageHandler(c, store)
			})
			admin.GET("/products", func(c *gin.Context) {
				handlers.GetAdminProductListHandler(c, db)
			})
			admin.GET("/products/:productID", func(c *gin.Context) {
				handlers.GetProductAllDataHandler(c, db)
			})
			admin.POST("/products", func(c *gin.Context) {
				handlers.CreateProductHandler(c, db, rdb, store)
			})
			admin.PATCH("/products/:productID", func(c *gin.Context) {
				handlers.UpdateProductHandler(c, db, rdb)
			})
			admin.DELETE("/products/:productID", func(c *gin.Context) {
				handlers.DeleteProductHandler(c, db, rdb)
			})
			admin.GET("/notifications", func(c *gin.Context) {
				handlers.GetNotificationListHandler(c, db)
			})
			admin.PATCH("/notifications/:notificationID/read", func(c *gin.Context) {
				handlers.MarkNotificationReadHandler(c, db)
			})
		}
	}

	return r, rdb
}

func itoa(id uint) string {
	return strconv.Itoa(int(id))
}

func newJSONRequest(method, path string, body interface{}) *http.Request {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}
