package routers

import (
	"MallBackend/handlers"
	"MallBackend/middleware"
	"MallBackend/storage"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func SetupRouters(db *gorm.DB, rdb *redis.Client, store storage.Storage) *gin.Engine {
	//建立Gin路由器
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization")
		c.Next()
	})
	err := router.SetTrustedProxies(nil)
	if err != nil {
		return nil
	}

	//本機儲存模式時提供商品圖片靜態資源路徑
	router.Static("/uploads", "./uploads")

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	////無須權限，使用中間件檢查是否登入
	router.Use(middleware.AuthMiddleware(db))
	{
		//查詢商品列表
		router.GET("/api/v1/products", func(context *gin.Context) {
			handlers.GetProductListHandler(context, db, rdb)
		})
		//查詢商品詳細資料
		router.GET("/api/v1/products/:productID", func(context *gin.Context) {
			handlers.GetProductDataHandler(context, db)
		})
		//註冊帳號
		router.POST("/api/v1/register", func(context *gin.Context) {
			handlers.RegisterHandler(context, db)
		})
		//登入帳號
		router.POST("/api/v1/login", func(context *gin.Context) {
			handlers.LoginHandler(context, db)
		})

		////需要登入，使用中間件檢查是否登入
		loginRequired := router.Group("/api/v1/user")
		loginRequired.Use(middleware.CheckLoginMiddleware())
		{
			//查詢使用者資料
			loginRequired.GET("/profile", func(context *gin.Context) {
				handlers.GetUserProfileHandler(context, db)
			})
			//修改使用者資料
			loginRequired.PATCH("/profile/edit", func(context *gin.Context) {
				handlers.UpdateUserProfileHandler(context, db)
			})
			//刪除自己的帳號
			loginRequired.DELETE("/profile", func(context *gin.Context) {
				handlers.DeleteUserProfileHandler(context, db)
			})
			//查詢購物車商品(不存在則建立)
			loginRequired.GET("/carts", func(context *gin.Context) {
				handlers.GetCartHandler(context, db)
			})
			//新增商品至購物車
			loginRequired.POST("/carts/add", func(context *gin.Context) {
				handlers.AddToCartHandler(context, db)
			})
			//變更購物車商品數量
			loginRequired.POST("/carts/update", func(context *gin.Context) {
				handlers.UpdateCartItemQuantityHandler(context, db)
			})
			//刪除購物車商品
			loginRequired.DELETE("/carts/:productID", func(context *gin.Context) {
				handlers.DeleteCartItemHandler(context, db)
			})
			//清空購物車商品
			loginRequired.DELETE("/carts", func(context *gin.Context) {
				handlers.ClearCartHandler(context, db)
			})
			//結帳:送出訂單並清空購物車
			loginRequired.POST("/orders", func(context *gin.Context) {
				handlers.SendOrderHandler(context, db, rdb)
			})
			//查詢訂單列表
			loginRequired.GET("/orders", func(context *gin.Context) {
				handlers.GetOrderListHandler(context, db)
			})
			//查詢訂單詳細資訊
			loginRequired.GET("/orders/:orderID", func(context *gin.Context) {
				handlers.GetOrderDataHandler(context, db)
			})
			//登出
			loginRequired.POST("/logout", func(context *gin.Context) {
				handlers.LogOutHandler(context, db)
			})
		}

		////需要admin身分，使用中間件檢查是否登入及admin權限
		adminRequired := router.Group("/api/v1/admin")
		adminRequired.Use(middleware.CheckLoginMiddleware(), middleware.CheckAdminPermissionMiddleware())
		{
			//查詢使用者列表(可搜尋)
			adminRequired.GET("/users", func(context *gin.Context) {
				handlers.GetUserListHandler(context, db)
			})
			//匯出會員列表為CSV
			adminRequired.GET("/users/export", func(context *gin.Context) {
				handlers.ExportUsersToCSVHandler(context, db)
			})
			//匯出會員列表為Excel
			adminRequired.GET("/users/export/excel", func(context *gin.Context) {
				handlers.ExportUsersToExcelHandler(context, db)
			})
			//以JSON批次匯入會員
			adminRequired.POST("/users/import", func(context *gin.Context) {
				handlers.ImportUsersHandler(context, db)
			})
			//以Excel批次匯入會員
			adminRequired.POST("/users/import/excel", func(context *gin.Context) {
				handlers.ImportUsersFromExcelHandler(context, db)
			})
			//查詢單一使用者資料
			adminRequired.GET("/users/:userID", func(context *gin.Context) {
				handlers.GetUserDataHandler(context, db)
			})
			//修改使用者資料
			adminRequired.PATCH("/users/:userID", func(context *gin.Context) {
				handlers.UpdateUserDataHandler(context, db)
			})
			//刪除使用者
			adminRequired.DELETE("/users/:userID", func(context *gin.Context) {
				handlers.DeleteUserHandler(context, db)
			})
			//上傳商品圖片
			adminRequired.POST("/image", func(context *gin.Context) {
				handlers.UploadImageHandler(context, store)
			})
			//查詢商品列表(後台)
			adminRequired.GET("/products", func(context *gin.Context) {
				handlers.GetAdminProductListHandler(context, db)
			})
			//查詢商品完整資料
			adminRequired.GET("/products/:productID", func(context *gin.Context) {
				handlers.GetProductAllDataHandler(context, db)
			})
			//新增商品(可夾帶多張圖片)
			adminRequired.POST("/products", func(context *gin.Context) {
				handlers.CreateProductHandler(context, db, rdb, store)
			})
			//修改商品
			adminRequired.PATCH("/products/:productID", func(context *gin.Context) {
				handlers.UpdateProductHandler(context, db, rdb)
			})
			//刪除商品
			adminRequired.DELETE("/products/:productID", func(context *gin.Context) {
				handlers.DeleteProductHandler(context, db, rdb)
			})
			//查詢管理員通知
			adminRequired.GET("/notifications", func(context *gin.Context) {
				handlers.GetNotificationListHandler(context, db)
			})
			//標記通知為已讀
			adminRequired.PATCH("/notifications/:notificationID/read", func(context *gin.Context) {
				handlers.MarkNotificationReadHandler(context, db)
			})
		}
	}

	return router
}
