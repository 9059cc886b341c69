package handlers

import (
	"MallBackend/models"
	"MallBackend/storage"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 查詢使用者列表，可用query參數搜尋姓名或帳號
func GetUserListHandler(c *gin.Context, db *gorm.DB) {
	query := c.Query("query")

	var userList []struct {
		Id       uint
		Username string
		Email    string
		Name     string
		Phone    string
		Address  string
		Role     string
	}
	tx := db.Model(&models.User{}).
		Select("Id", "Username", "Email", "Name", "Phone", "Address", "Role")
	if query != "" {
		tx = tx.Where("name LIKE ? OR username LIKE ?", "%"+query+"%", "%"+query+"%")
	}
	err := tx.Find(&userList).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法獲取使用者列表",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "成功獲取使用者列表",
		"userList": userList,
	})
}

// 查詢單一使用者資料
func GetUserDataHandler(c *gin.Context, db *gorm.DB) {
	userID := c.Param("userID")

	var user struct {
		Id       uint
		Username string
		Email    string
		Name     string
		Phone    string
		Address  string
		Role     string
	}
	err := db.
		Model(&models.User{}).
		First(&user, "id = ?", userID).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此使用者",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢使用者資料失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢使用者資料",
		"user":    user,
	})
}

// 管理員修改使用者資料，提供密碼時重新Hash
func UpdateUserDataHandler(c *gin.Context, db *gorm.DB) {
	userID := c.Param("userID")

	var userDataReq struct {
		Username *string `json:"username"`
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		Address  *string `json:"address"`
		Password string  `json:"password"`
	}
	err := c.ShouldBindJSON(&userDataReq)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	var user models.User
	err = db.First(&user, "id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此使用者",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	if userDataReq.Username != nil && *userDataReq.Username != user.Username {
		//改成已存在的帳號要擋下，不能靠資料庫唯一索引噴500
		result, err := IsUserNameExists(db, *userDataReq.Username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "檢查使用者名稱失敗",
				"error":   err.Error(),
			})
			return
		}
		if result {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "使用者名稱已被使用",
			})
			return
		}
		user.Username = *userDataReq.Username
	}
	if userDataReq.Name != nil {
		user.Name = *userDataReq.Name
	}
	if userDataReq.Phone != nil {
		user.Phone = *userDataReq.Phone
	}
	if userDataReq.Address != nil {
		user.Address = *userDataReq.Address
	}
	if userDataReq.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userDataReq.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "無法生成Hashed密碼",
				"error":   err.Error(),
			})
			return
		}
		user.Password = string(hashedPassword)
	}

	err = db.Save(&user).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "修改使用者資料失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功修改使用者資料",
	})
}

// 管理員刪除使用者帳號
func DeleteUserHandler(c *gin.Context, db *gorm.DB) {
	userID := c.Param("userID")

	result := db.Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "刪除使用者失敗",
			"error":   result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "查無此使用者",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功刪除使用者",
	})
}

// 查詢商品完整資料(含全部圖片)
func GetProductAllDataHandler(c *gin.Context, db *gorm.DB) {
	productID := c.Param("productID")

	var product models.Product
	err := db.Preload("Images").First(&product, "id = ?", productID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢商品資料失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢商品資料",
		"product": product,
	})
}

// 查詢全部商品列表(後台用，含圖片)
func GetAdminProductListHandler(c *gin.Context, db *gorm.DB) {
	var products []models.Product
	err := db.Preload("Images").Order("created_at DESC").Find(&products).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法讀取商品列表",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "成功讀取商品列表",
		"products": products,
	})
}

// 上傳單張商品圖片，回傳公開網址
func UploadImageHandler(c *gin.Context, store storage.Storage) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定圖片失敗",
			"error":   err.Error(),
		})
		return
	}

	if !storage.IsValidImageExtensions(file) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "圖片檔案格式錯誤",
		})
		return
	}

	imageURL, err := store.UploadFile(file, storage.MakeObjectName(file))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "上傳圖片失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "成功上傳圖片",
		"imageURL": imageURL,
	})
}

// 新增商品，表單可夾帶多張圖片，第一張作為主圖
func CreateProductHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client, store storage.Storage) {
	var newProduct struct {
		Name        string `form:"name" binding:"required"`
		Price       uint   `form:"price" binding:"required"`
		Stock       *uint  `form:"stock" binding:"required"`
		Description string `form:"description"`
		Category    string `form:"category"`
	}
	err := c.ShouldBind(&newProduct)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "讀取表單失敗",
			"error":   err.Error(),
		})
		return
	}

	//逐張上傳圖片至外部儲存服務
	var images []models.ProductImage
	imageURL := ""
	for _, file := range form.File["images"] {
		if !storage.IsValidImageExtensions(file) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "圖片檔案格式錯誤",
				"file":    file.Filename,
			})
			return
		}
		url, err := store.UploadFile(file, storage.MakeObjectName(file))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "上傳圖片失敗",
				"error":   err.Error(),
			})
			return
		}
		if imageURL == "" {
			imageURL = url
		}
		images = append(images, models.ProductImage{URL: url})
	}

	product := models.Product{
		Name:        newProduct.Name,
		Price:       newProduct.Price,
		Stock:       *newProduct.Stock,
		Description: newProduct.Description,
		Category:    newProduct.Category,
		ImageURL:    imageURL,
		Images:      images,
	}

	err = db.Create(&product).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "新增商品失敗",
			"error":   err.Error(),
		})
		return
	}

	//商品快取非即時也會在下次讀取列表時重建，更新失敗只記錄
	if err, msg := UpdateProductToRedis(c, rdb, &product); err != nil {
		log.Printf("%s: %v\n", msg, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "成功新增商品",
		"product": product,
	})
}

// 修改商品資料，只更新有提供的欄位
func UpdateProductHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	productID := c.Param("productID")

	var productDataReq struct {
		Name        *string `json:"name"`
		Price       *uint   `json:"price"`
		Stock       *uint   `json:"stock"`
		ImageURL    *string `json:"imageURL"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
	}
	err := c.ShouldBindJSON(&productDataReq)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	var product models.Product
	err = db.First(&product, "id = ?", productID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	if productDataReq.Name != nil {
		product.Name = *productDataReq.Name
	}
	if productDataReq.Price != nil {
		product.Price = *productDataReq.Price
	}
	if productDataReq.Stock != nil {
		product.Stock = *productDataReq.Stock
	}
	if productDataReq.ImageURL != nil {
		product.ImageURL = *productDataReq.ImageURL
	}
	if productDataReq.Description != nil {
		product.Description = *productDataReq.Description
	}
	if productDataReq.Category != nil {
		product.Category = *productDataReq.Category
	}

	result := db.Save(&product)
	err = result.Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	if err, msg := UpdateProductToRedis(c, rdb, &product); err != nil {
		log.Printf("%s: %v\n", msg, err)
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "沒有變更資料",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功修改商品資料",
	})
}

// 刪除商品，商品圖片一併刪除
func DeleteProductHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	productID := c.Param("productID")

	var product models.Product

	tx := db.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "開啟資料庫事務失敗",
			"error":   tx.Error.Error(),
		})
		return
	}

	err := tx.First(&product, "id = ?", productID).Error
	if err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查找此商品失敗",
			"error":   err.Error(),
		})
		return
	}

	err = tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "刪除商品圖片失敗",
			"error":   err.Error(),
		})
		return
	}

	err = tx.Delete(&product).Error
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "刪除商品失敗",
			"error":   err.Error(),
		})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "提交事務失敗",
			"error":   err.Error(),
		})
		return
	}

	if err := RemoveProductFromRedis(c, rdb, product.ID); err != nil {
		log.Printf("無法將商品資料從Redis刪除: %v\n", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功刪除商品",
	})
}
