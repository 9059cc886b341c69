package handlers

import (
	"MallBackend/models"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 查詢會員購物車，不存在則建立空購物車(可重複呼叫)
func getOrCreateCart(db *gorm.DB, userID uint) (models.Cart, error) {
	var cart models.Cart
	err := db.
		Where(models.Cart{UserID: userID}).
		FirstOrCreate(&cart).
		Error
	return cart, err
}

func AddToCartHandler(c *gin.Context, db *gorm.DB) {
	var cartItemReq struct {
		ProductID uint `json:"productID" binding:"required"`
		Quantity  uint `json:"quantity"`
	}
	err := c.ShouldBindJSON(&cartItemReq)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	//未指定數量預設為1
	if cartItemReq.Quantity == 0 {
		cartItemReq.Quantity = 1
	}

	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	//確認商品存在
	var product models.Product
	err = db.First(&product, "id = ?", cartItemReq.ProductID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "查無此商品",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢商品錯誤",
			"error":   err.Error(),
		})
		return
	}

	cart, err := getOrCreateCart(db, userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢購物車失敗",
			"error":   err.Error(),
		})
		return
	}

	//新增商品至購物車
	var cartItem models.CartItem
	err = db.
		Where("product_id = ? AND cart_id = ?", cartItemReq.ProductID, cart.ID).
		First(&cartItem).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			//購物車沒有相同物品，新增此物品至購物車
			err := db.Create(&models.CartItem{
				CartID:    cart.ID,
				ProductID: cartItemReq.ProductID,
				Quantity:  cartItemReq.Quantity,
			}).Error
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"message": "新增物品至購物車失敗",
					"error":   err.Error(),
				})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"message":   "成功新增物品至購物車",
				"productID": cartItemReq.ProductID,
				"Quantity":  cartItemReq.Quantity,
			})
			return
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "查詢購物車商品錯誤",
				"error":   err.Error(),
			})
			return
		}
	}

	//購物車有相同物品，累加商品數量
	cartItem.Quantity += cartItemReq.Quantity
	err = db.Updates(&cartItem).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "更新購物車物品數量失敗",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "成功更新購物車物品數量",
		"productID": cartItem.ProductID,
		"Quantity":  cartItem.Quantity,
	})
	return
}

// 變更購物車商品數量
func UpdateCartItemQuantityHandler(c *gin.Context, db *gorm.DB) {
	var cartItemReq struct {
		ProductID uint `json:"productID" binding:"required"`
		Quantity  uint `json:"quantity"`
	}
	err := c.ShouldBindJSON(&cartItemReq)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	if cartItemReq.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "商品數量不得小於1",
		})
		return
	}

	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	//查詢購物車ID
	var cart models.Cart
	err = db.Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "查無此購物車",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查詢購物車失敗",
		})
		return
	}

	//查詢購物車商品
	var cartItem models.CartItem
	err = db.
		Where("product_id = ? AND cart_id = ?", cartItemReq.ProductID, cart.ID).
		First(&cartItem).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "購物車沒有此商品",
			})
			return
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "查詢購物車商品錯誤",
				"error":   err.Error(),
			})
			return
		}
	}

	cartItem.Quantity = cartItemReq.Quantity
	err = db.Updates(&cartItem).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "更新購物車物品數量失敗",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "成功變更購物車物品數量",
		"productID": cartItem.ProductID,
		"Quantity":  cartItem.Quantity,
	})
	return
}

// 刪除購物車商品
func DeleteCartItemHandler(c *gin.Context, db *gorm.DB) {
	productID := c.Param("productID")

	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	//查詢購物車ID
	var cart models.Cart
	err := db.Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "查無此購物車",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查詢購物車失敗",
		})
		return
	}

	//刪除購物車商品
	result := db.
		Where("product_id = ? AND cart_id = ?", productID, cart.ID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "刪除購物車商品錯誤",
			"error":   result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "購物車沒有此商品",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "成功刪除購物車物品",
		"productID": productID,
	})
	return
}

// 查詢購物車商品，購物車不存在則建立空購物車
func GetCartHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	cart, err := getOrCreateCart(db, userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢購物車失敗",
			"error":   err.Error(),
		})
		return
	}

	var cartItems []models.CartItem
	err = db.
		Where("cart_id = ?", cart.ID).
		Preload("Product").
		Find(&cartItems).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢購物車商品失敗",
			"error":   err.Error(),
		})
		return
	}

	var cartItemsData []gin.H
	for _, cartItem := range cartItems {
		cartItemsData = append(cartItemsData, gin.H{
			"ProductID": cartItem.Product.ID,
			"Name":      cartItem.Product.Name,
			"Price":     cartItem.Product.Price,
			"ImageURL":  cartItem.Product.ImageURL,
			"Quantity":  cartItem.Quantity,
			"Stock":     cartItem.Product.Stock,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "成功查詢購物車",
		"cartItemsData": cartItemsData,
	})
}

// 清空購物車，購物車本身保留
func ClearCartHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var cart models.Cart
	err := db.Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "查無此購物車",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢購物車失敗",
			"error":   err.Error(),
		})
		return
	}

	err = db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "清空購物車失敗",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功清空購物車",
	})
}
