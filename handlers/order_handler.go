package handlers

import (
	"MallBackend/models"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 結帳:在同一個事務內扣庫存、建立訂單與管理員通知並清空購物車，
// 任一步失敗則全部回滾。使用Serializable隔離等級避免同時結帳重複成立訂單。
func SendOrderHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var orderReq struct {
		RecipientName    string `json:"recipientName" binding:"required"`
		RecipientPhone   string `json:"recipientPhone" binding:"required"`
		RecipientAddress string `json:"recipientAddress" binding:"required"`
		PaymentMethod    string `json:"paymentMethod" binding:"required"`
		ShippingMethod   string `json:"shippingMethod" binding:"required"`
	}

	err := c.ShouldBindJSON(&orderReq)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "取得訂單資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	tx := db.Begin(&sql.TxOptions{Isolation: sql.LevelSerializable})
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "開啟資料庫事務失敗",
			"error":   tx.Error.Error(),
		})
		return
	}

	//查詢購物車，購物車不存在或沒有商品則結帳失敗，不寫入任何資料
	var cart models.Cart
	err = tx.
		Where("user_id = ?", userID).
		Preload("CartItems").
		First(&cart).
		Error
	if err != nil && err != gorm.ErrRecordNotFound {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢購物車失敗",
			"error":   err.Error(),
		})
		return
	}
	if err == gorm.ErrRecordNotFound || len(cart.CartItems) == 0 {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "購物車是空的",
		})
		return
	}

	//以結帳當下的商品價格計算總額並保存單價快照
	var orderItems []models.OrderItem
	var orderProducts []models.Product
	totalPrice := uint(0)

	for _, cartItem := range cart.CartItems {
		var product models.Product
		if err := tx.
			Where("id = ?", cartItem.ProductID).
			First(&product).
			Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "查詢商品失敗",
				"error":   err.Error(),
			})
			return
		}

		if product.Stock < cartItem.Quantity {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{
				"message":   "商品庫存不足",
				"productID": product.ID,
			})
			return
		}

		product.Stock -= cartItem.Quantity
		if err := tx.Save(&product).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "更新庫存失敗",
				"error":   err.Error(),
			})
			return
		}

		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Quantity:  cartItem.Quantity,
			Price:     product.Price,
		})
		orderProducts = append(orderProducts, product)
		totalPrice += product.Price * cartItem.Quantity
	}

	newOrder := models.Order{
		UserID:           userID.(uint),
		OrderItems:       orderItems,
		Total:            totalPrice,
		Status:           models.OrderStatusCompleted,
		PaymentMethod:    orderReq.PaymentMethod,
		ShippingMethod:   orderReq.ShippingMethod,
		RecipientName:    orderReq.RecipientName,
		RecipientPhone:   orderReq.RecipientPhone,
		RecipientAddress: orderReq.RecipientAddress,
	}

	err = tx.Create(&newOrder).Error
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "提交訂單失敗",
			"error":   err.Error(),
		})
		log.Printf("提交訂單失敗 Error: %s, %v", err.Error(), newOrder.OrderItems)
		return
	}

	//建立管理員通知
	notification := models.Notification{
		Message: fmt.Sprintf("新訂單 #%d 已建立，請盡快出貨。收件人: %s", newOrder.ID, orderReq.RecipientName),
	}
	if err := tx.Create(&notification).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "建立訂單通知失敗",
			"error":   err.Error(),
		})
		return
	}

	//清空購物車商品，購物車本身保留
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "清空購物車失敗",
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

	//訂單已成立，更新Redis商品快取失敗只記錄不影響結果
	for i := range orderProducts {
		if err, msg := UpdateProductToRedis(c, rdb, &orderProducts[i]); err != nil {
			log.Printf("%s: %v\n", msg, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "訂單已送出，成功清空購物車",
		"orderID": newOrder.ID,
		"total":   newOrder.Total,
	})
}

func GetOrderListHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var orders []models.Order
	err := db.Where("user_id = ?", userID).Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢訂單列表失敗",
			"error":   err.Error(),
		})
		return
	}

	var orderList []gin.H
	for _, order := range orders {
		orderList = append(orderList, gin.H{
			"OrderID":        order.ID,
			"OrderTime":      order.CreatedAt,
			"PaymentMethod":  order.PaymentMethod,
			"ShippingMethod": order.ShippingMethod,
			"Total":          order.Total,
			"Status":         order.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "成功查詢訂單列表",
		"orderList": orderList,
	})
}

func GetOrderDataHandler(c *gin.Context, db *gorm.DB) {
	orderID := c.Param("orderID")
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法取得使用者ID",
		})
		return
	}

	var order models.Order
	err := db.
		Where("id = ? AND user_id = ?", orderID, userID).
		Preload("OrderItems").
		Preload("OrderItems.Product").
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "查無此訂單",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "查詢訂單失敗",
			"error":   err.Error(),
		})
		return
	}

	//Price為結帳當下保存的單價，不讀取商品目前價格
	var orderItemsData []gin.H
	for _, orderItem := range order.OrderItems {
		orderItemsData = append(orderItemsData, gin.H{
			"ProductID": orderItem.ProductID,
			"Name":      orderItem.Product.Name,
			"Price":     orderItem.Price,
			"ImageURL":  orderItem.Product.ImageURL,
			"Quantity":  orderItem.Quantity,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "成功查詢訂單",
		"OrderID":          order.ID,
		"RecipientName":    order.RecipientName,
		"RecipientAddress": order.RecipientAddress,
		"RecipientPhone":   order.RecipientPhone,
		"PaymentMethod":    order.PaymentMethod,
		"ShippingMethod":   order.ShippingMethod,
		"Total":            order.Total,
		"OrderTime":        order.CreatedAt,
		"Status":           order.Status,
		"orderItemsData":   orderItemsData,
	})
}
