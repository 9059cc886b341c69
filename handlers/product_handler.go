package handlers

import (
	"MallBackend/models"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

// 將商品寫入Redis商品列表(ZSet，分數為商品ID)
func UpdateProductToRedis(c *gin.Context, rdb *redis.Client, product *models.Product) (error, string) {
	productJSON, err := json.Marshal(product)
	if err != nil {
		return err, "無法序列化商品資料"
	}

	score := strconv.Itoa(int(product.ID))
	err = rdb.ZRemRangeByScore(c, "products", score, score).Err()
	if err != nil {
		return err, "無法將商品資料從Redis刪除"
	}

	err = rdb.ZAdd(c, "products", redis.Z{
		Score:  float64(product.ID),
		Member: productJSON,
	}).Err()
	if err != nil {
		return err, "無法將商品資料加入Redis"
	}

	return nil, ""
}

// 從Redis商品列表刪除商品
func RemoveProductFromRedis(c *gin.Context, rdb *redis.Client, productID uint) error {
	score := strconv.Itoa(int(productID))
	return rdb.ZRemRangeByScore(c, "products", score, score).Err()
}

// 從資料庫讀取全部商品並重建Redis商品列表，失敗不影響回應
func reloadProductsToRedis(c *gin.Context, rdb *redis.Client, products []models.Product) {
	if err := rdb.Del(c, "products").Err(); err != nil {
		log.Printf("無法清除Redis商品列表: %v\n", err)
		return
	}

	for i := range products {
		if err, msg := UpdateProductToRedis(c, rdb, &products[i]); err != nil {
			log.Printf("%s: %v\n", msg, err)
			return
		}
	}
}

type productSummary struct {
	ID       uint
	Name     string
	Price    uint
	Stock    uint
	Category string
	ImageURL string
}

func summarize(product *models.Product) productSummary {
	return productSummary{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Stock:    product.Stock,
		Category: product.Category,
		ImageURL: product.ImageURL,
	}
}

// 查詢商品列表
func GetProductListHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	limit := c.DefaultQuery("limit", "10")
	limitInt, err := strconv.Atoi(limit)
	if err != nil || limitInt < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "查詢數量輸入錯誤",
		})
		return
	}
	//限制最高查詢數量為50
	if limitInt > 50 {
		limitInt = 50
	}

	offset := c.DefaultQuery("offset", "0")
	offsetInt, err := strconv.Atoi(offset)
	if err != nil || offsetInt < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "offset輸入錯誤",
		})
		return
	}

	category := c.Query("category")

	//嘗試從Redis讀取商品列表，如失敗或為空則從資料庫讀取並重建快取
	var allProducts []models.Product
	redisProducts, err := rdb.ZRange(c, "products", 0, -1).Result()
	if err != nil || len(redisProducts) == 0 {
		err = db.Find(&allProducts).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "無法讀取商品列表",
				"error":   err.Error(),
			})
			return
		}
		reloadProductsToRedis(c, rdb, allProducts)
	} else {
		for _, redisProduct := range redisProducts {
			var productUnmarshal models.Product
			if err := json.Unmarshal([]byte(redisProduct), &productUnmarshal); err != nil {
				log.Printf("無法反序列化商品資料: %v\n", err)
				continue
			}
			allProducts = append(allProducts, productUnmarshal)
		}
	}

	var productsData []productSummary
	for i := range allProducts {
		if category != "" && allProducts[i].Category != category {
			continue
		}
		productsData = append(productsData, summarize(&allProducts[i]))
	}

	totalCount := len(productsData)

	//預防offset跟limit超出搜尋結果切片
	if offsetInt > totalCount {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":    "offset超過商品數量",
			"totalCount": totalCount,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "成功讀取商品列表",
		"products":   productsData[offsetInt:min(offsetInt+limitInt, totalCount)],
		"totalCount": totalCount,
	})
}

// 查詢商品詳細資料
func GetProductDataHandler(c *gin.Context, db *gorm.DB) {
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

	var imageURLs []string
	for _, image := range product.Images {
		imageURLs = append(imageURLs, image.URL)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功查詢商品資料",
		"product": gin.H{
			"ID":          product.ID,
			"Name":        product.Name,
			"Price":       product.Price,
			"Stock":       product.Stock,
			"Description": product.Description,
			"Category":    product.Category,
			"ImageURL":    product.ImageURL,
			"Images":      imageURLs,
		},
	})
}
