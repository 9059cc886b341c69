package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"MallBackend/models"
)

// 組出帶商品欄位與圖片檔案的multipart請求
func newProductFormRequest(t *testing.T, path string, fields map[string]string, imageNames []string) *http.Request {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	for _, name := range imageNames {
		part, err := writer.CreateFormFile("images", name)
		assert.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestCreateProductWithImages(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newProductFormRequest(t, "/api/v1/admin/products", map[string]string{
		"name":        "機械鍵盤",
		"price":       "1990",
		"stock":       "10",
		"description": "茶軸",
		"category":    "3C",
	}, []string{"main.png", "side.jpg"}))
	assert.Equal(t, http.StatusCreated, recorder.Code)

	var product models.Product
	assert.NoError(t, db.Preload("Images").First(&product, "Name = ?", "機械鍵盤").Error)
	assert.Equal(t, uint(1990), product.Price)
	assert.Equal(t, uint(10), product.Stock)
	assert.Len(t, product.Images, 2)
	//第一張圖片作為主圖
	assert.True(t, strings.HasPrefix(product.ImageURL, "/uploads/products/"))
	assert.Equal(t, product.Images[0].URL, product.ImageURL)
}

func TestCreateProductRejectsBadImageExtension(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newProductFormRequest(t, "/api/v1/admin/products", map[string]string{
		"name":  "機械鍵盤",
		"price": "1990",
		"stock": "10",
	}, []string{"script.txt"}))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var productCount int64
	db.Model(&models.Product{}).Count(&productCount)
	assert.Equal(t, int64(0), productCount)
}

func TestCreateProductMissingRequiredFields(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newProductFormRequest(t, "/api/v1/admin/products", map[string]string{
		"name": "缺少價格的商品",
	}, nil))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUploadImage(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "photo.jpeg")
	assert.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/image", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusCreated, recorder.Code)

	var response struct {
		ImageURL string `json:"imageURL"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, strings.HasPrefix(response.ImageURL, "/uploads/products/"))
	assert.True(t, strings.HasSuffix(response.ImageURL, ".jpeg"))
}

func TestUpdateProductPartialFields(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	product := models.Product{Name: "機械鍵盤", Price: 1990, Stock: 10, Category: "3C"}
	db.Create(&product)

	//只調價格，其他欄位不受影響
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodPatch, "/api/v1/admin/products/"+itoa(product.ID), map[string]interface{}{
		"price": 1790,
	}))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var updated models.Product
	db.First(&updated, product.ID)
	assert.Equal(t, uint(1790), updated.Price)
	assert.Equal(t, "機械鍵盤", updated.Name)
	assert.Equal(t, uint(10), updated.Stock)

	//查無商品回傳404
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodPatch, "/api/v1/admin/products/999", map[string]interface{}{
		"price": 100,
	}))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestDeleteProductRemovesImages(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	product := models.Product{
		Name: "機械鍵盤", Price: 1990, Stock: 10,
		Images: []models.ProductImage{{URL: "/uploads/products/a.png"}, {URL: "/uploads/products/b.png"}},
	}
	db.Create(&product)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodDelete, "/api/v1/admin/products/"+itoa(product.ID), nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var productCount, imageCount int64
	db.Model(&models.Product{}).Count(&productCount)
	db.Model(&models.ProductImage{}).Count(&imageCount)
	assert.Equal(t, int64(0), productCount)
	assert.Equal(t, int64(0), imageCount)
}

func TestGetAdminProductListIncludesImages(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	db.Create(&models.Product{
		Name: "機械鍵盤", Price: 1990, Stock: 10,
		Images: []models.ProductImage{{URL: "/uploads/products/a.png"}},
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodGet, "/api/v1/admin/products", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Products []struct {
			Name   string `json:"Name"`
			Images []struct {
				URL string `json:"URL"`
			} `json:"Images"`
		} `json:"products"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Len(t, response.Products, 1)
	assert.Len(t, response.Products[0].Images, 1)
}

func TestAdminUserSearch(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	db.Create(&models.User{Username: "member01", Password: "hash", Name: "王小明", Role: models.RoleUser})
	db.Create(&models.User{Username: "member02", Password: "hash", Name: "李小華", Role: models.RoleUser})

	//query同時比對姓名與帳號
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodGet, "/api/v1/admin/users?query=王小", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		UserList []struct {
			Username string `json:"Username"`
			Name     string `json:"Name"`
		} `json:"userList"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Len(t, response.UserList, 1)
	assert.Equal(t, "member01", response.UserList[0].Username)

	//沒帶query回傳全部
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodGet, "/api/v1/admin/users", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Len(t, response.UserList, 2)
}

func TestAdminUpdateUserRehashesPassword(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	user := models.User{Username: "member01", Password: "oldhash", Name: "王小明", Role: models.RoleUser}
	db.Create(&user)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodPatch, "/api/v1/admin/users/"+itoa(user.ID), map[string]interface{}{
		"name":     "王大明",
		"password": "NewPassw0rd",
	}))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var updated models.User
	db.First(&updated, user.ID)
	assert.Equal(t, "王大明", updated.Name)
	assert.Equal(t, "member01", updated.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("NewPassw0rd")))
}

// 帳號改名撞到既有帳號要回400，不能等資料庫唯一索引變500
func TestAdminUpdateUserDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	db.Create(&models.User{Username: "member01", Password: "hash", Role: models.RoleUser})
	user := models.User{Username: "member02", Password: "hash", Role: models.RoleUser}
	db.Create(&user)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodPatch, "/api/v1/admin/users/"+itoa(user.ID), map[string]interface{}{
		"username": "member01",
	}))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "使用者名稱已被使用")

	var unchanged models.User
	db.First(&unchanged, user.ID)
	assert.Equal(t, "member02", unchanged.Username)

	//重填自己原本的帳號不算重複
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodPatch, "/api/v1/admin/users/"+itoa(user.ID), map[string]interface{}{
		"username": "member02",
		"name":     "李小華",
	}))
	assert.Equal(t, http.StatusOK, recorder.Code)
	db.First(&unchanged, user.ID)
	assert.Equal(t, "李小華", unchanged.Name)
}

func TestAdminDeleteUser(t *testing.T) {
	db := setupTestDB(t)
	router, _ := setupTestRouter(t, db, 99, models.RoleAdmin)

	user := models.User{Username: "member01", Password: "hash", Role: models.RoleUser}
	db.Create(&user)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodDelete, "/api/v1/admin/users/"+itoa(user.ID), nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.Equal(t, int64(0), userCount)

	//重複刪除回傳404
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, newJSONRequest(http.MethodDelete, "/api/v1/admin/users/"+itoa(user.ID), nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
