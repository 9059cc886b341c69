package handlers

import (
	"MallBackend/models"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 批次匯入時未提供密碼的新帳號使用預設密碼
const defaultImportPassword = "123456"

// 批次匯入的會員資料列，選填欄位用指標區分「沒提供」跟「提供空值」
type UserImportRow struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// 依Username upsert會員資料。已存在的帳號只更新有提供的欄位，
// 沒提供密碼(或空白密碼)不覆蓋原本的Hash
func upsertImportedUsers(db *gorm.DB, rows []UserImportRow) (int, int, int, error) {
	createdCount, updatedCount, skippedCount := 0, 0, 0

	var defaultHash []byte
	for _, row := range rows {
		if strings.TrimSpace(row.Username) == "" {
			skippedCount++
			continue
		}
		username := strings.TrimSpace(row.Username)
		password := strings.TrimSpace(row.Password)

		var user models.User
		err := db.First(&user, "Username = ?", username).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return createdCount, updatedCount, skippedCount, err
		}

		if err == gorm.ErrRecordNotFound {
			var hashedPassword []byte
			if password != "" {
				hashedPassword, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
				if err != nil {
					return createdCount, updatedCount, skippedCount, err
				}
			} else {
				if defaultHash == nil {
					defaultHash, err = bcrypt.GenerateFromPassword([]byte(defaultImportPassword), bcrypt.DefaultCost)
					if err != nil {
						return createdCount, updatedCount, skippedCount, err
					}
				}
				hashedPassword = defaultHash
			}

			newUser := models.User{
				Username: username,
				Password: string(hashedPassword),
				Role:     models.RoleUser,
			}
			if row.Name != nil {
				newUser.Name = *row.Name
			}
			if row.Phone != nil {
				newUser.Phone = *row.Phone
			}
			if row.Address != nil {
				newUser.Address = *row.Address
			}

			if err := db.Create(&newUser).Error; err != nil {
				skippedCount++
				continue
			}
			createdCount++
			continue
		}

		if row.Name != nil {
			user.Name = *row.Name
		}
		if row.Phone != nil {
			user.Phone = *row.Phone
		}
		if row.Address != nil {
			user.Address = *row.Address
		}
		if password != "" {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return createdCount, updatedCount, skippedCount, err
			}
			user.Password = string(hashedPassword)
		}

		if err := db.Save(&user).Error; err != nil {
			skippedCount++
			continue
		}
		updatedCount++
	}

	return createdCount, updatedCount, skippedCount, nil
}

// 以JSON陣列批次匯入會員
func ImportUsersHandler(c *gin.Context, db *gorm.DB) {
	var rows []UserImportRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "綁定請求資料錯誤",
			"error":   err.Error(),
		})
		return
	}

	createdCount, updatedCount, skippedCount, err := upsertImportedUsers(db, rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "匯入會員失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "匯入完成",
		"created_count": createdCount,
		"updated_count": updatedCount,
		"skipped_count": skippedCount,
	})
}

// 以Excel檔批次匯入會員，欄位依序為帳號/密碼/姓名/電話/地址
func ImportUsersFromExcelHandler(c *gin.Context, db *gorm.DB) {
	excelFileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "需要Excel檔案",
			"error":   err.Error(),
		})
		return
	}

	file, err := excelFileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "開啟Excel檔案失敗",
			"error":   err.Error(),
		})
		return
	}
	defer file.Close()

	xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "解析Excel檔案失敗",
			"error":   err.Error(),
		})
		return
	}

	if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Excel檔案是空的或缺少標題列",
		})
		return
	}

	sheet := xlFile.Sheets[0]
	var rows []UserImportRow

	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]

		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		importRow := UserImportRow{
			Username: get(0),
			Password: get(1),
		}
		if name := get(2); name != "" {
			importRow.Name = &name
		}
		if phone := get(3); phone != "" {
			importRow.Phone = &phone
		}
		if address := get(4); address != "" {
			importRow.Address = &address
		}
		rows = append(rows, importRow)
	}

	createdCount, updatedCount, skippedCount, err := upsertImportedUsers(db, rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "匯入會員失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "匯入完成",
		"created_count": createdCount,
		"updated_count": updatedCount,
		"skipped_count": skippedCount,
	})
}

// 匯出會員列表為CSV
func ExportUsersToCSVHandler(c *gin.Context, db *gorm.DB) {
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法獲取使用者列表",
			"error":   err.Error(),
		})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=users.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write([]string{"id", "username", "email", "name", "role", "createdAt"})
	for _, user := range users {
		_ = writer.Write([]string{
			strconv.Itoa(int(user.ID)),
			user.Username,
			user.Email,
			user.Name,
			user.Role,
			user.CreatedAt.Format(time.RFC3339),
		})
	}
}

// 匯出會員列表為Excel
func ExportUsersToExcelHandler(c *gin.Context, db *gorm.DB) {
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "無法獲取使用者列表",
			"error":   err.Error(),
		})
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Users")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "建立Excel工作表失敗",
			"error":   err.Error(),
		})
		return
	}

	headers := []string{"ID", "Username", "Email", "Name", "Phone", "Address", "Role", "CreatedAt"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, user := range users {
		row := sheet.AddRow()
		row.AddCell().SetValue(int(user.ID))
		row.AddCell().SetValue(user.Username)
		row.AddCell().SetValue(user.Email)
		row.AddCell().SetValue(user.Name)
		row.AddCell().SetValue(user.Phone)
		row.AddCell().SetValue(user.Address)
		row.AddCell().SetValue(user.Role)
		row.AddCell().SetValue(user.CreatedAt.Format(time.RFC3339))
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=users_%s.xlsx", time.Now().Format("20060102")))

	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "寫出Excel檔案失敗",
			"error":   err.Error(),
		})
		return
	}
}
