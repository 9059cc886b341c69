package storage

import (
	"MallBackend/config"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// 商品圖片儲存服務，上傳後回傳公開網址
type Storage interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
}

var allowExtensions = []string{".jpg", ".jpeg", ".png"}

// 檢查圖片副檔名是否合法
func IsValidImageExtensions(file *multipart.FileHeader) bool {
	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	for _, allowExt := range allowExtensions {
		if fileExt == allowExt {
			return true
		}
	}
	return false
}

// 以UUID生成不重複的儲存路徑
func MakeObjectName(file *multipart.FileHeader) string {
	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	return fmt.Sprintf("products/%s%s", uuid.New().String(), fileExt)
}

func NewStorage(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Mode {
	case "s3":
		return NewS3Client(cfg.Region, cfg.Bucket, cfg.Prefix)
	case "local", "":
		return NewLocalStorage(cfg.LocalDir, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("不支援的儲存模式: %s", cfg.Mode)
	}
}
