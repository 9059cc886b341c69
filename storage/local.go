package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// 本機磁碟儲存，開發環境使用，正式環境改用S3
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}

	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStorage) UploadFile(file *multipart.FileHeader, objectName string) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	filePath := filepath.Join(s.dir, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", err
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", s.baseURL, objectName), nil
}
