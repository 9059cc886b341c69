package main

import (
	"MallBackend/config"
	"MallBackend/routers"
	"MallBackend/storage"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	//載入.env(如存在)，供環境變數覆寫設定檔
	if err := godotenv.Load(); err != nil {
		log.Println("未載入.env檔案，使用現有環境變數")
	}

	cfg, err := config.LoadConfig(config.ConfigPath)
	if err != nil {
		panic("無法讀取設定檔")
	}

	db, err := config.SetupMySQLConnection()
	if err != nil {
		panic("無法連接到資料庫")
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()

	rdb, err := config.SetupRedisConnection()
	if err != nil {
		panic("無法連接到Redis")
	}
	defer rdb.Close()

	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		panic("無法初始化圖片儲存服務")
	}

	router := routers.SetupRouters(db, rdb, store)
	router.Run(":" + cfg.Server.Port)
}
