package main

import (
	"log"

	redisv9 "github.com/redis/go-redis/v9"

	"index_backend/internal/app/di"
	"index_backend/internal/app/router"
	consadapters "index_backend/internal/feature/constituents/adapters"
	conshandler "index_backend/internal/feature/constituents/transport/handler"
	consusecase "index_backend/internal/feature/constituents/usecase"
	levelshandler "index_backend/internal/feature/levels/transport/handler"
	levelsusecase "index_backend/internal/feature/levels/usecase"
	infradb "index_backend/internal/platform/db"
	infraredis "index_backend/internal/platform/redis"
)

func main() {
	// db
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	consRepo := consadapters.NewConstituentRepository(db)
	levelReader := di.NewLevelReader(db, rdb)

	// Usecase
	consUC := consusecase.NewSelectorUsecase(consRepo)
	levelsUC := levelsusecase.NewSelectorUsecase(levelReader)

	// Handler
	consH := conshandler.NewConstituentsHandler(consUC)
	levelsH := levelshandler.NewLevelsHandler(levelsUC)

	// ルータ生成
	r := router.NewRouter(consH, levelsH)

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
