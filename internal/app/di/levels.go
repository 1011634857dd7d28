package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"index_backend/internal/feature/levels/adapters"
	"index_backend/internal/feature/levels/usecase"
	"index_backend/internal/platform/cache"
)

// NewLevelReader creates a LevelReader backed by the database.
// If Redis is available, reads are wrapped with a cache that expires
// at the next NYSE close.
func NewLevelReader(db *gorm.DB, rdb *redis.Client) usecase.LevelReader {
	repo := adapters.NewLevelRepository(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingLevelRepository(rdb, cache.TimeUntilNextNYSEClose(), repo, "levels")
}
