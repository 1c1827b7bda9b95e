package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Gopher0727/GuildForge/internal/models"
)

// CachedTemplateRepository 在模板仓储外包一层 Redis 读缓存
// 模板不可修改，因此只需在删除时失效；Redis 故障时直接回源
type CachedTemplateRepository struct {
	inner  TemplateRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedTemplateRepository(inner TemplateRepository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedTemplateRepository {
	return &CachedTemplateRepository{
		inner:  inner,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// deletedMarker 已删除模板的缓存值，模板 id 不会复用
const deletedMarker = "deleted"

func templateCacheKey(id string) string {
	return fmt.Sprintf("template:%s", id)
}

func (r *CachedTemplateRepository) Create(ctx context.Context, template *models.Template) error {
	return r.inner.Create(ctx, template)
}

func (r *CachedTemplateRepository) List(ctx context.Context, limit int) ([]models.Template, error) {
	return r.inner.List(ctx, limit)
}

func (r *CachedTemplateRepository) Get(ctx context.Context, id string) (*models.Template, error) {
	key := templateCacheKey(id)

	data, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == deletedMarker {
			return nil, ErrTemplateNotFound
		}
		var template models.Template
		if err := json.Unmarshal(data, &template); err == nil {
			return &template, nil
		}
		r.logger.Warn("discarding corrupt cached template", zap.String("key", key))
		r.rdb.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("template cache read failed", zap.String("key", key), zap.Error(err))
	}

	template, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// SetNX：回源期间若模板被删除，删除标记已经写入，不会被旧数据覆盖
	if data, err := json.Marshal(template); err == nil {
		if err := r.rdb.SetNX(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warn("template cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return template, nil
}

// Delete 删除后写入删除标记而不是直接 Del，挡住并发 Get 的回填
func (r *CachedTemplateRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, templateCacheKey(id), deletedMarker, r.ttl).Err(); err != nil {
		r.logger.Warn("template cache eviction failed", zap.String("id", id), zap.Error(err))
	}
	return nil
}
