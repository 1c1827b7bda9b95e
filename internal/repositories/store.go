package repositories

import (
	"context"
	"errors"

	"github.com/Gopher0727/GuildForge/internal/models"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
)

type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	List(ctx context.Context, limit int) ([]models.Template, error)
	Get(ctx context.Context, id string) (*models.Template, error)
	Delete(ctx context.Context, id string) error
}

type CreationLogRepository interface {
	Create(ctx context.Context, log *models.CreationLog) error
	// ListRecent 按 created_at 倒序返回最多 limit 条
	ListRecent(ctx context.Context, limit int) ([]models.CreationLog, error)
}

type StatusCheckRepository interface {
	Create(ctx context.Context, check *models.StatusCheck) error
	List(ctx context.Context, limit int) ([]models.StatusCheck, error)
}

// Store 聚合三个集合的仓储，由 storage.driver 决定具体实现
type Store struct {
	Templates    TemplateRepository
	CreationLogs CreationLogRepository
	StatusChecks StatusCheckRepository
}
