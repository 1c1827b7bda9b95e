package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Gopher0727/GuildForge/internal/models"
)

// NewGormStore 基于 PostgreSQL（gorm）构建仓储，频道/角色列表以 JSON 列存储
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Templates:    &GormTemplateRepository{db: db},
		CreationLogs: &GormCreationLogRepository{db: db},
		StatusChecks: &GormStatusCheckRepository{db: db},
	}
}

type GormTemplateRepository struct {
	db *gorm.DB
}

func (r *GormTemplateRepository) Create(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *GormTemplateRepository) List(ctx context.Context, limit int) ([]models.Template, error) {
	templates := make([]models.Template, 0)
	err := r.db.WithContext(ctx).
		Order("created_at asc").
		Limit(limit).
		Find(&templates).Error
	return templates, err
}

// Get 根据 ID 查询模板，不存在时返回 ErrTemplateNotFound
func (r *GormTemplateRepository) Get(ctx context.Context, id string) (*models.Template, error) {
	var template models.Template
	err := r.db.WithContext(ctx).First(&template, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *GormTemplateRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Template{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

type GormCreationLogRepository struct {
	db *gorm.DB
}

func (r *GormCreationLogRepository) Create(ctx context.Context, log *models.CreationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *GormCreationLogRepository) ListRecent(ctx context.Context, limit int) ([]models.CreationLog, error) {
	logs := make([]models.CreationLog, 0)
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

type GormStatusCheckRepository struct {
	db *gorm.DB
}

func (r *GormStatusCheckRepository) Create(ctx context.Context, check *models.StatusCheck) error {
	return r.db.WithContext(ctx).Create(check).Error
}

func (r *GormStatusCheckRepository) List(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	checks := make([]models.StatusCheck, 0)
	err := r.db.WithContext(ctx).Limit(limit).Find(&checks).Error
	return checks, err
}
