package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gopher0727/GuildForge/internal/models"
	"github.com/Gopher0727/GuildForge/internal/repositories"
)

// MaxTemplates 模板列表的返回上限
const MaxTemplates = 1000

type TemplateService struct {
	repo     repositories.TemplateRepository
	validate *validator.Validate
	logger   *zap.Logger
}

func NewTemplateService(repo repositories.TemplateRepository, logger *zap.Logger) *TemplateService {
	return &TemplateService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// ParseTemplate 校验上传内容并构造模板，ID 与创建时间总是由服务端生成
func (s *TemplateService) ParseTemplate(filename string, content []byte) (*models.Template, error) {
	if !strings.HasSuffix(filename, ".json") {
		return nil, ErrNotJSONFile
	}
	if !json.Valid(content) {
		return nil, ErrInvalidJSON
	}

	var template models.Template
	decoder := json.NewDecoder(bytes.NewReader(content))
	if err := decoder.Decode(&template); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if err := s.validate.Struct(&template); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	template.ID = uuid.New().String()
	template.CreatedAt = time.Now().UTC()
	return &template, nil
}

// Upload 解析并保存模板；任何校验失败都不会写入存储
func (s *TemplateService) Upload(ctx context.Context, filename string, content []byte) (*models.Template, error) {
	template, err := s.ParseTemplate(filename, content)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	s.logger.Info("template uploaded",
		zap.String("template_id", template.ID),
		zap.String("name", template.Name),
		zap.Int("channels", len(template.Channels)),
		zap.Int("roles", len(template.Roles)))
	return template, nil
}

func (s *TemplateService) List(ctx context.Context) ([]models.Template, error) {
	return s.repo.List(ctx, MaxTemplates)
}

func (s *TemplateService) Get(ctx context.Context, id string) (*models.Template, error) {
	return s.repo.Get(ctx, id)
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("template deleted", zap.String("template_id", id))
	return nil
}
