package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gopher0727/GuildForge/internal/models"
	"github.com/Gopher0727/GuildForge/internal/repositories"
	"github.com/Gopher0727/GuildForge/internal/utils"
)

const (
	msgTimedOut  = "Server creation timed out. Please try again."
	msgCancelled = "Server creation was cancelled."

	// MaxCreatedServers 创建记录列表的返回上限
	MaxCreatedServers = 100
)

// Builder 执行一次完整的 Guild 创建
type Builder interface {
	Build(ctx context.Context, template *models.Template, name string) models.CreationResult
}

// EventPublisher 发布创建成功事件，可为 nil
type EventPublisher interface {
	PublishServerCreated(ctx context.Context, log *models.CreationLog) error
}

// CreationService 把异步的单 worker 队列包装成同步的请求/响应
type CreationService struct {
	templates repositories.TemplateRepository
	logs      repositories.CreationLogRepository
	builder   Builder
	worker    *utils.SerialWorker
	events    EventPublisher
	timeout   time.Duration
	logger    *zap.Logger
}

func NewCreationService(
	templates repositories.TemplateRepository,
	logs repositories.CreationLogRepository,
	builder Builder,
	worker *utils.SerialWorker,
	events EventPublisher,
	timeout time.Duration,
	logger *zap.Logger,
) *CreationService {
	return &CreationService{
		templates: templates,
		logs:      logs,
		builder:   builder,
		worker:    worker,
		events:    events,
		timeout:   timeout,
		logger:    logger,
	}
}

// CreateServer 查找模板、排队创建并等待结果；成功时写入一条创建记录
// 名称不合法或模板不存在时直接返回错误，不会触发任何外部调用
func (s *CreationService) CreateServer(ctx context.Context, req *models.CreationRequest) (*models.CreationResult, error) {
	name, ok := utils.NormalizeServerName(req.ServerName)
	if !ok {
		return nil, ErrInvalidServerName
	}

	template, err := s.templates.Get(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	result := s.Dispatch(ctx, template, name)
	if !result.Success {
		return &result, nil
	}

	entry := &models.CreationLog{
		ID:         uuid.New().String(),
		TemplateID: req.TemplateID,
		ServerName: name,
		ServerID:   result.ServerID,
		CreatedAt:  time.Now().UTC(),
		Success:    true,
	}
	if result.InviteLink != "" {
		invite := result.InviteLink
		entry.InviteLink = &invite
	}

	// 写入的是独立于请求的 ctx：Guild 已经建好，客户端断开也要留下记录
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.logs.Create(persistCtx, entry); err != nil {
		s.logger.Error("failed to persist creation log",
			zap.String("server_id", entry.ServerID), zap.Error(err))
	}
	if s.events != nil {
		if err := s.events.PublishServerCreated(persistCtx, entry); err != nil {
			s.logger.Warn("failed to publish server created event",
				zap.String("server_id", entry.ServerID), zap.Error(err))
		}
	}
	return &result, nil
}

// Dispatch 为本次请求分配独立的结果槽并入队，等待结果或超时
// 超时只停止等待，已入队的创建仍会在 worker 中执行完
func (s *CreationService) Dispatch(ctx context.Context, template *models.Template, name string) models.CreationResult {
	slot := make(chan models.CreationResult, 1)

	job := func(workerCtx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("guild builder panicked", zap.Any("panic", r))
				slot <- models.CreationResult{Success: false, Message: fmt.Sprintf("Worker error: %v", r)}
			}
		}()
		slot <- s.builder.Build(workerCtx, template, name)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.worker.Submit(waitCtx, job); err != nil {
		return s.waitFailure(ctx, err)
	}

	select {
	case result := <-slot:
		return result
	case <-waitCtx.Done():
		return s.waitFailure(ctx, waitCtx.Err())
	}
}

func (s *CreationService) waitFailure(parent context.Context, err error) models.CreationResult {
	switch {
	case errors.Is(err, utils.ErrWorkerStopped):
		return models.CreationResult{Success: false, Message: fmt.Sprintf("Worker error: %v", err)}
	case parent.Err() != nil:
		return models.CreationResult{Success: false, Message: msgCancelled}
	default:
		s.logger.Warn("server creation wait timed out", zap.Duration("timeout", s.timeout))
		return models.CreationResult{Success: false, Message: msgTimedOut}
	}
}

// ListCreated 最近创建的服务器，按时间倒序
func (s *CreationService) ListCreated(ctx context.Context) ([]models.CreationLog, error) {
	return s.logs.ListRecent(ctx, MaxCreatedServers)
}

// QueueDepth 当前排队中的创建请求数
func (s *CreationService) QueueDepth() int {
	return s.worker.Pending()
}
