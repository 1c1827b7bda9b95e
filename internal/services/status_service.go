package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Gopher0727/GuildForge/internal/models"
	"github.com/Gopher0727/GuildForge/internal/repositories"
)

const (
	statusMessage   = "Discord Server Creator API"
	maxStatusChecks = 1000
)

// BotIdentity 报告外部 API 连接的就绪状态与身份
type BotIdentity interface {
	Readiness
	UserName() (string, bool)
}

// BotStatus 状态探针的响应
type BotStatus struct {
	Message  string  `json:"message"`
	BotReady bool    `json:"bot_ready"`
	BotUser  *string `json:"bot_user"`
}

type StatusService struct {
	bot    BotIdentity
	checks repositories.StatusCheckRepository
}

func NewStatusService(bot BotIdentity, checks repositories.StatusCheckRepository) *StatusService {
	return &StatusService{bot: bot, checks: checks}
}

func (s *StatusService) Probe() BotStatus {
	status := BotStatus{Message: statusMessage, BotReady: s.bot.Ready()}
	if name, ok := s.bot.UserName(); ok {
		status.BotUser = &name
	}
	return status
}

func (s *StatusService) RecordCheck(ctx context.Context, clientName string) (*models.StatusCheck, error) {
	check := &models.StatusCheck{
		ID:         uuid.New().String(),
		ClientName: clientName,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.checks.Create(ctx, check); err != nil {
		return nil, err
	}
	return check, nil
}

func (s *StatusService) ListChecks(ctx context.Context) ([]models.StatusCheck, error) {
	return s.checks.List(ctx, maxStatusChecks)
}
