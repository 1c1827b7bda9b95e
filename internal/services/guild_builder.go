package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Gopher0727/GuildForge/internal/models"
)

// GuildAPI 外部平台的创建能力（Guild / 角色 / 频道 / 邀请）
// 实现应将 403 和限流分别包装为 ErrGuildPermissionDenied、ErrGuildRateLimited
type GuildAPI interface {
	CreateGuild(ctx context.Context, name string) (guildID string, err error)
	CreateRole(ctx context.Context, guildID string, role models.RoleSpec) error
	CreateChannel(ctx context.Context, guildID string, channel ChannelParams) (channelID string, err error)
	CreateInvite(ctx context.Context, channelID string) (inviteURL string, err error)
}

// ChannelParams 单个频道的创建参数，ParentID 为空表示不挂在分类下
type ChannelParams struct {
	Name     string
	Kind     models.ChannelKind
	ParentID string
	Position int
}

// Readiness 报告外部 API 连接是否就绪
type Readiness interface {
	Ready() bool
}

const (
	msgNotReady         = "Discord bot is not ready. Please try again."
	msgNoPermission     = "Bot doesn't have permission to create servers. Please check bot permissions."
	msgCreatedFormat    = "Server '%s' created successfully!"
	msgInterruptedGuild = "Server creation was interrupted after the guild was created."
)

// GuildBuilder 按模板在外部平台上创建 Guild
// 只在 SerialWorker 内调用，因此不需要自身的并发控制
type GuildBuilder struct {
	api         GuildAPI
	readiness   Readiness
	settleDelay time.Duration
	logger      *zap.Logger
}

func NewGuildBuilder(api GuildAPI, readiness Readiness, settleDelay time.Duration, logger *zap.Logger) *GuildBuilder {
	return &GuildBuilder{
		api:         api,
		readiness:   readiness,
		settleDelay: settleDelay,
		logger:      logger,
	}
}

// Build 创建 Guild 后依次创建角色、分类、文字/语音频道和邀请链接
// 只有 Guild 本身创建失败才返回失败；单个角色/频道/邀请的错误记录在 Warnings 中
func (b *GuildBuilder) Build(ctx context.Context, template *models.Template, name string) models.CreationResult {
	if !b.readiness.Ready() {
		return models.CreationResult{Success: false, Message: msgNotReady}
	}

	log := b.logger.With(zap.String("template_id", template.ID), zap.String("server_name", name))

	guildID, err := b.api.CreateGuild(ctx, name)
	if err != nil {
		log.Warn("guild creation failed", zap.Error(err))
		if errors.Is(err, ErrGuildPermissionDenied) {
			return models.CreationResult{Success: false, Message: msgNoPermission}
		}
		return models.CreationResult{Success: false, Message: fmt.Sprintf("Discord API error: %v", err)}
	}
	log = log.With(zap.String("guild_id", guildID))

	// 新建的 Guild 不会立刻开放全部能力
	if b.settleDelay > 0 {
		timer := time.NewTimer(b.settleDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return models.CreationResult{Success: false, ServerID: guildID, Message: msgInterruptedGuild}
		}
	}

	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Warn("skipped during guild creation", zap.String("reason", msg))
		warnings = append(warnings, msg)
	}

	for _, role := range template.Roles {
		if role.IsEveryone() {
			continue
		}
		if err := b.api.CreateRole(ctx, guildID, role); err != nil {
			warn("role %q: %v", role.Name, err)
		}
	}

	categories := make(map[string]string)
	for _, ch := range template.Channels {
		if ch.Type != models.ChannelCategory {
			continue
		}
		id, err := b.api.CreateChannel(ctx, guildID, ChannelParams{
			Name:     ch.Name,
			Kind:     models.ChannelCategory,
			Position: ch.Position,
		})
		if err != nil {
			warn("category %q: %v", ch.Name, err)
			continue
		}
		categories[ch.Name] = id
	}

	var firstTextChannel string
	for _, ch := range template.Channels {
		switch ch.Type {
		case models.ChannelCategory:
			continue
		case models.ChannelText, models.ChannelVoice:
		default:
			warn("channel %q: unknown type %q", ch.Name, ch.Type)
			continue
		}

		parentID := ""
		if ch.Category != "" {
			id, ok := categories[ch.Category]
			if !ok {
				log.Info("parent category missing, creating channel without parent",
					zap.String("channel", ch.Name), zap.String("category", ch.Category))
			}
			parentID = id
		}

		id, err := b.api.CreateChannel(ctx, guildID, ChannelParams{
			Name:     ch.Name,
			Kind:     ch.Type,
			ParentID: parentID,
			Position: ch.Position,
		})
		if err != nil {
			warn("channel %q: %v", ch.Name, err)
			continue
		}
		if ch.Type == models.ChannelText && firstTextChannel == "" {
			firstTextChannel = id
		}
	}

	result := models.CreationResult{
		Success:  true,
		ServerID: guildID,
		Message:  fmt.Sprintf(msgCreatedFormat, name),
		Warnings: warnings,
	}

	if firstTextChannel != "" {
		invite, err := b.api.CreateInvite(ctx, firstTextChannel)
		if err != nil {
			log.Warn("invite creation failed", zap.Error(err))
		} else {
			result.InviteLink = invite
		}
	}

	log.Info("guild created",
		zap.Int("warnings", len(warnings)),
		zap.Bool("invite", result.InviteLink != ""))
	return result
}
