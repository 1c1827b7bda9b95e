package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/Gopher0727/GuildForge/internal/models"
	"github.com/Gopher0727/GuildForge/internal/services"
)

const inviteBaseURL = "https://discord.gg/"

// API 用 discordgo REST 调用实现 services.GuildAPI
type API struct {
	session *discordgo.Session
}

var _ services.GuildAPI = (*API)(nil)

func NewAPI(session *discordgo.Session) *API {
	return &API{session: session}
}

func (a *API) CreateGuild(ctx context.Context, name string) (string, error) {
	guild, err := a.session.GuildCreate(name, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify(err)
	}
	return guild.ID, nil
}

func (a *API) CreateRole(ctx context.Context, guildID string, role models.RoleSpec) error {
	color, err := role.ColorValue()
	if err != nil {
		return err
	}
	params := &discordgo.RoleParams{
		Name:        role.Name,
		Color:       &color,
		Hoist:       &role.Hoist,
		Permissions: &role.Permissions,
		Mentionable: &role.Mentionable,
	}
	if _, err := a.session.GuildRoleCreate(guildID, params, discordgo.WithContext(ctx)); err != nil {
		return classify(err)
	}
	return nil
}

func (a *API) CreateChannel(ctx context.Context, guildID string, channel services.ChannelParams) (string, error) {
	kind, err := channelType(channel.Kind)
	if err != nil {
		return "", err
	}
	data := discordgo.GuildChannelCreateData{
		Name:     channel.Name,
		Type:     kind,
		Position: channel.Position,
		ParentID: channel.ParentID,
	}
	created, err := a.session.GuildChannelCreateComplex(guildID, data, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify(err)
	}
	return created.ID, nil
}

// CreateInvite 永久、不限次数的邀请
func (a *API) CreateInvite(ctx context.Context, channelID string) (string, error) {
	invite, err := a.session.ChannelInviteCreate(channelID, discordgo.Invite{MaxAge: 0, MaxUses: 0}, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify(err)
	}
	return inviteBaseURL + invite.Code, nil
}

func channelType(kind models.ChannelKind) (discordgo.ChannelType, error) {
	switch kind {
	case models.ChannelCategory:
		return discordgo.ChannelTypeGuildCategory, nil
	case models.ChannelText:
		return discordgo.ChannelTypeGuildText, nil
	case models.ChannelVoice:
		return discordgo.ChannelTypeGuildVoice, nil
	default:
		return 0, fmt.Errorf("unsupported channel type %q", kind)
	}
}

// classify 把 403 和限流映射为 services 包的哨兵错误，保留原始错误信息
func classify(err error) error {
	var rateLimited *discordgo.RateLimitError
	if errors.As(err, &rateLimited) {
		return fmt.Errorf("%w: %v", services.ErrGuildRateLimited, err)
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", services.ErrGuildPermissionDenied, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", services.ErrGuildRateLimited, err)
		}
	}
	return err
}
