package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var ErrMissingToken = errors.New("discord bot token is not configured")

// Bot 持有 discordgo 会话，并在 Ready 事件时更新 Status
type Bot struct {
	session  *discordgo.Session
	status   *Status
	logger   *zap.Logger
	hasToken bool
}

func NewBot(token string, status *Status, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{session: session, status: status, logger: logger, hasToken: token != ""}
	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onResumed)
	session.AddHandler(bot.onDisconnect)
	return bot, nil
}

// Open 建立网关连接；token 为空时直接返回 ErrMissingToken，状态保持未就绪
func (b *Bot) Open() error {
	if !b.hasToken {
		return ErrMissingToken
	}
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	b.status.MarkDisconnected()
	return b.session.Close()
}

// API 基于当前会话的 GuildAPI
func (b *Bot) API() *API {
	return NewAPI(b.session)
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	name := "unknown"
	if r.User != nil {
		name = r.User.String()
	}
	b.status.MarkReady(name)
	b.logger.Info("discord bot ready", zap.String("user", name), zap.Int("guilds", len(r.Guilds)))
}

// onResumed 断线重连走 Resume 时网关只发送 RESUMED，不会再有 Ready
func (b *Bot) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	b.status.MarkResumed()
	name, _ := b.status.UserName()
	b.logger.Info("discord session resumed", zap.String("user", name))
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	b.status.MarkDisconnected()
	b.logger.Warn("discord gateway disconnected")
}
