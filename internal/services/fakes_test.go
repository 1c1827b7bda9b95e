package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gopher0727/GuildForge/internal/models"
)

type readyFlag bool

func (r readyFlag) Ready() bool { return bool(r) }

type apiCall struct {
	Method string
	Name   string
	Parent string
}

// fakeGuildAPI 记录调用顺序，可按名称注入错误
type fakeGuildAPI struct {
	mu    sync.Mutex
	calls []apiCall
	seq   int

	guildErr   error
	inviteErr  error
	roleErrs   map[string]error
	chanErrs   map[string]error
	guildDelay time.Duration
}

func newFakeGuildAPI() *fakeGuildAPI {
	return &fakeGuildAPI{roleErrs: map[string]error{}, chanErrs: map[string]error{}}
}

func (f *fakeGuildAPI) record(call apiCall) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.seq++
	return fmt.Sprintf("id-%d", f.seq)
}

func (f *fakeGuildAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func (f *fakeGuildAPI) CallsOf(method string) []apiCall {
	var out []apiCall
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeGuildAPI) CreateGuild(ctx context.Context, name string) (string, error) {
	if f.guildDelay > 0 {
		time.Sleep(f.guildDelay)
	}
	id := f.record(apiCall{Method: "guild", Name: name})
	if f.guildErr != nil {
		return "", f.guildErr
	}
	return "guild-" + id, nil
}

func (f *fakeGuildAPI) CreateRole(ctx context.Context, guildID string, role models.RoleSpec) error {
	f.record(apiCall{Method: "role", Name: role.Name})
	if _, err := role.ColorValue(); err != nil {
		return err
	}
	return f.roleErrs[role.Name]
}

func (f *fakeGuildAPI) CreateChannel(ctx context.Context, guildID string, channel ChannelParams) (string, error) {
	id := f.record(apiCall{Method: string(channel.Kind), Name: channel.Name, Parent: channel.ParentID})
	if err := f.chanErrs[channel.Name]; err != nil {
		return "", err
	}
	return "chan-" + id, nil
}

func (f *fakeGuildAPI) CreateInvite(ctx context.Context, channelID string) (string, error) {
	f.record(apiCall{Method: "invite", Name: channelID})
	if f.inviteErr != nil {
		return "", f.inviteErr
	}
	return "https://discord.gg/" + channelID, nil
}

// overlapBuilder 统计同时执行的 Build 数量
type overlapBuilder struct {
	inner    Builder
	hold     time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (b *overlapBuilder) Build(ctx context.Context, template *models.Template, name string) models.CreationResult {
	n := b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	for {
		seen := b.maxSeen.Load()
		if n <= seen || b.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(b.hold)
	return b.inner.Build(ctx, template, name)
}

type panicBuilder struct{}

func (panicBuilder) Build(context.Context, *models.Template, string) models.CreationResult {
	panic("boom")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.CreationLog
	err    error
}

func (p *recordingPublisher) PublishServerCreated(_ context.Context, log *models.CreationLog) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *log)
	return p.err
}

// failingLogRepository 写入总是失败
type failingLogRepository struct{}

func (failingLogRepository) Create(context.Context, *models.CreationLog) error {
	return errors.New("disk full")
}

func (failingLogRepository) ListRecent(context.Context, int) ([]models.CreationLog, error) {
	return nil, nil
}

func sampleTemplate() *models.Template {
	return &models.Template{
		ID:   "tpl-1",
		Name: "Gaming",
		Channels: []models.ChannelSpec{
			{Name: "general", Type: models.ChannelText, Category: "Text Channels"},
			{Name: "Text Channels", Type: models.ChannelCategory},
			{Name: "Lobby", Type: models.ChannelVoice, Category: "Voice Channels"},
			{Name: "Voice Channels", Type: models.ChannelCategory},
			{Name: "announcements", Type: models.ChannelText, Category: "Missing"},
		},
		Roles: []models.RoleSpec{
			{Name: "@everyone"},
			{Name: "Admin", Color: "#ff0000", Permissions: 8},
			{Name: "Member", Color: "#00ff00"},
		},
	}
}
