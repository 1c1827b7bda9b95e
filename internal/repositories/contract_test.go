package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/GuildForge/internal/models"
)

func newTestTemplate(name string) *models.Template {
	return &models.Template{
		ID:          uuid.New().String(),
		Name:        name,
		Description: "test template",
		Channels: []models.ChannelSpec{
			{Name: "Info", Type: models.ChannelCategory},
			{Name: "welcome", Type: models.ChannelText, Category: "Info", Position: 1},
			{Name: "Lounge", Type: models.ChannelVoice, Category: "Info", Position: 2},
		},
		Roles: []models.RoleSpec{
			{Name: "Admin", Color: "#ff0000", Permissions: 8, Mentionable: true, Hoist: true},
			{Name: "@everyone", Color: "#000000"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// runStoreContract 对任意 Store 实现执行同一套行为检查
func runStoreContract(t *testing.T, store *Store) {
	ctx := context.Background()

	t.Run("template create then get returns identical lists", func(t *testing.T) {
		tpl := newTestTemplate("contract-get")
		require.NoError(t, store.Templates.Create(ctx, tpl))

		got, err := store.Templates.Get(ctx, tpl.ID)
		require.NoError(t, err)
		assert.Equal(t, tpl.Name, got.Name)
		assert.Equal(t, tpl.Channels, got.Channels)
		assert.Equal(t, tpl.Roles, got.Roles)
	})

	t.Run("get unknown template", func(t *testing.T) {
		_, err := store.Templates.Get(ctx, uuid.New().String())
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("delete template", func(t *testing.T) {
		tpl := newTestTemplate("contract-delete")
		require.NoError(t, store.Templates.Create(ctx, tpl))

		require.NoError(t, store.Templates.Delete(ctx, tpl.ID))
		_, err := store.Templates.Get(ctx, tpl.ID)
		assert.ErrorIs(t, err, ErrTemplateNotFound)

		assert.ErrorIs(t, store.Templates.Delete(ctx, tpl.ID), ErrTemplateNotFound)
	})

	t.Run("list templates respects limit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, store.Templates.Create(ctx, newTestTemplate(fmt.Sprintf("contract-list-%d", i))))
		}
		templates, err := store.Templates.List(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, templates, 2)
	})

	t.Run("creation logs are most recent first", func(t *testing.T) {
		base := time.Now().UTC().Truncate(time.Millisecond)
		for i := 0; i < 3; i++ {
			require.NoError(t, store.CreationLogs.Create(ctx, &models.CreationLog{
				ID:         uuid.New().String(),
				TemplateID: "tpl",
				ServerName: fmt.Sprintf("server-%d", i),
				ServerID:   fmt.Sprintf("%d", 1000+i),
				CreatedAt:  base.Add(time.Duration(i) * time.Hour),
				Success:    true,
			}))
		}

		logs, err := store.CreationLogs.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, "server-2", logs[0].ServerName)
		assert.Equal(t, "server-1", logs[1].ServerName)
	})

	t.Run("status checks round trip", func(t *testing.T) {
		check := &models.StatusCheck{
			ID:         uuid.New().String(),
			ClientName: "contract-client",
			Timestamp:  time.Now().UTC().Truncate(time.Millisecond),
		}
		require.NoError(t, store.StatusChecks.Create(ctx, check))

		checks, err := store.StatusChecks.List(ctx, 1000)
		require.NoError(t, err)

		var found bool
		for _, c := range checks {
			if c.ID == check.ID {
				found = true
				assert.Equal(t, "contract-client", c.ClientName)
			}
		}
		assert.True(t, found)
	})
}
