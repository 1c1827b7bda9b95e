package models

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleSpec_UnmarshalDefaults(t *testing.T) {
	t.Run("missing fields get defaults", func(t *testing.T) {
		var role RoleSpec
		require.NoError(t, json.Unmarshal([]byte(`{"name":"Member"}`), &role))

		assert.Equal(t, "Member", role.Name)
		assert.Equal(t, "#000000", role.Color)
		assert.Equal(t, int64(0), role.Permissions)
		assert.True(t, role.Mentionable)
		assert.False(t, role.Hoist)
	})

	t.Run("explicit values win", func(t *testing.T) {
		var role RoleSpec
		raw := `{"name":"Admin","color":"#ff0000","permissions":8,"mentionable":false,"hoist":true}`
		require.NoError(t, json.Unmarshal([]byte(raw), &role))

		assert.Equal(t, "#ff0000", role.Color)
		assert.Equal(t, int64(8), role.Permissions)
		assert.False(t, role.Mentionable)
		assert.True(t, role.Hoist)
	})

	t.Run("type mismatch is an error", func(t *testing.T) {
		var role RoleSpec
		assert.Error(t, json.Unmarshal([]byte(`{"name":"x","permissions":"all"}`), &role))
	})
}

func TestRoleSpec_IsEveryone(t *testing.T) {
	assert.True(t, RoleSpec{Name: "@everyone"}.IsEveryone())
	assert.True(t, RoleSpec{Name: "@Everyone"}.IsEveryone())
	assert.False(t, RoleSpec{Name: "everyone"}.IsEveryone())
	assert.False(t, RoleSpec{Name: "Moderator"}.IsEveryone())
}

func TestRoleSpec_ColorValue(t *testing.T) {
	tests := []struct {
		color   string
		want    int
		wantErr bool
	}{
		{"#000000", 0, false},
		{"#ff0000", 0xff0000, false},
		{"3498db", 0x3498db, false},
		{"", 0, false},
		{"#zzzzzz", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			got, err := RoleSpec{Color: tt.color}.ColorValue()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleSpec_ColorValueProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("formatted colors parse back to the same value", prop.ForAll(
		func(v int) bool {
			got, err := RoleSpec{Color: fmt.Sprintf("#%06x", v)}.ColorValue()
			return err == nil && got == v
		},
		gen.IntRange(0, 0xFFFFFF),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestTemplate_JSONRoundTripKeepsOrder(t *testing.T) {
	raw := `{
		"name": "Gaming",
		"channels": [
			{"name": "General", "type": "category"},
			{"name": "chat", "type": "text", "category": "General", "position": 1},
			{"name": "Lobby", "type": "voice", "category": "General", "position": 2}
		],
		"roles": [{"name": "Admin", "color": "#e74c3c", "permissions": 8}]
	}`

	var tpl Template
	require.NoError(t, json.Unmarshal([]byte(raw), &tpl))

	require.Len(t, tpl.Channels, 3)
	assert.Equal(t, ChannelCategory, tpl.Channels[0].Type)
	assert.Equal(t, "chat", tpl.Channels[1].Name)
	assert.Equal(t, "General", tpl.Channels[2].Category)
	require.Len(t, tpl.Roles, 1)
	assert.True(t, tpl.Roles[0].Mentionable)
}
