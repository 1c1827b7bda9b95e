package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ChannelKind 频道类型
type ChannelKind string

const (
	ChannelCategory ChannelKind = "category"
	ChannelText     ChannelKind = "text"
	ChannelVoice    ChannelKind = "voice"
)

// EveryoneRole 是每个 Guild 自带的保留角色，创建时跳过
const EveryoneRole = "@everyone"

// Template 服务器模板：频道与角色的布局，创建后不可修改（只能删除）
type Template struct {
	ID          string        `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name" bson:"name" validate:"required"`
	Description string        `gorm:"type:text" json:"description" bson:"description"`
	IconURL     *string       `gorm:"type:text" json:"icon_url" bson:"icon_url,omitempty"`
	Channels    []ChannelSpec `gorm:"serializer:json;type:jsonb" json:"channels" bson:"channels" validate:"required,dive"`
	Roles       []RoleSpec    `gorm:"serializer:json;type:jsonb" json:"roles" bson:"roles" validate:"required,dive"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at" bson:"created_at"`
	CreatedBy   *string       `gorm:"type:varchar(255)" json:"created_by" bson:"created_by,omitempty"`
}

func (Template) TableName() string {
	return "discord_templates"
}

// ChannelSpec 模板中的一个频道；Category 按名称引用同一模板中的分类频道
type ChannelSpec struct {
	Name        string         `json:"name" bson:"name" validate:"required"`
	Type        ChannelKind    `json:"type" bson:"type" validate:"required,oneof=category text voice"`
	Category    string         `json:"category,omitempty" bson:"category,omitempty"`
	Position    int            `json:"position" bson:"position" validate:"gte=0"`
	Permissions map[string]any `json:"permissions,omitempty" bson:"permissions,omitempty"`
}

// RoleSpec 模板中的一个角色
type RoleSpec struct {
	Name        string `json:"name" bson:"name" validate:"required"`
	Color       string `json:"color" bson:"color"`
	Permissions int64  `json:"permissions" bson:"permissions" validate:"gte=0"`
	Mentionable bool   `json:"mentionable" bson:"mentionable"`
	Hoist       bool   `json:"hoist" bson:"hoist"`
}

// UnmarshalJSON 为缺省字段填充默认值：color=#000000, mentionable=true
func (r *RoleSpec) UnmarshalJSON(data []byte) error {
	type rawRole RoleSpec
	role := rawRole{Color: "#000000", Mentionable: true}
	if err := json.Unmarshal(data, &role); err != nil {
		return err
	}
	*r = RoleSpec(role)
	return nil
}

// IsEveryone 判断是否为保留的 @everyone 角色
func (r RoleSpec) IsEveryone() bool {
	return strings.EqualFold(r.Name, EveryoneRole)
}

// ColorValue 把 "#RRGGBB" 解析为整数颜色值，空字符串视为 0
// 上传时不校验颜色格式，非法值在创建该角色时报错并跳过
func (r RoleSpec) ColorValue() (int, error) {
	hex := strings.TrimPrefix(r.Color, "#")
	if hex == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid role color %q: %w", r.Color, err)
	}
	return int(v), nil
}
