package models

import "time"

// CreationRequest 创建服务器请求，只入队不落库
type CreationRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
	ServerName string `json:"server_name" binding:"required,max=100"`
}

// CreationResult 一次创建请求的结果，每个请求只产生一次
type CreationResult struct {
	Success    bool     `json:"success"`
	ServerID   string   `json:"server_id,omitempty"`
	InviteLink string   `json:"invite_link,omitempty"`
	Message    string   `json:"message"`
	Warnings   []string `json:"warnings,omitempty"`
}

// CreationLog 成功创建的记录，只追加
type CreationLog struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	TemplateID string    `gorm:"type:varchar(36);index" json:"template_id" bson:"template_id"`
	ServerName string    `gorm:"type:varchar(255)" json:"server_name" bson:"server_name"`
	ServerID   string    `gorm:"type:varchar(32)" json:"server_id" bson:"server_id"`
	InviteLink *string   `gorm:"type:varchar(255)" json:"invite_link" bson:"invite_link,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at" bson:"created_at"`
	Success    bool      `json:"success" bson:"success"`
}

func (CreationLog) TableName() string {
	return "created_servers"
}
