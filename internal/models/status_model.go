package models

import "time"

// StatusCheck 客户端上报的连通性检查记录
type StatusCheck struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	ClientName string    `gorm:"type:varchar(255)" json:"client_name" bson:"client_name"`
	Timestamp  time.Time `gorm:"index" json:"timestamp" bson:"timestamp"`
}

func (StatusCheck) TableName() string {
	return "status_checks"
}

type StatusCheckCreate struct {
	ClientName string `json:"client_name" binding:"required"`
}
