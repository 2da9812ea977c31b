package models

import "time"

// StorageEntry 本地键值存储表（浏览器 localStorage 的服务端等价物）
type StorageEntry struct {
	Key       string    `gorm:"primarykey;type:varchar(191)" json:"key"` // 存储键
	Value     string    `gorm:"type:text;not null" json:"value"`         // 原始 JSON 文本
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                 // 更新时间
}

// TableName 指定表名
func (StorageEntry) TableName() string {
	return "storage_entries"
}
