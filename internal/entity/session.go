package entity

import (
	"time"
)

// Session 价格监控会话, 价格以字符串形式存储
type Session struct {
	Id            string `gorm:"primaryKey;size:36"`
	OwnerId       string `gorm:"index;size:64"`
	Symbol        string `gorm:"index;size:20"`
	BuyThreshold  string
	SellThreshold string
	Status        string `gorm:"index;size:16"`
	BuyAlertSent  bool
	SellAlertSent bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const (
	SessionStatusActive  = "active"
	SessionStatusStopped = "stopped"
)

// PriceSample 每次成功获取价格都会记录一条
type PriceSample struct {
	Id         int64     `gorm:"primaryKey;autoIncrement"`
	SessionId  string    `gorm:"index:sample_session_time_idx;size:36"`
	Price      string
	ObservedAt time.Time `gorm:"index:sample_session_time_idx"`
}

// AlertRecord 已发送的告警, 写入后不再修改
type AlertRecord struct {
	Id        int64  `gorm:"primaryKey;autoIncrement"`
	SessionId string `gorm:"index;size:36"`
	Kind      string `gorm:"size:8"`
	Price     string
	Threshold string
	SentAt    time.Time `gorm:"index"`
}
