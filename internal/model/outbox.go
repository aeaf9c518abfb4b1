package model

import "time"

// NotifyOutbox 通知事件表。业务写库事务内落一条事件，
// 由 relayer 异步投递到 kafka，失败标记重试。
type NotifyOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:24;not null"` // group_invite / group_kick / listing_sold ...
	ActorID   uint64 `gorm:"not null"`
	TargetID  uint64 `gorm:"not null"`
	GroupID   uint64 `gorm:"index"`
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NotifyOutbox) TableName() string { return "notify_outbox" }
