package model

import "time"

// Conversation 两人私信会话。无序对 (a,b) 统一存成 smaller/larger，
// uk_conv_pair 唯一索引是防止并发首次互发产生重复会话的真正保证。
type Conversation struct {
	ID        uint64 `gorm:"primaryKey"`
	SmallerID uint64 `gorm:"not null;index;uniqueIndex:uk_conv_pair"`
	LargerID  uint64 `gorm:"not null;index;uniqueIndex:uk_conv_pair"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Conversation) TableName() string { return "conversations" }

// PairKey 归一化无序对
func PairKey(a, b uint64) (smaller, larger uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

type Message struct {
	ID             uint64 `gorm:"primaryKey"`
	ConversationID uint64 `gorm:"not null;index:idx_msg_conv_id,priority:1"`
	SenderID       uint64 `gorm:"not null;index"`
	Content        string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}
