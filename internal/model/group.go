package model

import "time"

type Group struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:64;not null"`
	Description string `gorm:"type:text"`
	// 入群口令，创建时生成，群管理员可重置
	JoinCode        string `gorm:"size:16;not null"`
	CreatorID       uint64 `gorm:"not null;index"`
	AvatarPath      string `gorm:"size:255"`
	AvatarThumbPath string `gorm:"size:255"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type GroupMember struct {
	ID      uint64 `gorm:"primaryKey"`
	GroupID uint64 `gorm:"not null;index;uniqueIndex:uk_group_user"`
	UserID  uint64 `gorm:"not null;index;uniqueIndex:uk_group_user"`
	// 群内角色：1=成员 2=版主 3=管理员；每个群恒有且仅有一个管理员
	Role      int `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
