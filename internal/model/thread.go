package model

import "time"

type Thread struct {
	ID        uint64    `gorm:"primaryKey;index:idx_thread_group_time,priority:3,sort:desc"`
	GroupID   uint64    `gorm:"not null;index:idx_thread_group_time,priority:1"`
	AuthorID  uint64    `gorm:"not null;index"`
	Title     string    `gorm:"size:200;not null"`
	CreatedAt time.Time `gorm:"index:idx_thread_group_time,priority:2,sort:desc"`
	UpdatedAt time.Time
}

type Post struct {
	ID       uint64 `gorm:"primaryKey"`
	ThreadID uint64 `gorm:"not null;index"`
	AuthorID uint64 `gorm:"not null;index"`
	Content  string `gorm:"type:text;not null"`
	// 主楼随 thread 创建，只能随 thread 一起删除
	IsOriginal bool `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Attachment 帖子图片，原图+缩略图成对出现
type Attachment struct {
	ID        uint64 `gorm:"primaryKey"`
	PostID    uint64 `gorm:"not null;index"`
	FullPath  string `gorm:"size:255;not null"`
	ThumbPath string `gorm:"size:255;not null"`
	CreatedAt time.Time
}
