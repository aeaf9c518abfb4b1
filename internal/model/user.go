package model

import "time"

type User struct {
	ID       uint64 `gorm:"primaryKey"`
	Username string `gorm:"uniqueIndex;size:32;not null"`
	Password string `gorm:"size:255;not null"`
	Email    string `gorm:"uniqueIndex;size:64;not null"`
	// 站点角色：0=待审核 1=已通过 2=版主 3=管理员
	SiteRole int  `gorm:"not null;default:0;index"`
	Banned   bool `gorm:"not null;default:false"`
	// 注册时上传的证件照（原图+缩略图），审核通过前用于人工核验
	IDPicturePath      string `gorm:"size:255"`
	IDPictureThumbPath string `gorm:"size:255"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
