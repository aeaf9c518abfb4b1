package model

import "time"

type Listing struct {
	ID          uint64 `gorm:"primaryKey;index:idx_listing_time_id,priority:2,sort:desc"`
	SellerID    uint64 `gorm:"not null;index"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"size:32;not null;index"`
	// 价格以分存储，避免浮点
	PriceCents     int64     `gorm:"not null;default:0"`
	PhotoPath      string    `gorm:"size:255"`
	PhotoThumbPath string    `gorm:"size:255"`
	CreatedAt      time.Time `gorm:"index:idx_listing_time_id,priority:1,sort:desc"`
	UpdatedAt      time.Time
}

// ListingCategories 闭合类目集合，提交值必须命中其一
var ListingCategories = []string{"Books", "Electronics", "Furniture", "Clothing", "Tickets", "Other"}

func ValidListingCategory(c string) bool {
	for _, v := range ListingCategories {
		if v == c {
			return true
		}
	}
	return false
}
