package mysql

import (
	"errors"

	"Campus_Community/internal/model"
	"Campus_Community/internal/pkg/errs"

	"gorm.io/gorm"
)

type ListingRepository struct {
	DB *gorm.DB
}

func (r *ListingRepository) Create(tx *gorm.DB, listing *model.Listing) error {
	return tx.Create(listing).Error
}

func (r *ListingRepository) FindByID(id uint64) (*model.Listing, error) {
	var listing model.Listing
	err := r.DB.First(&listing, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("listing not found")
	}
	return &listing, err
}

// MediaPaths 商品照片路径；无照片的商品返回空切片
func (r *ListingRepository) MediaPaths(id uint64) ([]string, error) {
	listing, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if listing.PhotoPath == "" {
		return nil, nil
	}
	return []string{listing.PhotoPath, listing.PhotoThumbPath}, nil
}

func (r *ListingRepository) Delete(tx *gorm.DB, id uint64) error {
	res := tx.Delete(&model.Listing{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("listing not found")
	}
	return nil
}

// ListBySeller 卖家主页用，时间倒序分页
func (r *ListingRepository) ListBySeller(sellerID uint64, offset, limit int) ([]model.Listing, error) {
	var list []model.Listing
	err := r.DB.Where("seller_id = ?", sellerID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}
