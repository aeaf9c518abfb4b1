package service

import (
	"context"

	"Campus_Community/internal/lifecycle"
	"Campus_Community/internal/model"
	"Campus_Community/internal/pkg/errs"
	"Campus_Community/internal/rbac"
	"Campus_Community/internal/repository/mysql"
	"Campus_Community/internal/search"
	"Campus_Community/internal/storage"

	"gorm.io/gorm"
)

type ListingService struct {
	repo      *mysql.ListingRepository
	userRepo  *mysql.UserRepository
	lc        *lifecycle.Manager
	searchCfg search.Params
}

func NewListingService(lc *lifecycle.Manager, searchCfg search.Params) *ListingService {
	db := lc.DB()
	return &ListingService{
		repo:      &mysql.ListingRepository{DB: db},
		userRepo:  &mysql.UserRepository{DB: db},
		lc:        lc,
		searchCfg: searchCfg,
	}
}

// Create 发布商品：照片必传，品类必须落在固定集合内
func (s *ListingService) Create(ctx context.Context, sellerID uint64, title, desc, category string, priceCents int64, photo *lifecycle.ImageUpload) (uint64, error) {
	if title == "" {
		return 0, errs.Invalid("title required")
	}
	if !model.ValidListingCategory(category) {
		return 0, errs.Invalid("unknown category")
	}
	if priceCents < 0 {
		return 0, errs.Invalid("price cannot be negative")
	}
	if photo == nil {
		return 0, errs.Invalid("photo required")
	}

	seller, err := s.userRepo.FindByID(sellerID)
	if err != nil {
		return 0, err
	}
	if seller.Banned {
		return 0, errs.Forbidden("account is banned")
	}
	if seller.SiteRole < int(rbac.SiteApproved) {
		return 0, errs.Forbidden("account is pending approval")
	}

	return s.lc.Create(ctx, lifecycle.CreateSpec{
		Image:     photo,
		ThumbSize: storage.ThumbListing,
		Dir:       "listings",
		Persist: func(tx *gorm.DB, media *lifecycle.StagedMedia) (uint64, error) {
			listing := &model.Listing{
				SellerID:       sellerID,
				Title:          title,
				Description:    desc,
				Category:       category,
				PriceCents:     priceCents,
				PhotoPath:      media.FullPath,
				PhotoThumbPath: media.ThumbPath,
			}
			if err := s.repo.Create(tx, listing); err != nil {
				return 0, err
			}
			return listing.ID, nil
		},
	})
}

// Destroy 下架商品：卖家本人或站点管理侧可删；重复删除得到 NotFound
func (s *ListingService) Destroy(ctx context.Context, actorID, listingID uint64) error {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return err
	}
	listing, err := s.repo.FindByID(listingID)
	if err != nil {
		return err
	}
	return s.lc.Destroy(ctx, lifecycle.DestroySpec{
		Load: func(db *gorm.DB) ([]string, error) {
			return s.repo.MediaPaths(listingID)
		},
		Guard: func() error {
			return rbac.Check(
				rbac.Subject{ID: actor.ID, SiteRole: rbac.SiteRole(actor.SiteRole), Banned: actor.Banned},
				rbac.Subject{ID: listing.SellerID},
				rbac.ActionDeleteListing,
			)
		},
		Delete: func(tx *gorm.DB) error {
			return s.repo.Delete(tx, listingID)
		},
	})
}

func (s *ListingService) Get(listingID uint64) (*model.Listing, error) {
	return s.repo.FindByID(listingID)
}

func (s *ListingService) BySeller(sellerID uint64, page, size int) ([]model.Listing, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	return s.repo.ListBySeller(sellerID, (page-1)*size, size)
}

// Search 组合筛选：标题子串 + 品类等值 + 价格上限；
// 全空命中时退回最新在售商品作为推荐
func (s *ListingService) Search(term, category string, maxPriceCents int64) (search.Result[model.Listing], error) {
	if category != "" && !model.ValidListingCategory(category) {
		return search.Result[model.Listing]{}, errs.Invalid("unknown category")
	}
	return search.Run[model.Listing](s.lc.DB(), s.searchCfg,
		search.Substring("title", term),
		search.Equals("category", category),
		search.Ceiling("price_cents", maxPriceCents),
	)
}
