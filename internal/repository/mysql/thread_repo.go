package mysql

import (
	"errors"

	"Campus_Community/internal/model"
	"Campus_Community/internal/pkg/errs"

	"gorm.io/gorm"
)

type ThreadRepository struct {
	DB *gorm.DB
}

func (r *ThreadRepository) FindByID(id uint64) (*model.Thread, error) {
	var thread model.Thread
	err := r.DB.First(&thread, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("thread not found")
	}
	return &thread, err
}

func (r *ThreadRepository) FindPost(id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("post not found")
	}
	return &post, err
}

// MediaPaths 主题销毁前收集全部楼层的附件路径；无图主题返回空切片
func (r *ThreadRepository) MediaPaths(id uint64) ([]string, error) {
	if _, err := r.FindByID(id); err != nil {
		return nil, err
	}
	var atts []model.Attachment
	err := r.DB.Model(&model.Attachment{}).
		Joins("JOIN posts ON posts.id = attachments.post_id").
		Where("posts.thread_id = ?", id).
		Find(&atts).Error
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, a := range atts {
		paths = append(paths, a.FullPath, a.ThumbPath)
	}
	return paths, nil
}

// DeleteCascade 事务内删除主题与全部楼层、附件
func (r *ThreadRepository) DeleteCascade(tx *gorm.DB, id uint64) error {
	var postIDs []uint64
	if err := tx.Model(&model.Post{}).Where("thread_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
		return err
	}
	if len(postIDs) > 0 {
		if err := tx.Where("post_id IN ?", postIDs).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_id = ?", id).Delete(&model.Post{}).Error; err != nil {
			return err
		}
	}
	res := tx.Delete(&model.Thread{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("thread not found")
	}
	return nil
}

// DeletePost 删除单个楼层及其附件；主楼由服务层挡下，这里不再判断
func (r *ThreadRepository) DeletePost(tx *gorm.DB, postID uint64) ([]string, error) {
	var atts []model.Attachment
	if err := tx.Where("post_id = ?", postID).Find(&atts).Error; err != nil {
		return nil, err
	}
	var paths []string
	for _, a := range atts {
		paths = append(paths, a.FullPath, a.ThumbPath)
	}
	if len(atts) > 0 {
		if err := tx.Where("post_id = ?", postID).Delete(&model.Attachment{}).Error; err != nil {
			return nil, err
		}
	}
	res := tx.Delete(&model.Post{}, postID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.NotFound("post not found")
	}
	return paths, nil
}

func (r *ThreadRepository) CreateReply(post *model.Post) error {
	return r.DB.Create(post).Error
}

// ListByGroupCursor 群内主题列表，(created_at, id) 严格游标分页
func (r *ThreadRepository) ListByGroupCursor(groupID uint64, lastID uint64, lastCreatedAt int64, limit int) ([]model.Thread, error) {
	var list []model.Thread
	q := r.DB.Where("group_id = ?", groupID)
	if lastCreatedAt > 0 {
		q = q.Where("(created_at < FROM_UNIXTIME(?) OR (created_at = FROM_UNIXTIME(?) AND id < ?))", lastCreatedAt, lastCreatedAt, lastID)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// ListPosts 楼层按时间正序
func (r *ThreadRepository) ListPosts(threadID uint64, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}
