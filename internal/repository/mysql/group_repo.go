package mysql

import (
	"errors"

	"Campus_Community/internal/model"
	"Campus_Community/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository struct {
	DB *gorm.DB
}

type GroupMemberRepository struct {
	DB *gorm.DB
}

func (r *GroupRepository) FindByID(id uint64) (*model.Group, error) {
	var group model.Group
	err := r.DB.First(&group, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("group not found")
	}
	return &group, err
}

func (r *GroupRepository) FindByName(name string) (*model.Group, error) {
	var group model.Group
	err := r.DB.Where("name = ?", name).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("group not found")
	}
	return &group, err
}

func (r *GroupRepository) List(offset, limit int) ([]model.Group, error) {
	var list []model.Group
	err := r.DB.Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// MediaPaths 群组销毁前收集所有待删 blob：群头像 + 群内帖子附件
func (r *GroupRepository) MediaPaths(id uint64) ([]string, error) {
	group, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	var paths []string
	if group.AvatarPath != "" {
		paths = append(paths, group.AvatarPath, group.AvatarThumbPath)
	}

	var atts []model.Attachment
	err = r.DB.Model(&model.Attachment{}).
		Joins("JOIN posts ON posts.id = attachments.post_id").
		Joins("JOIN threads ON threads.id = posts.thread_id").
		Where("threads.group_id = ?", id).
		Find(&atts).Error
	if err != nil {
		return nil, err
	}
	for _, a := range atts {
		paths = append(paths, a.FullPath, a.ThumbPath)
	}
	return paths, nil
}

// DeleteCascade 事务内删除群组及全部从属行：成员、帖子楼层、附件、通知事件
func (r *GroupRepository) DeleteCascade(tx *gorm.DB, id uint64) error {
	var threadIDs []uint64
	if err := tx.Model(&model.Thread{}).Where("group_id = ?", id).Pluck("id", &threadIDs).Error; err != nil {
		return err
	}
	if len(threadIDs) > 0 {
		var postIDs []uint64
		if err := tx.Model(&model.Post{}).Where("thread_id IN ?", threadIDs).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&model.Attachment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("thread_id IN ?", threadIDs).Delete(&model.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&model.Thread{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("group_id = ?", id).Delete(&model.GroupMember{}).Error; err != nil {
		return err
	}
	if err := tx.Where("group_id = ?", id).Delete(&model.NotifyOutbox{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&model.Group{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("group not found")
	}
	return nil
}

// Join 幂等插入：(group_id, user_id) 已存在则不报错、不改角色
func (r *GroupMemberRepository) Join(member *model.GroupMember) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member).Error
}

func (r *GroupMemberRepository) Leave(groupID, userID uint64) error {
	return r.DB.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{}).Error
}

// RoleOf 查询用户群内角色；非成员返回 0
func (r *GroupMemberRepository) RoleOf(groupID, userID uint64) (int, error) {
	var member model.GroupMember
	err := r.DB.Select("role").
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return member.Role, nil
}

func (r *GroupMemberRepository) IsMember(groupID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupMemberRepository) UpdateRole(groupID, userID uint64, role int) error {
	res := r.DB.Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("membership not found")
	}
	return nil
}

// TransferAdmin 管理员移交：同一事务内旧管理员降为成员、新成员升为管理员，
// 保证任一时刻每个群有且仅有一个管理员
func (r *GroupMemberRepository) TransferAdmin(groupID, fromID, toID uint64) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.GroupMember{}).
			Where("group_id = ? AND user_id = ? AND role IN ?", groupID, toID, []int{1, 2}).
			Update("role", 3)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("target is not a member of this group")
		}
		return tx.Model(&model.GroupMember{}).
			Where("group_id = ? AND user_id = ? AND role = ?", groupID, fromID, 3).
			Update("role", 1).Error
	})
}

func (r *GroupMemberRepository) ListMembers(groupID uint64, offset, limit int) ([]model.GroupMember, error) {
	var list []model.GroupMember
	err := r.DB.Where("group_id = ?", groupID).
		Order("role desc, id asc").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}
