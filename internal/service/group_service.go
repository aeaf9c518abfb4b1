package service

import (
	"context"

	"Campus_Community/internal/lifecycle"
	"Campus_Community/internal/model"
	"Campus_Community/internal/pkg"
	"Campus_Community/internal/pkg/errs"
	"Campus_Community/internal/rbac"
	"Campus_Community/internal/repository/mysql"
	"Campus_Community/internal/storage"

	"gorm.io/gorm"
)

type GroupService struct {
	repo       *mysql.GroupRepository
	memberRepo *mysql.GroupMemberRepository
	userRepo   *mysql.UserRepository
	lc         *lifecycle.Manager
}

func NewGroupService(lc *lifecycle.Manager) *GroupService {
	db := lc.DB()
	return &GroupService{
		repo:       &mysql.GroupRepository{DB: db},
		memberRepo: &mysql.GroupMemberRepository{DB: db},
		userRepo:   &mysql.UserRepository{DB: db},
		lc:         lc,
	}
}

// requireApproved 站点侧资格：已通过审核且未封禁
func (s *GroupService) requireApproved(userID uint64) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Banned {
		return nil, errs.Forbidden("account is banned")
	}
	if user.SiteRole < int(rbac.SiteApproved) {
		return nil, errs.Forbidden("account is pending approval")
	}
	return user, nil
}

// actorSubject 装配 (站点角色, 群内角色) 二维判定输入
func (s *GroupService) actorSubject(userID, groupID uint64) (rbac.Subject, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return rbac.Subject{}, err
	}
	role, err := s.memberRepo.RoleOf(groupID, userID)
	if err != nil {
		return rbac.Subject{}, errs.Internal(err)
	}
	return rbac.Subject{
		ID:        user.ID,
		SiteRole:  rbac.SiteRole(user.SiteRole),
		GroupRole: rbac.GroupRole(role),
		Banned:    user.Banned,
	}, nil
}

// Create 建群：群记录与创建者的管理员成员行在同一事务内写入，
// 头像（如有）失败时连同缩略图一起回收
func (s *GroupService) Create(ctx context.Context, creatorID uint64, name, desc string, avatar *lifecycle.ImageUpload) (uint64, error) {
	if name == "" {
		return 0, errs.Invalid("group name required")
	}
	if _, err := s.requireApproved(creatorID); err != nil {
		return 0, err
	}

	joinCode, err := pkg.RandJoinCode(8)
	if err != nil {
		return 0, errs.Internal(err)
	}

	return s.lc.Create(ctx, lifecycle.CreateSpec{
		Guard: func(db *gorm.DB) error {
			var count int64
			if err := db.Model(&model.Group{}).Where("name = ?", name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errs.Conflict("group name already in use")
			}
			return nil
		},
		Image:     avatar,
		ThumbSize: storage.ThumbAvatar,
		Dir:       "groups",
		Persist: func(tx *gorm.DB, media *lifecycle.StagedMedia) (uint64, error) {
			group := &model.Group{
				Name:        name,
				Description: desc,
				JoinCode:    joinCode,
				CreatorID:   creatorID,
			}
			if media != nil {
				group.AvatarPath = media.FullPath
				group.AvatarThumbPath = media.ThumbPath
			}
			if err := tx.Create(group).Error; err != nil {
				return 0, err
			}
			member := &model.GroupMember{
				GroupID: group.ID,
				UserID:  creatorID,
				Role:    int(rbac.GroupAdmin),
			}
			if err := tx.Create(member).Error; err != nil {
				return 0, err
			}
			return group.ID, nil
		},
	})
}

// Join 凭口令入群；口令不对不落任何行
func (s *GroupService) Join(userID, groupID uint64, joinCode string) error {
	if _, err := s.requireApproved(userID); err != nil {
		return err
	}
	group, err := s.repo.FindByID(groupID)
	if err != nil {
		return err
	}
	if group.JoinCode != joinCode {
		return errs.Forbidden("Invalid join code")
	}
	isMember, err := s.memberRepo.IsMember(groupID, userID)
	if err != nil {
		return errs.Internal(err)
	}
	if isMember {
		return errs.Conflict("already a member")
	}
	return s.memberRepo.Join(&model.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Role:    int(rbac.GroupMember),
	})
}

func (s *GroupService) Leave(userID, groupID uint64) error {
	actor, err := s.actorSubject(userID, groupID)
	if err != nil {
		return err
	}
	if actor.GroupRole == rbac.GroupNone {
		return errs.NotFound("membership not found")
	}
	if err := rbac.Check(actor, rbac.Subject{}, rbac.ActionGroupLeave); err != nil {
		return err
	}
	return s.memberRepo.Leave(groupID, userID)
}

// Kick 踢人：写库与通知事件同事务
func (s *GroupService) Kick(ctx context.Context, actorID, groupID, targetID uint64) error {
	actor, err := s.actorSubject(actorID, groupID)
	if err != nil {
		return err
	}
	target, err := s.actorSubject(targetID, groupID)
	if err != nil {
		return err
	}
	if target.GroupRole == rbac.GroupNone {
		return errs.NotFound("membership not found")
	}
	if err := rbac.Check(actor, target, rbac.ActionGroupKick); err != nil {
		return err
	}
	return s.lc.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ? AND user_id = ?", groupID, targetID).
			Delete(&model.GroupMember{}).Error; err != nil {
			return err
		}
		return mysql.InsertEvent(tx, "group_kick", actorID, targetID, groupID)
	})
}

func (s *GroupService) Promote(actorID, groupID, targetID uint64) error {
	return s.changeRole(actorID, groupID, targetID, rbac.ActionGroupPromote, rbac.GroupModerator)
}

func (s *GroupService) Demote(actorID, groupID, targetID uint64) error {
	return s.changeRole(actorID, groupID, targetID, rbac.ActionGroupDemote, rbac.GroupMember)
}

func (s *GroupService) changeRole(actorID, groupID, targetID uint64, action rbac.Action, newRole rbac.GroupRole) error {
	actor, err := s.actorSubject(actorID, groupID)
	if err != nil {
		return err
	}
	target, err := s.actorSubject(targetID, groupID)
	if err != nil {
		return err
	}
	if target.GroupRole == rbac.GroupNone {
		return errs.NotFound("membership not found")
	}
	if err := rbac.Check(actor, target, action); err != nil {
		return err
	}
	return s.memberRepo.UpdateRole(groupID, targetID, int(newRole))
}

// TransferAdmin 管理员移交，群管理员唯一性由仓储事务保证
func (s *GroupService) TransferAdmin(actorID, groupID, targetID uint64) error {
	actor, err := s.actorSubject(actorID, groupID)
	if err != nil {
		return err
	}
	if actor.GroupRole != rbac.GroupAdmin {
		return errs.Forbidden("group administrator privileges required")
	}
	return s.memberRepo.TransferAdmin(groupID, actorID, targetID)
}

// Invite 站内邀请：只落通知事件，送达由 relayer 异步完成
func (s *GroupService) Invite(ctx context.Context, actorID, groupID, targetID uint64) error {
	actor, err := s.actorSubject(actorID, groupID)
	if err != nil {
		return err
	}
	if actor.GroupRole == rbac.GroupNone {
		return errs.Forbidden("only members can invite")
	}
	if _, err := s.userRepo.FindByID(targetID); err != nil {
		return err
	}
	isMember, err := s.memberRepo.IsMember(groupID, targetID)
	if err != nil {
		return errs.Internal(err)
	}
	if isMember {
		return errs.Conflict("already a member")
	}
	return s.lc.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return mysql.InsertEvent(tx, "group_invite", actorID, targetID, groupID)
	})
}

// Destroy 解散群组：头像与群内全部附件 blob 尽力删除，
// 成员、主题、楼层、附件行随群记录级联删除
func (s *GroupService) Destroy(ctx context.Context, actorID, groupID uint64) error {
	return s.lc.Destroy(ctx, lifecycle.DestroySpec{
		Load: func(db *gorm.DB) ([]string, error) {
			return s.repo.MediaPaths(groupID)
		},
		Guard: func() error {
			actor, err := s.actorSubject(actorID, groupID)
			if err != nil {
				return err
			}
			if actor.GroupRole == rbac.GroupAdmin || actor.SiteRole >= rbac.SiteModerator {
				return nil
			}
			return errs.Forbidden("only the group administrator or a site moderator can delete this group")
		},
		Delete: func(tx *gorm.DB) error {
			return s.repo.DeleteCascade(tx, groupID)
		},
	})
}

// UpdateAvatar 更换群头像：新图先落盘，路径写回成功后旧图尽力删除
func (s *GroupService) UpdateAvatar(ctx context.Context, actorID, groupID uint64, avatar *lifecycle.ImageUpload) error {
	group, err := s.repo.FindByID(groupID)
	if err != nil {
		return err
	}
	return s.lc.Replace(ctx, lifecycle.ReplaceSpec{
		Guard: func() error {
			actor, err := s.actorSubject(actorID, groupID)
			if err != nil {
				return err
			}
			if actor.GroupRole == rbac.GroupAdmin || actor.SiteRole >= rbac.SiteModerator {
				return nil
			}
			return errs.Forbidden("only the group administrator or a site moderator can change the group avatar")
		},
		Image:     avatar,
		ThumbSize: storage.ThumbAvatar,
		Dir:       "groups",
		OldPaths:  []string{group.AvatarPath, group.AvatarThumbPath},
		Persist: func(tx *gorm.DB, media *lifecycle.StagedMedia) error {
			return tx.Model(&model.Group{}).Where("id = ?", groupID).
				Updates(map[string]any{
					"avatar_path":       media.FullPath,
					"avatar_thumb_path": media.ThumbPath,
				}).Error
		},
	})
}

func (s *GroupService) List(page, size int) ([]model.Group, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	return s.repo.List((page-1)*size, size)
}

func (s *GroupService) Members(groupID uint64, page, size int) ([]model.GroupMember, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	if _, err := s.repo.FindByID(groupID); err != nil {
		return nil, err
	}
	return s.memberRepo.ListMembers(groupID, (page-1)*size, size)
}
