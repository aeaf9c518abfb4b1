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

type ThreadService struct {
	repo       *mysql.ThreadRepository
	memberRepo *mysql.GroupMemberRepository
	userRepo   *mysql.UserRepository
	lc         *lifecycle.Manager
	searchCfg  search.Params
}

func NewThreadService(lc *lifecycle.Manager, searchCfg search.Params) *ThreadService {
	db := lc.DB()
	return &ThreadService{
		repo:       &mysql.ThreadRepository{DB: db},
		memberRepo: &mysql.GroupMemberRepository{DB: db},
		userRepo:   &mysql.UserRepository{DB: db},
		lc:         lc,
		searchCfg:  searchCfg,
	}
}

// memberSubject 非成员拿到 GroupNone，由调用方决定是否放行
func (s *ThreadService) memberSubject(userID, groupID uint64) (rbac.Subject, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return rbac.Subject{}, err
	}
	if user.Banned {
		return rbac.Subject{}, errs.Forbidden("account is banned")
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

// CreateThread 发主题：主题行、首楼与附件（如有）同事务落库
func (s *ThreadService) CreateThread(ctx context.Context, authorID, groupID uint64, title, content string, image *lifecycle.ImageUpload) (uint64, error) {
	if title == "" {
		return 0, errs.Invalid("title required")
	}
	if content == "" {
		return 0, errs.Invalid("content required")
	}
	actor, err := s.memberSubject(authorID, groupID)
	if err != nil {
		return 0, err
	}
	if actor.GroupRole == rbac.GroupNone {
		return 0, errs.Forbidden("only group members can post")
	}

	return s.lc.Create(ctx, lifecycle.CreateSpec{
		Image:     image,
		ThumbSize: storage.ThumbPost,
		Dir:       "posts",
		Persist: func(tx *gorm.DB, media *lifecycle.StagedMedia) (uint64, error) {
			thread := &model.Thread{GroupID: groupID, AuthorID: authorID, Title: title}
			if err := tx.Create(thread).Error; err != nil {
				return 0, err
			}
			post := &model.Post{
				ThreadID:   thread.ID,
				AuthorID:   authorID,
				Content:    content,
				IsOriginal: true,
			}
			if err := tx.Create(post).Error; err != nil {
				return 0, err
			}
			if media != nil {
				att := &model.Attachment{
					PostID:    post.ID,
					FullPath:  media.FullPath,
					ThumbPath: media.ThumbPath,
				}
				if err := tx.Create(att).Error; err != nil {
					return 0, err
				}
			}
			return thread.ID, nil
		},
	})
}

// Reply 回帖：可带一张图
func (s *ThreadService) Reply(ctx context.Context, authorID, threadID uint64, content string, image *lifecycle.ImageUpload) (uint64, error) {
	if content == "" {
		return 0, errs.Invalid("content required")
	}
	thread, err := s.repo.FindByID(threadID)
	if err != nil {
		return 0, err
	}
	actor, err := s.memberSubject(authorID, thread.GroupID)
	if err != nil {
		return 0, err
	}
	if actor.GroupRole == rbac.GroupNone {
		return 0, errs.Forbidden("only group members can post")
	}

	return s.lc.Create(ctx, lifecycle.CreateSpec{
		Image:     image,
		ThumbSize: storage.ThumbPost,
		Dir:       "posts",
		Persist: func(tx *gorm.DB, media *lifecycle.StagedMedia) (uint64, error) {
			post := &model.Post{ThreadID: threadID, AuthorID: authorID, Content: content}
			if err := tx.Create(post).Error; err != nil {
				return 0, err
			}
			if media != nil {
				att := &model.Attachment{
					PostID:    post.ID,
					FullPath:  media.FullPath,
					ThumbPath: media.ThumbPath,
				}
				if err := tx.Create(att).Error; err != nil {
					return 0, err
				}
			}
			return post.ID, nil
		},
	})
}

// DestroyThread 删主题：楼主本人、群管理侧或站点管理侧；
// 全部楼层附件 blob 尽力删除，行数据级联删除
func (s *ThreadService) DestroyThread(ctx context.Context, actorID, threadID uint64) error {
	thread, err := s.repo.FindByID(threadID)
	if err != nil {
		return err
	}
	actor, err := s.memberSubject(actorID, thread.GroupID)
	if err != nil {
		return err
	}
	return s.lc.Destroy(ctx, lifecycle.DestroySpec{
		Load: func(db *gorm.DB) ([]string, error) {
			return s.repo.MediaPaths(threadID)
		},
		Guard: func() error {
			if actor.ID == thread.AuthorID || actor.GroupRole >= rbac.GroupModerator {
				return nil
			}
			return rbac.Check(actor, rbac.Subject{ID: thread.AuthorID}, rbac.ActionDeleteThread)
		},
		Delete: func(tx *gorm.DB) error {
			return s.repo.DeleteCascade(tx, threadID)
		},
	})
}

// DeletePost 删楼层：首楼只能随主题一起删除
func (s *ThreadService) DeletePost(ctx context.Context, actorID, postID uint64) error {
	post, err := s.repo.FindPost(postID)
	if err != nil {
		return err
	}
	if post.IsOriginal {
		return errs.Forbidden("the original post can only be deleted with its thread")
	}
	thread, err := s.repo.FindByID(post.ThreadID)
	if err != nil {
		return err
	}
	actor, err := s.memberSubject(actorID, thread.GroupID)
	if err != nil {
		return err
	}

	return s.lc.Destroy(ctx, lifecycle.DestroySpec{
		Load: func(db *gorm.DB) ([]string, error) {
			var atts []model.Attachment
			if err := db.Where("post_id = ?", postID).Find(&atts).Error; err != nil {
				return nil, err
			}
			paths := make([]string, 0, len(atts)*2)
			for _, a := range atts {
				paths = append(paths, a.FullPath, a.ThumbPath)
			}
			return paths, nil
		},
		Guard: func() error {
			if actor.ID == post.AuthorID {
				return nil
			}
			return rbac.Check(actor, rbac.Subject{ID: post.AuthorID}, rbac.ActionDeletePost)
		},
		Delete: func(tx *gorm.DB) error {
			_, err := s.repo.DeletePost(tx, postID)
			return err
		},
	})
}

func (s *ThreadService) ListByGroup(actorID, groupID uint64, lastID uint64, lastCreatedAt int64, limit int) ([]model.Thread, error) {
	actor, err := s.memberSubject(actorID, groupID)
	if err != nil {
		return nil, err
	}
	if actor.GroupRole == rbac.GroupNone && actor.SiteRole < rbac.SiteModerator {
		return nil, errs.Forbidden("only group members can view threads")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.repo.ListByGroupCursor(groupID, lastID, lastCreatedAt, limit)
}

func (s *ThreadService) Posts(actorID, threadID uint64, page, size int) ([]model.Post, error) {
	thread, err := s.repo.FindByID(threadID)
	if err != nil {
		return nil, err
	}
	actor, err := s.memberSubject(actorID, thread.GroupID)
	if err != nil {
		return nil, err
	}
	if actor.GroupRole == rbac.GroupNone && actor.SiteRole < rbac.SiteModerator {
		return nil, errs.Forbidden("only group members can view threads")
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	return s.repo.ListPosts(threadID, (page-1)*size, size)
}

// Search 群内按标题检索，空命中时退回该群最新主题
func (s *ThreadService) Search(actorID, groupID uint64, term string) (search.Result[model.Thread], error) {
	actor, err := s.memberSubject(actorID, groupID)
	if err != nil {
		return search.Result[model.Thread]{}, err
	}
	if actor.GroupRole == rbac.GroupNone && actor.SiteRole < rbac.SiteModerator {
		return search.Result[model.Thread]{}, errs.Forbidden("only group members can view threads")
	}
	scope := s.lc.DB().Where("group_id = ?", groupID)
	return search.Run[model.Thread](scope, s.searchCfg,
		search.Substring("title", term),
	)
}
