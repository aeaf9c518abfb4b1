package service

import (
	"context"

	"Campus_Community/internal/lifecycle"
	"Campus_Community/internal/model"
	"Campus_Community/internal/pkg"
	"Campus_Community/internal/pkg/errs"
	"Campus_Community/internal/rbac"
	"Campus_Community/internal/repository/mysql"
	"Campus_Community/internal/repository/redis"
	"Campus_Community/internal/search"
	"Campus_Community/internal/storage"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	repo      *mysql.UserRepository
	rSession  *redis.SessionRepository
	emailSvc  *EmailService
	lc        *lifecycle.Manager
	searchCfg search.Params
}

func NewUserService(lc *lifecycle.Manager, emailSvc *EmailService, searchCfg search.Params) *UserService {
	return &UserService{
		repo:      &mysql.UserRepository{DB: lc.DB()},
		rSession:  &redis.SessionRepository{},
		emailSvc:  emailSvc,
		lc:        lc,
		searchCfg: searchCfg,
	}
}

// Register 注册：验证码 + 证件照为必传，新账号一律待审核
func (s *UserService) Register(ctx context.Context, username, password, email, code string, idPic *lifecycle.ImageUpload) (uint64, error) {
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "required"
	}
	if len(password) < 8 {
		fields["password"] = "at least 8 characters"
	}
	if email == "" {
		fields["email"] = "required"
	}
	if idPic == nil {
		fields["id_picture"] = "required"
	}
	if len(fields) > 0 {
		return 0, errs.InvalidFields("invalid registration form", fields)
	}

	ok, err := s.emailSvc.VerifyCode("register", email, code)
	if err != nil || !ok {
		return 0, errs.Invalid("verification code incorrect or expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, errs.Internal(err)
	}

	return s.lc.Create(ctx, lifecycle.CreateSpec{
		Guard: func(db *gorm.DB) error {
			var count int64
			if err := db.Model(&model.User{}).
				Where("username = ? OR email = ?", username, email).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errs.Conflict("username or email already in use")
			}
			return nil
		},
		Image:     idPic,
		ThumbSize: storage.ThumbAvatar,
		Dir:       "avatars",
		Persist: func(tx *gorm.DB, media *lifecycle.StagedMedia) (uint64, error) {
			user := &model.User{
				Username: username,
				Password: string(hash),
				Email:    email,
				SiteRole: int(rbac.SiteUnapproved),
			}
			if media != nil {
				user.IDPicturePath = media.FullPath
				user.IDPictureThumbPath = media.ThumbPath
			}
			if err := tx.Create(user).Error; err != nil {
				return 0, err
			}
			return user.ID, nil
		},
	})
}

func (s *UserService) Login(username, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		return nil, errs.Invalid("invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, errs.Invalid("invalid username or password")
	}
	if user.Banned {
		return nil, errs.Forbidden("account is banned")
	}

	token, err := pkg.GeneratePair(user.ID, user.SiteRole)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if err = s.rSession.AddToken(user.ID, token.AccessToken); err != nil {
		return nil, errs.Internal(err)
	}
	return token, nil
}

func (s *UserService) Logout(userID uint64) error {
	return s.rSession.DeleteToken(userID)
}

func (s *UserService) Refresh(refreshToken string) (*pkg.Pair, error) {
	pair, err := pkg.RefreshPair(refreshToken)
	if err != nil {
		return nil, errs.Invalid(err.Error())
	}
	return pair, nil
}

// ChangePassword 登录态修改密码，成功后强制下线
func (s *UserService) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return errs.Invalid("old password is incorrect")
	}
	if len(newPassword) < 8 {
		return errs.Invalid("new password too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errs.Internal(err)
	}
	if err = s.repo.UpdatePassword(user, string(hash)); err != nil {
		return errs.Internal(err)
	}
	return s.Logout(userID)
}

// ResetByCode 忘记密码：邮箱验证码重置
func (s *UserService) ResetByCode(email, code, newPassword string) error {
	ok, err := s.emailSvc.VerifyCode("reset", email, code)
	if err != nil || !ok {
		return errs.Invalid("verification failed")
	}
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errs.Internal(err)
	}
	return s.repo.UpdatePassword(user, string(hash))
}

// subject 把两名用户装配成纯角色判定的输入
func (s *UserService) subjects(actorID, targetID uint64) (rbac.Subject, rbac.Subject, *model.User, error) {
	actor, err := s.repo.FindByID(actorID)
	if err != nil {
		return rbac.Subject{}, rbac.Subject{}, nil, err
	}
	target, err := s.repo.FindByID(targetID)
	if err != nil {
		return rbac.Subject{}, rbac.Subject{}, nil, err
	}
	a := rbac.Subject{ID: actor.ID, SiteRole: rbac.SiteRole(actor.SiteRole), Banned: actor.Banned}
	t := rbac.Subject{ID: target.ID, SiteRole: rbac.SiteRole(target.SiteRole), Banned: target.Banned}
	return a, t, target, nil
}

// Approve 待审核 → 已通过
func (s *UserService) Approve(actorID, targetID uint64) error {
	a, t, target, err := s.subjects(actorID, targetID)
	if err != nil {
		return err
	}
	if err := rbac.Check(a, t, rbac.ActionApproveUser); err != nil {
		return err
	}
	if target.SiteRole != int(rbac.SiteUnapproved) {
		return errs.Conflict("user is already approved")
	}
	return s.repo.UpdateSiteRole(targetID, int(rbac.SiteApproved))
}

// Reject 拒绝待审核用户：删号并清理证件照。
// 证件照 unlink 失败不拦删号（留孤儿文件好过留死账号行）。
func (s *UserService) Reject(ctx context.Context, actorID, targetID uint64) error {
	a, t, target, err := s.subjects(actorID, targetID)
	if err != nil {
		return err
	}
	if err := rbac.Check(a, t, rbac.ActionRejectUser); err != nil {
		return err
	}
	if target.SiteRole != int(rbac.SiteUnapproved) {
		return errs.Conflict("only unapproved users can be rejected")
	}

	return s.lc.Destroy(ctx, lifecycle.DestroySpec{
		Load: func(db *gorm.DB) ([]string, error) {
			return []string{target.IDPicturePath, target.IDPictureThumbPath}, nil
		},
		Delete: func(tx *gorm.DB) error {
			res := tx.Delete(&model.User{}, targetID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errs.NotFound("user not found")
			}
			return nil
		},
	})
}

// UpdateIDPicture 本人重传证件照：新图落盘并写回后旧图尽力删除
func (s *UserService) UpdateIDPicture(ctx context.Context, userID uint64, idPic *lifecycle.ImageUpload) error {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return err
	}
	return s.lc.Replace(ctx, lifecycle.ReplaceSpec{
		Guard: func() error {
			if user.Banned {
				return errs.Forbidden("account is banned")
			}
			return nil
		},
		Image:     idPic,
		ThumbSize: storage.ThumbAvatar,
		Dir:       "avatars",
		OldPaths:  []string{user.IDPicturePath, user.IDPictureThumbPath},
		Persist: func(tx *gorm.DB, media *lifecycle.StagedMedia) error {
			return tx.Model(&model.User{}).Where("id = ?", userID).
				Updates(map[string]any{
					"id_picture_path":       media.FullPath,
					"id_picture_thumb_path": media.ThumbPath,
				}).Error
		},
	})
}

func (s *UserService) Ban(actorID, targetID uint64) error {
	a, t, target, err := s.subjects(actorID, targetID)
	if err != nil {
		return err
	}
	if err := rbac.Check(a, t, rbac.ActionBanUser); err != nil {
		return err
	}
	if target.Banned {
		return errs.Conflict("user is already banned")
	}
	if err := s.repo.SetBanned(targetID, true); err != nil {
		return errs.Internal(err)
	}
	// 立即失效会话
	return s.rSession.DeleteToken(targetID)
}

func (s *UserService) Unban(actorID, targetID uint64) error {
	a, t, target, err := s.subjects(actorID, targetID)
	if err != nil {
		return err
	}
	if err := rbac.Check(a, t, rbac.ActionBanUser); err != nil {
		return err
	}
	if !target.Banned {
		return errs.Conflict("user is not banned")
	}
	return s.repo.SetBanned(targetID, false)
}

// AppointModerator 管理员任命版主
func (s *UserService) AppointModerator(actorID, targetID uint64) error {
	a, t, _, err := s.subjects(actorID, targetID)
	if err != nil {
		return err
	}
	if err := rbac.Check(a, t, rbac.ActionAppointModerator); err != nil {
		return err
	}
	return s.repo.UpdateSiteRole(targetID, int(rbac.SiteModerator))
}

func (s *UserService) DismissModerator(actorID, targetID uint64) error {
	a, t, _, err := s.subjects(actorID, targetID)
	if err != nil {
		return err
	}
	if err := rbac.Check(a, t, rbac.ActionDismissModerator); err != nil {
		return err
	}
	return s.repo.UpdateSiteRole(targetID, int(rbac.SiteApproved))
}

// Search 用户检索：用户名子串 + 可选角色过滤；零命中返回最近注册的推荐集
func (s *UserService) Search(term string, role int64) (search.Result[model.User], error) {
	return search.Run[model.User](s.repo.DB, s.searchCfg,
		search.Substring("username", term),
		search.EqualsInt("site_role", role),
	)
}
