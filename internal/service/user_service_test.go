package service

import (
	"context"
	"testing"

	"Campus_Community/internal/model"
	"Campus_Community/internal/pkg/errs"
	"Campus_Community/internal/rbac"
	"Campus_Community/internal/search"
)

func newUserServiceForTest(t *testing.T) *UserService {
	t.Helper()
	lc, _ := setupManager(t)
	return NewUserService(lc, nil, search.Params{})
}

// 测试内容：审批把待审核用户推进到已通过，重复审批 Conflict。
func TestApprove(t *testing.T) {
	svc := newUserServiceForTest(t)
	mod := seedUser(t, svc.repo.DB, "mod", rbac.SiteModerator)
	pending := seedUser(t, svc.repo.DB, "newbie", rbac.SiteUnapproved)
	plain := seedUser(t, svc.repo.DB, "plain", rbac.SiteApproved)

	if err := svc.Approve(plain.ID, pending.ID); !errs.IsForbidden(err) {
		t.Fatalf("普通用户审批期望 Forbidden, got %v", err)
	}
	if err := svc.Approve(mod.ID, pending.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	refreshed, _ := svc.repo.FindByID(pending.ID)
	if refreshed.SiteRole != int(rbac.SiteApproved) {
		t.Fatalf("角色应为已通过, got %d", refreshed.SiteRole)
	}
	if err := svc.Approve(mod.ID, pending.ID); !errs.IsConflict(err) {
		t.Fatalf("重复审批期望 Conflict, got %v", err)
	}
}

// 测试内容：拒绝注册删掉账号行并回收证件照 blob。
func TestReject(t *testing.T) {
	lc, blobs := setupManager(t)
	svc := NewUserService(lc, nil, search.Params{})
	mod := seedUser(t, lc.DB(), "mod", rbac.SiteModerator)

	full, _ := blobs.Save([]byte("id"), "avatars", ".png")
	thumb, _ := blobs.Save([]byte("thumb"), "avatars/thumbs", ".png")
	pending := &model.User{
		Username: "newbie", Password: "x", Email: "newbie@example.com",
		SiteRole: int(rbac.SiteUnapproved), IDPicturePath: full, IDPictureThumbPath: thumb,
	}
	if err := lc.DB().Create(pending).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Reject(context.Background(), mod.ID, pending.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if blobs.Count() != 0 {
		t.Fatalf("证件照应被回收, got %d", blobs.Count())
	}
	if _, err := svc.repo.FindByID(pending.ID); !errs.IsNotFound(err) {
		t.Fatalf("账号行应消失, got %v", err)
	}
}

// 测试内容：已通过的用户不能再被拒绝。
func TestReject_ApprovedUser(t *testing.T) {
	svc := newUserServiceForTest(t)
	mod := seedUser(t, svc.repo.DB, "mod", rbac.SiteModerator)
	plain := seedUser(t, svc.repo.DB, "plain", rbac.SiteApproved)

	if err := svc.Reject(context.Background(), mod.ID, plain.ID); !errs.IsConflict(err) {
		t.Fatalf("期望 Conflict, got %v", err)
	}
}

// 测试内容：版主任免只有管理员能做，角色写回正确。
func TestModeratorAppointment(t *testing.T) {
	svc := newUserServiceForTest(t)
	admin := seedUser(t, svc.repo.DB, "root", rbac.SiteAdmin)
	mod := seedUser(t, svc.repo.DB, "mod", rbac.SiteModerator)
	plain := seedUser(t, svc.repo.DB, "plain", rbac.SiteApproved)

	if err := svc.AppointModerator(mod.ID, plain.ID); !errs.IsForbidden(err) {
		t.Fatalf("版主任命版主期望 Forbidden, got %v", err)
	}
	if err := svc.AppointModerator(admin.ID, plain.ID); err != nil {
		t.Fatalf("AppointModerator: %v", err)
	}
	refreshed, _ := svc.repo.FindByID(plain.ID)
	if refreshed.SiteRole != int(rbac.SiteModerator) {
		t.Fatalf("任命后应为版主, got %d", refreshed.SiteRole)
	}

	if err := svc.DismissModerator(admin.ID, plain.ID); err != nil {
		t.Fatalf("DismissModerator: %v", err)
	}
	refreshed, _ = svc.repo.FindByID(plain.ID)
	if refreshed.SiteRole != int(rbac.SiteApproved) {
		t.Fatalf("解除后应回到已通过, got %d", refreshed.SiteRole)
	}
}

// 测试内容：用户名子串+角色过滤检索，零命中退回推荐集。
func TestUserSearch(t *testing.T) {
	svc := newUserServiceForTest(t)
	seedUser(t, svc.repo.DB, "alice", rbac.SiteApproved)
	seedUser(t, svc.repo.DB, "alicia", rbac.SiteModerator)
	seedUser(t, svc.repo.DB, "bob", rbac.SiteApproved)

	res, err := svc.Search("alic", -1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !res.Matched || len(res.Items) != 2 {
		t.Fatalf("期望命中 2 条, got %d", len(res.Items))
	}

	res, err = svc.Search("alic", int64(rbac.SiteModerator))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !res.Matched || len(res.Items) != 1 || res.Items[0].Username != "alicia" {
		t.Fatalf("角色过滤错误: %+v", res.Items)
	}

	res, err = svc.Search("zzz", -1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Matched || len(res.Items) == 0 {
		t.Fatalf("零命中应退回推荐集, got %+v", res)
	}
}

// 测试内容：重传证件照换掉旧 blob 并写回新路径，封禁用户被拒。
func TestUpdateIDPicture(t *testing.T) {
	lc, blobs := setupManager(t)
	svc := NewUserService(lc, nil, search.Params{})
	ctx := context.Background()

	full, _ := blobs.Save([]byte("id"), "avatars", ".png")
	thumb, _ := blobs.Save([]byte("thumb"), "avatars/thumbs", ".png")
	u := &model.User{
		Username: "newbie", Password: "x", Email: "newbie@example.com",
		SiteRole: int(rbac.SiteUnapproved), IDPicturePath: full, IDPictureThumbPath: thumb,
	}
	if err := lc.DB().Create(u).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.UpdateIDPicture(ctx, u.ID, pngImage(t)); err != nil {
		t.Fatalf("UpdateIDPicture: %v", err)
	}
	if blobs.Count() != 2 {
		t.Fatalf("期望只剩新的 2 份 blob, got %d", blobs.Count())
	}
	refreshed, _ := svc.repo.FindByID(u.ID)
	if refreshed.IDPicturePath == full || refreshed.IDPicturePath == "" {
		t.Fatalf("证件照路径未更新: %q", refreshed.IDPicturePath)
	}

	banned := seedUser(t, lc.DB(), "banned", rbac.SiteApproved)
	if err := lc.DB().Model(&model.User{}).Where("id = ?", banned.ID).
		Update("banned", true).Error; err != nil {
		t.Fatalf("ban: %v", err)
	}
	if err := svc.UpdateIDPicture(ctx, banned.ID, pngImage(t)); !errs.IsForbidden(err) {
		t.Fatalf("封禁用户重传期望 Forbidden, got %v", err)
	}
}
