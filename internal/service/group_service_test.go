package service

import (
	"context"
	"testing"

	"Campus_Community/internal/model"
	"Campus_Community/internal/pkg/errs"
	"Campus_Community/internal/rbac"
)

// 测试内容：建群后创建者持有管理员成员行，且群带上了生成的入群口令。
func TestGroupCreate_CreatorBecomesAdmin(t *testing.T) {
	lc, _ := setupManager(t)
	svc := NewGroupService(lc)
	creator := seedUser(t, lc.DB(), "alice", rbac.SiteApproved)

	groupID, err := svc.Create(context.Background(), creator.ID, "chess club", "weekly games", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var group model.Group
	if err := lc.DB().First(&group, groupID).Error; err != nil {
		t.Fatalf("group row: %v", err)
	}
	if len(group.JoinCode) != 8 {
		t.Fatalf("期望 8 位入群口令, got %q", group.JoinCode)
	}

	role, err := svc.memberRepo.RoleOf(groupID, creator.ID)
	if err != nil {
		t.Fatalf("RoleOf: %v", err)
	}
	if role != int(rbac.GroupAdmin) {
		t.Fatalf("创建者应为群管理员, got role %d", role)
	}
}

// 测试内容：未审核用户不能建群。
func TestGroupCreate_UnapprovedRejected(t *testing.T) {
	lc, _ := setupManager(t)
	svc := NewGroupService(lc)
	pending := seedUser(t, lc.DB(), "pending", rbac.SiteUnapproved)

	_, err := svc.Create(context.Background(), pending.ID, "club", "", nil)
	if !errs.IsForbidden(err) {
		t.Fatalf("期望 Forbidden, got %v", err)
	}
}

// 测试内容：群名占用返回 Conflict。
func TestGroupCreate_DuplicateName(t *testing.T) {
	lc, _ := setupManager(t)
	svc := NewGroupService(lc)
	u := seedUser(t, lc.DB(), "alice", rbac.SiteApproved)

	if _, err := svc.Create(context.Background(), u.ID, "chess club", "", nil); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := svc.Create(context.Background(), u.ID, "chess club", "", nil)
	if !errs.IsConflict(err) {
		t.Fatalf("期望 Conflict, got %v", err)
	}
}

// 测试内容：口令错误入群被拒且不落成员行；口令正确成为普通成员。
func TestGroupJoin_JoinCode(t *testing.T) {
	lc, _ := setupManager(t)
	svc := NewGroupService(lc)
	creator := seedUser(t, lc.DB(), "alice", rbac.SiteApproved)
	joiner := seedUser(t, lc.DB(), "bob", rbac.SiteApproved)

	groupID, err := svc.Create(context.Background(), creator.ID, "chess club", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	var group model.Group
	lc.DB().First(&group, groupID)

	err = svc.Join(joiner.ID, groupID, "WRONGCODE")
	if !errs.IsForbidden(err) {
		t.Fatalf("错误口令期望 Forbidden, got %v", err)
	}
	if isMember, _ := svc.memberRepo.IsMember(groupID, joiner.ID); isMember {
		t.Fatal("错误口令不应落成员行")
	}

	if err := svc.Join(joiner.ID, groupID, group.JoinCode); err != nil {
		t.Fatalf("Join: %v", err)
	}
	role, _ := svc.memberRepo.RoleOf(groupID, joiner.ID)
	if role != int(rbac.GroupMember) {
		t.Fatalf("入群后应为普通成员, got %d", role)
	}

	err = svc.Join(joiner.ID, groupID, group.JoinCode)
	if !errs.IsConflict(err) {
		t.Fatalf("重复入群期望 Conflict, got %v", err)
	}
}

// 测试内容：群管理员不能退群，普通成员可以。
func TestGroupLeave_AdminBlocked(t *testing.T) {
	lc, _ := setupManager(t)
	svc := NewGroupService(lc)
	creator := seedUser(t, lc.DB(), "alice", rbac.SiteApproved)
	member := seedUser(t, lc.DB(), "bob", rbac.SiteApproved)

	groupID, _ := svc.Create(context.Background(), creator.ID, "chess club", "", nil)
	seedMember(t, lc.DB(), groupID, member.ID, rbac.GroupMember)

	err := svc.Leave(creator.ID, groupID)
	if !errs.IsForbidden(err) {
		t.Fatalf("群管理员退群期望 Forbidden, got %v", err)
	}
	if err := svc.Leave(member.ID, groupID); err != nil {
		t.Fatalf("普通成员退群失败: %v", err)
	}
	if isMember, _ := svc.memberRepo.IsMember(groupID, member.ID); isMember {
		t.Fatal("退群后成员行应消失")
	}
}

// 测试内容：升降级与踢人遵守群内角色矩阵，踢人同时落通知事件。
func TestGroupRoleOps(t *testing.T) {
	lc, _ := setupManager(t)
	svc := NewGroupService(lc)
	ctx := context.Background()
	admin := seedUser(t, lc.DB(), "alice", rbac.SiteApproved)
	member := seedUser(t, lc.DB(), "bob", rbac.SiteApproved)
	other := seedUser(t, lc.DB(), "carol", rbac.SiteApproved)

	groupID, _ := svc.Create(ctx, admin.ID, "chess club", "", nil)
	seedMember(t, lc.DB(), groupID, member.ID, rbac.GroupMember)
	seedMember(t, lc.DB(), groupID, other.ID, rbac.GroupMember)

	if err := svc.Promote(member.ID, groupID, other.ID); !errs.IsForbidden(err) {
		t.Fatalf("普通成员提拔他人期望 Forbidden, got %v", err)
	}
	if err := svc.Promote(admin.ID, groupID, member.ID); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	role, _ := svc.memberRepo.RoleOf(groupID, member.ID)
	if role != int(rbac.GroupModerator) {
		t.Fatalf("提拔后应为群版主, got %d", role)
	}

	// 群版主只能踢普通成员
	if err := svc.Kick(ctx, member.ID, groupID, other.ID); err != nil {
		t.Fatalf("群版主踢普通成员失败: %v", err)
	}
	var events int64
	lc.DB().Model(&model.NotifyOutbox{}).Where("event_type = ?", "group_kick").Count(&events)
	if events != 1 {
		t.Fatalf("踢人应落 1 条通知事件, got %d", events)
	}

	if err := svc.Demote(admin.ID, groupID, member.ID); err != nil {
		t.Fatalf("Demote: %v", err)
	}
	role, _ = svc.memberRepo.RoleOf(groupID, member.ID)
	if role != int(rbac.GroupMember) {
		t.Fatalf("降级后应为普通成员, got %d", role)
	}
}

// 测试内容：管理员移交后双方角色互换，原管理员即可退群。
func TestGroupTransferAdmin(t *testing.T) {
	lc, _ := setupManager(t)
	svc := NewGroupService(lc)
	admin := seedUser(t, lc.DB(), "alice", rbac.SiteApproved)
	member := seedUser(t, lc.DB(), "bob", rbac.SiteApproved)

	groupID, _ := svc.Create(context.Background(), admin.ID, "chess club", "", nil)
	seedMember(t, lc.DB(), groupID, member.ID, rbac.GroupMember)

	if err := svc.TransferAdmin(member.ID, groupID, admin.ID); !errs.IsForbidden(err) {
		t.Fatalf("非管理员发起移交期望 Forbidden, got %v", err)
	}
	if err := svc.TransferAdmin(admin.ID, groupID, member.ID); err != nil {
		t.Fatalf("TransferAdmin: %v", err)
	}
	newRole, _ := svc.memberRepo.RoleOf(groupID, member.ID)
	oldRole, _ := svc.memberRepo.RoleOf(groupID, admin.ID)
	if newRole != int(rbac.GroupAdmin) || oldRole != int(rbac.GroupMember) {
		t.Fatalf("移交后角色错误: new=%d old=%d", newRole, oldRole)
	}
	if err := svc.Leave(admin.ID, groupID); err != nil {
		t.Fatalf("移交后原管理员退群失败: %v", err)
	}
}

// 测试内容：解散群组级联清掉成员、主题、楼层与头像 blob。
func TestGroupDestroy_Cascade(t *testing.T) {
	lc, blobs := setupManager(t)
	svc := NewGroupService(lc)
	ctx := context.Background()
	admin := seedUser(t, lc.DB(), "alice", rbac.SiteApproved)
	member := seedUser(t, lc.DB(), "bob", rbac.SiteApproved)

	groupID, err := svc.Create(ctx, admin.ID, "chess club", "", pngImage(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	seedMember(t, lc.DB(), groupID, member.ID, rbac.GroupMember)

	thread := &model.Thread{GroupID: groupID, AuthorID: member.ID, Title: "hello"}
	if err := lc.DB().Create(thread).Error; err != nil {
		t.Fatalf("seed thread: %v", err)
	}
	post := &model.Post{ThreadID: thread.ID, AuthorID: member.ID, Content: "hi", IsOriginal: true}
	if err := lc.DB().Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	if err := svc.Destroy(ctx, member.ID, groupID); !errs.IsForbidden(err) {
		t.Fatalf("普通成员解散群期望 Forbidden, got %v", err)
	}
	if err := svc.Destroy(ctx, admin.ID, groupID); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	if blobs.Count() != 0 {
		t.Fatalf("群头像 blob 应被删除, got %d", blobs.Count())
	}
	var remaining int64
	lc.DB().Model(&model.GroupMember{}).Where("group_id = ?", groupID).Count(&remaining)
	if remaining != 0 {
		t.Fatal("成员行应被级联清掉")
	}
	lc.DB().Model(&model.Thread{}).Where("group_id = ?", groupID).Count(&remaining)
	if remaining != 0 {
		t.Fatal("主题应被级联清掉")
	}

	if err := svc.Destroy(ctx, admin.ID, groupID); !errs.IsNotFound(err) {
		t.Fatalf("重复解散期望 NotFound, got %v", err)
	}
}

// 测试内容：管理员换群头像后旧图被删、路径更新；普通成员被拒且旧图保留。
func TestGroupUpdateAvatar(t *testing.T) {
	lc, blobs := setupManager(t)
	svc := NewGroupService(lc)
	ctx := context.Background()
	admin := seedUser(t, lc.DB(), "admin", rbac.SiteApproved)
	member := seedUser(t, lc.DB(), "member", rbac.SiteApproved)

	groupID, err := svc.Create(ctx, admin.ID, "chess club", "", pngImage(t))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	seedMember(t, lc.DB(), groupID, member.ID, rbac.GroupMember)

	var before model.Group
	if err := lc.DB().First(&before, groupID).Error; err != nil {
		t.Fatalf("group row: %v", err)
	}

	if err := svc.UpdateAvatar(ctx, member.ID, groupID, pngImage(t)); !errs.IsForbidden(err) {
		t.Fatalf("普通成员换头像期望 Forbidden, got %v", err)
	}
	if blobs.Count() != 2 {
		t.Fatalf("被拒的更换不应动 blob, got %d", blobs.Count())
	}

	if err := svc.UpdateAvatar(ctx, admin.ID, groupID, pngImage(t)); err != nil {
		t.Fatalf("UpdateAvatar: %v", err)
	}
	if blobs.Count() != 2 {
		t.Fatalf("期望旧图换成新图后仍是 2 份 blob, got %d", blobs.Count())
	}
	if _, alive := blobs.Files[before.AvatarPath]; alive {
		t.Fatal("旧头像应被删除")
	}

	var after model.Group
	if err := lc.DB().First(&after, groupID).Error; err != nil {
		t.Fatalf("group row: %v", err)
	}
	if after.AvatarPath == before.AvatarPath || after.AvatarPath == "" {
		t.Fatalf("头像路径未更新: %q", after.AvatarPath)
	}
}
