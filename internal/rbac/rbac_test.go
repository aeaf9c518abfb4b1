package rbac

import (
	"testing"

	"Campus_Community/internal/pkg/errs"
)

// 测试内容：站点侧审核/封禁动作的角色矩阵。
func TestCheck_SiteModeration(t *testing.T) {
	cases := []struct {
		name   string
		actor  SiteRole
		target SiteRole
		action Action
		want   bool
	}{
		{"未审核用户不能审批", SiteUnapproved, SiteUnapproved, ActionApproveUser, false},
		{"普通用户不能审批", SiteApproved, SiteUnapproved, ActionApproveUser, false},
		{"版主可以审批", SiteModerator, SiteUnapproved, ActionApproveUser, true},
		{"管理员可以审批", SiteAdmin, SiteUnapproved, ActionApproveUser, true},
		{"版主不能封禁版主", SiteModerator, SiteModerator, ActionBanUser, false},
		{"版主不能封禁管理员", SiteModerator, SiteAdmin, ActionBanUser, false},
		{"管理员不能封禁版主", SiteAdmin, SiteModerator, ActionBanUser, false},
		{"版主可以封禁普通用户", SiteModerator, SiteApproved, ActionBanUser, true},
		{"版主可以拒绝注册", SiteModerator, SiteUnapproved, ActionRejectUser, true},
		{"普通用户不能拒绝注册", SiteApproved, SiteUnapproved, ActionRejectUser, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Allowed(tc.actor, GroupNone, tc.target, GroupNone, tc.action)
			if got != tc.want {
				t.Fatalf("Allowed(%v, %v, %v) = %v, want %v", tc.actor, tc.target, tc.action, got, tc.want)
			}
		})
	}
}

// 测试内容：版主任免只有管理员可以执行，且目标角色受限。
func TestCheck_ModeratorAppointment(t *testing.T) {
	if Allowed(SiteModerator, GroupNone, SiteApproved, GroupNone, ActionAppointModerator) {
		t.Fatal("版主不应能任命版主")
	}
	if !Allowed(SiteAdmin, GroupNone, SiteApproved, GroupNone, ActionAppointModerator) {
		t.Fatal("管理员应能任命已审核用户为版主")
	}
	if Allowed(SiteAdmin, GroupNone, SiteUnapproved, GroupNone, ActionAppointModerator) {
		t.Fatal("未审核用户不应能被任命")
	}
	if Allowed(SiteAdmin, GroupNone, SiteAdmin, GroupNone, ActionAppointModerator) {
		t.Fatal("管理员不应能被再次任命")
	}
	if !Allowed(SiteAdmin, GroupNone, SiteModerator, GroupNone, ActionDismissModerator) {
		t.Fatal("管理员应能解除版主")
	}
	if Allowed(SiteAdmin, GroupNone, SiteApproved, GroupNone, ActionDismissModerator) {
		t.Fatal("普通用户不是版主，不应能被解除")
	}
}

// 测试内容：重置密码要求操作者角色严格高于目标。
func TestCheck_ResetPassword(t *testing.T) {
	if !Allowed(SiteModerator, GroupNone, SiteApproved, GroupNone, ActionResetUserPassword) {
		t.Fatal("版主应能重置普通用户密码")
	}
	if Allowed(SiteModerator, GroupNone, SiteModerator, GroupNone, ActionResetUserPassword) {
		t.Fatal("版主不应能重置同级密码")
	}
	if Allowed(SiteAdmin, GroupNone, SiteAdmin, GroupNone, ActionResetUserPassword) {
		t.Fatal("管理员密码不应走这条重置路径")
	}
	if !Allowed(SiteAdmin, GroupNone, SiteModerator, GroupNone, ActionResetUserPassword) {
		t.Fatal("管理员应能重置版主密码")
	}
}

// 测试内容：群内动作矩阵，含群管理员离群限制。
func TestCheck_GroupActions(t *testing.T) {
	cases := []struct {
		name        string
		actorGroup  GroupRole
		targetGroup GroupRole
		action      Action
		want        bool
	}{
		{"群管理员可以提拔成员", GroupAdmin, GroupMember, ActionGroupPromote, true},
		{"群管理员不能提拔群版主", GroupAdmin, GroupModerator, ActionGroupPromote, false},
		{"群版主不能提拔成员", GroupModerator, GroupMember, ActionGroupPromote, false},
		{"群管理员可以降级群版主", GroupAdmin, GroupModerator, ActionGroupDemote, true},
		{"群管理员不能降级普通成员", GroupAdmin, GroupMember, ActionGroupDemote, false},
		{"群版主可以踢普通成员", GroupModerator, GroupMember, ActionGroupKick, true},
		{"群版主不能踢群版主", GroupModerator, GroupModerator, ActionGroupKick, false},
		{"普通成员不能踢人", GroupMember, GroupMember, ActionGroupKick, false},
		{"群管理员不能被踢", GroupAdmin, GroupAdmin, ActionGroupKick, false},
		{"普通成员可以退群", GroupMember, GroupNone, ActionGroupLeave, true},
		{"群版主可以退群", GroupModerator, GroupNone, ActionGroupLeave, true},
		{"群管理员不能直接退群", GroupAdmin, GroupNone, ActionGroupLeave, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Allowed(SiteApproved, tc.actorGroup, SiteApproved, tc.targetGroup, tc.action)
			if got != tc.want {
				t.Fatalf("Allowed(group %v -> %v, %v) = %v, want %v", tc.actorGroup, tc.targetGroup, tc.action, got, tc.want)
			}
		})
	}
}

// 测试内容：资源删除动作允许所有者本人或站点版主。
func TestCheck_OwnerOrModeratorDelete(t *testing.T) {
	owner := Subject{ID: 7, SiteRole: SiteApproved}
	other := Subject{ID: 8, SiteRole: SiteApproved}
	mod := Subject{ID: 9, SiteRole: SiteModerator}

	if err := Check(owner, owner, ActionDeleteListing); err != nil {
		t.Fatalf("所有者删除自己的商品被拒: %v", err)
	}
	if err := Check(other, owner, ActionDeleteListing); err == nil {
		t.Fatal("他人不应能删除商品")
	}
	if err := Check(mod, owner, ActionDeleteThread); err != nil {
		t.Fatalf("版主删除主题被拒: %v", err)
	}
}

// 测试内容：封禁账号的一切动作直接拒绝。
func TestCheck_BannedActor(t *testing.T) {
	banned := Subject{ID: 3, SiteRole: SiteAdmin, Banned: true}
	err := Check(banned, Subject{ID: 4}, ActionApproveUser)
	if err == nil {
		t.Fatal("封禁账号不应能执行任何动作")
	}
	if !errs.IsForbidden(err) {
		t.Fatalf("期望 Forbidden, got %v", err)
	}
}

// 测试内容：群内删楼层允许群版主或站点版主，普通成员不行。
func TestCheck_DeletePost(t *testing.T) {
	if !Allowed(SiteApproved, GroupModerator, SiteApproved, GroupMember, ActionDeletePost) {
		t.Fatal("群版主应能删楼层")
	}
	if !Allowed(SiteModerator, GroupNone, SiteApproved, GroupMember, ActionDeletePost) {
		t.Fatal("站点版主应能删楼层")
	}
	if Allowed(SiteApproved, GroupMember, SiteApproved, GroupMember, ActionDeletePost) {
		t.Fatal("普通成员不应能删他人楼层")
	}
}
