package rbac

import (
	"Campus_Community/internal/pkg/errs"
)

// Subject 参与权限判定的一方。对资源删除类动作，target 表示资源创建者。
// 角色值由调用方预先查好，这里只做纯比较，不做任何IO。
type Subject struct {
	ID        uint64
	SiteRole  SiteRole
	GroupRole GroupRole
	Banned    bool
}

// Check 判定 actor 能否对 target 执行 action。
// 通过返回 nil，否则返回 errs.Forbidden，消息可直接透出给用户。
func Check(actor, target Subject, action Action) error {
	if actor.Banned {
		return errs.Forbidden("account is banned")
	}

	switch action {
	case ActionApproveUser, ActionRejectUser, ActionBanUser:
		if actor.SiteRole < SiteModerator {
			return errs.Forbidden("moderator privileges required")
		}
		if target.SiteRole >= SiteModerator {
			return errs.Forbidden("cannot moderate a moderator or administrator")
		}
		return nil

	case ActionResetUserPassword:
		if actor.SiteRole < SiteModerator {
			return errs.Forbidden("moderator privileges required")
		}
		// 管理员的密码永远不走这条重置路径
		if target.SiteRole >= actor.SiteRole {
			return errs.Forbidden("cannot reset password of an equal or higher role")
		}
		return nil

	case ActionAppointModerator:
		if actor.SiteRole != SiteAdmin {
			return errs.Forbidden("administrator privileges required")
		}
		if target.SiteRole != SiteApproved {
			return errs.Forbidden("only approved members can be appointed moderator")
		}
		return nil

	case ActionDismissModerator:
		if actor.SiteRole != SiteAdmin {
			return errs.Forbidden("administrator privileges required")
		}
		if target.SiteRole != SiteModerator {
			return errs.Forbidden("target is not a moderator")
		}
		return nil

	case ActionDeleteListing, ActionDeleteThread:
		if actor.ID == target.ID || actor.SiteRole >= SiteModerator {
			return nil
		}
		return errs.Forbidden("only the owner or a moderator can delete this")

	case ActionGroupPromote:
		if actor.GroupRole != GroupAdmin {
			return errs.Forbidden("group administrator privileges required")
		}
		if target.GroupRole != GroupMember {
			return errs.Forbidden("only a plain member can be promoted")
		}
		return nil

	case ActionGroupDemote:
		if actor.GroupRole != GroupAdmin {
			return errs.Forbidden("group administrator privileges required")
		}
		if target.GroupRole != GroupModerator {
			return errs.Forbidden("target is not a group moderator")
		}
		return nil

	case ActionGroupKick:
		if actor.GroupRole < GroupModerator {
			return errs.Forbidden("group moderator privileges required")
		}
		if target.GroupRole != GroupMember {
			return errs.Forbidden("moderators and the administrator cannot be kicked")
		}
		return nil

	case ActionGroupLeave:
		if actor.GroupRole == GroupAdmin {
			// 群管理员必须先转让或解散群组
			return errs.Forbidden("the group administrator cannot leave; transfer or delete the group first")
		}
		if actor.GroupRole < GroupMember {
			return errs.Forbidden("not a member of this group")
		}
		return nil

	case ActionDeletePost:
		if actor.GroupRole >= GroupModerator || actor.SiteRole >= SiteModerator {
			return nil
		}
		return errs.Forbidden("moderator privileges required to delete posts")
	}

	return errs.Forbiddenf("unknown action %q", action)
}

// Allowed Check 的布尔版本，供只需要判定结果的调用方使用
func Allowed(actorSite SiteRole, actorGroup GroupRole, targetSite SiteRole, targetGroup GroupRole, action Action) bool {
	return Check(
		Subject{SiteRole: actorSite, GroupRole: actorGroup},
		Subject{ID: 1, SiteRole: targetSite, GroupRole: targetGroup},
		action,
	) == nil
}
