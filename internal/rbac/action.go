package rbac

// Action 受权限保护的操作枚举
type Action int

const (
	ActionApproveUser Action = iota + 1
	ActionRejectUser
	ActionBanUser
	ActionResetUserPassword
	ActionAppointModerator
	ActionDismissModerator
	ActionDeleteListing
	ActionDeleteThread
	ActionGroupPromote
	ActionGroupDemote
	ActionGroupKick
	ActionGroupLeave
	ActionDeletePost
)

func (a Action) Valid() bool {
	return a >= ActionApproveUser && a <= ActionDeletePost
}

func (a Action) String() string {
	switch a {
	case ActionApproveUser:
		return "approve_user"
	case ActionRejectUser:
		return "reject_user"
	case ActionBanUser:
		return "ban_user"
	case ActionResetUserPassword:
		return "reset_user_password"
	case ActionAppointModerator:
		return "appoint_moderator"
	case ActionDismissModerator:
		return "dismiss_moderator"
	case ActionDeleteListing:
		return "delete_listing"
	case ActionDeleteThread:
		return "delete_thread"
	case ActionGroupPromote:
		return "group_promote"
	case ActionGroupDemote:
		return "group_demote"
	case ActionGroupKick:
		return "group_kick"
	case ActionGroupLeave:
		return "group_leave"
	case ActionDeletePost:
		return "delete_post"
	}
	return "unknown"
}
