package rbac

// SiteRole 全站角色，严格全序 0<1<2<3
type SiteRole int

const (
	SiteUnapproved SiteRole = 0
	SiteApproved   SiteRole = 1
	SiteModerator  SiteRole = 2
	SiteAdmin      SiteRole = 3
)

func (r SiteRole) Valid() bool {
	return r >= SiteUnapproved && r <= SiteAdmin
}

func (r SiteRole) String() string {
	switch r {
	case SiteUnapproved:
		return "unapproved"
	case SiteApproved:
		return "approved"
	case SiteModerator:
		return "moderator"
	case SiteAdmin:
		return "administrator"
	}
	return "unknown"
}

// GroupRole 群组内角色；0 表示非成员
type GroupRole int

const (
	GroupNone      GroupRole = 0
	GroupMember    GroupRole = 1
	GroupModerator GroupRole = 2
	GroupAdmin     GroupRole = 3
)

func (r GroupRole) Valid() bool {
	return r >= GroupMember && r <= GroupAdmin
}

func (r GroupRole) String() string {
	switch r {
	case GroupNone:
		return "none"
	case GroupMember:
		return "member"
	case GroupModerator:
		return "moderator"
	case GroupAdmin:
		return "administrator"
	}
	return "unknown"
}
