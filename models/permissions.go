package models

// Permission bits as the platform defines them
const (
	PermissionKickMembers     int64 = 1 << 1
	PermissionBanMembers      int64 = 1 << 2
	PermissionAdministrator   int64 = 1 << 3
	PermissionManageGuild     int64 = 1 << 5
	PermissionModerateMembers int64 = 1 << 40
)

// RequiredPermission is the permission actor and bot both need for kind
func RequiredPermission(kind ActionKind) int64 {
	switch kind {
	case ActionKick:
		return PermissionKickMembers
	case ActionMute, ActionUnmute:
		return PermissionModerateMembers
	default:
		return PermissionBanMembers
	}
}

// HasPermission checks perms for flag, administrators have every permission
func HasPermission(perms int64, flag int64) bool {
	if perms&PermissionAdministrator == PermissionAdministrator {
		return true
	}
	return perms&flag == flag
}
