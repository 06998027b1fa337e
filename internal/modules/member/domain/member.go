package domain

import (
	"time"

	msgdomain "github.com/reshetovitsme/chat-guard/internal/modules/message/domain"
	policydomain "github.com/reshetovitsme/chat-guard/internal/modules/policy/domain"
)

// Member is an observed join of a user to a chat
type Member struct {
	ChatID   int64     `json:"chat_id"`
	UserID   int64     `json:"user_id"`
	Username string    `json:"username,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// Standing is a live membership lookup result
type Standing struct {
	Status             Status `json:"status"`
	CanDeleteMessages  bool   `json:"can_delete_messages"`
	CanRestrictMembers bool   `json:"can_restrict_members"`
	CanSendMessages    bool   `json:"can_send_messages"`
}

// Capabilities classifies the standing of the bot itself: a creator holds
// everything, an administrator its flags plus send, a member only send and a
// restricted member send when explicitly allowed.
func (s Standing) Capabilities() policydomain.Capabilities {
	switch s.Status {
	case StatusCreator:
		return policydomain.Capabilities{Delete: true, Restrict: true, Send: true}
	case StatusAdministrator:
		return policydomain.Capabilities{Delete: s.CanDeleteMessages, Restrict: s.CanRestrictMembers, Send: true}
	case StatusMember:
		return policydomain.Capabilities{Send: true}
	case StatusRestricted:
		return policydomain.Capabilities{Send: s.CanSendMessages}
	}
	return policydomain.Capabilities{}
}

// Role maps the standing of a sender onto a moderation role. A plain member
// whose join was observed within newWindow of now is new.
func (s Standing) Role(joined *Member, newWindow time.Duration, now time.Time) msgdomain.Role {
	switch s.Status {
	case StatusCreator:
		return msgdomain.RoleOwner
	case StatusAdministrator:
		return msgdomain.RoleAdmin
	case StatusRestricted:
		return msgdomain.RoleRestricted
	case StatusMember:
		if joined != nil && newWindow > 0 && now.Sub(joined.JoinedAt) < newWindow {
			return msgdomain.RoleNew
		}
		return msgdomain.RoleMember
	}
	return msgdomain.RoleUnknown
}
