package channel

import "github.com/flemzord/tgupload/pkg/message"

// AllowList controls which users may interact with a channel. An empty or
// nil AllowList denies everyone.
type AllowList struct {
	users map[int64]struct{}
}

// NewAllowList creates an AllowList from user ids. Zero ids are ignored.
func NewAllowList(users ...int64) *AllowList {
	a := &AllowList{users: make(map[int64]struct{}, len(users))}
	for _, u := range users {
		if u == 0 {
			continue
		}
		a.users[u] = struct{}{}
	}
	return a
}

// IsAllowed reports whether the message sender is permitted.
func (a *AllowList) IsAllowed(msg message.InboundMessage) bool {
	if a == nil || len(a.users) == 0 {
		return false
	}
	_, ok := a.users[msg.Sender.ID]
	return ok
}

// Len returns the number of allowed users.
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.users)
}
