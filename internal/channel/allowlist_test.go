package channel

import (
	"testing"

	"github.com/flemzord/tgupload/pkg/message"
)

func TestAllowList_IsAllowed(t *testing.T) {
	t.Parallel()

	msgFrom := func(id int64) message.InboundMessage {
		return message.InboundMessage{Sender: message.Sender{ID: id}, Chat: message.Chat{ID: id}}
	}

	tests := []struct {
		name  string
		list  *AllowList
		id    int64
		allow bool
	}{
		{"nil list denies", nil, 42, false},
		{"empty list denies", NewAllowList(), 42, false},
		{"zero ids ignored", NewAllowList(0), 0, false},
		{"admin allowed", NewAllowList(42), 42, true},
		{"extra user allowed", NewAllowList(42, 7), 7, true},
		{"stranger denied", NewAllowList(42, 7), 99, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.list.IsAllowed(msgFrom(tc.id)); got != tc.allow {
				t.Errorf("IsAllowed(%d) = %v, want %v", tc.id, got, tc.allow)
			}
		})
	}
}

func TestAllowList_Len(t *testing.T) {
	t.Parallel()
	if n := NewAllowList(1, 1, 2, 0).Len(); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}
	var nilList *AllowList
	if n := nilList.Len(); n != 0 {
		t.Errorf("nil Len() = %d, want 0", n)
	}
}
