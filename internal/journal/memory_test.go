package journal_test

import (
	"testing"

	"github.com/flemzord/tgupload/internal/journal"
	"github.com/flemzord/tgupload/internal/journal/journaltest"
)

func TestMemory(t *testing.T) {
	t.Parallel()
	journaltest.RunStoreTests(t, func(*testing.T) journal.Store {
		return journal.NewMemory()
	})
}
