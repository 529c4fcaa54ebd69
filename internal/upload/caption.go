package upload

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// utcLayout renders times the way HTTP dates are written.
const utcLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Caption builds the HTML caption attached to an uploaded document.
func Caption(name, path string, size uint64, createdAt time.Time) string {
	return fmt.Sprintf("Filename: <code>%s</code>\nPath: <code>%s</code>\nSize: %s\nCreated at: <code>%s</code>",
		Sanitize(name), Sanitize(path), humanize.Bytes(size), formatTime(createdAt))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(utcLayout)
}

// plural returns "file" or "files" for n.
func plural(n int) string {
	if n == 1 {
		return "file"
	}
	return "files"
}
