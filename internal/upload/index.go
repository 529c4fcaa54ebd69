package upload

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// DefaultIndexPageSize is the Bot API limit for one text message.
const DefaultIndexPageSize = 4096

// UploadedFile is a successfully uploaded file that the index links to.
type UploadedFile struct {
	// Name is already sanitized.
	Name string
	Link string
}

// BuildIndex renders files as numbered HTML links and packs them into
// pages of at most maxLen UTF-16 code units, the unit the Bot API uses
// for message length. Entries keep their order and are
// never split across pages. An entry longer than maxLen on its own gets
// a page to itself.
func BuildIndex(files []UploadedFile, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultIndexPageSize
	}

	var pages []string
	var page strings.Builder
	pageLen := 0
	for i, f := range files {
		entry := fmt.Sprintf("%d. <a href=\"%s\">%s</a>", i+1, f.Link, f.Name)
		entryLen := utf16Len(entry)

		sep := 0
		if pageLen > 0 {
			sep = 1
		}
		if pageLen > 0 && pageLen+sep+entryLen > maxLen {
			pages = append(pages, page.String())
			page.Reset()
			pageLen, sep = 0, 0
		}
		if sep == 1 {
			page.WriteByte('\n')
		}
		page.WriteString(entry)
		pageLen += sep + entryLen
	}
	if pageLen > 0 {
		pages = append(pages, page.String())
	}
	return pages
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
