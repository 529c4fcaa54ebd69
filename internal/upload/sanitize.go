package upload

import "strings"

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Sanitize escapes &, < and > so s can be embedded in an HTML-formatted
// message. Escaping twice escapes the ampersands of the first pass again.
func Sanitize(s string) string {
	return htmlEscaper.Replace(s)
}
