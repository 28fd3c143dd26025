package i18n

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Sanitize escapes text so it can be embedded into HTML-mode transport
// messages (the info card and note listings) without breaking markup or
// smuggling tags.
func Sanitize(s string) string {
	return htmlEscaper.Replace(s)
}
