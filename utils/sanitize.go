package utils

import "github.com/microcosm-cc/bluemonday"

// Post titles, texts and comments accept limited user HTML; everything else
// (scripts, event handlers, embeds) is stripped before storage.
var ugcPolicy = bluemonday.UGCPolicy()

// Sanitize strips markup not allowed in user-generated content.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}
