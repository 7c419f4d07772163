package policy

import (
	"time"

	"github.com/leonidz/blogicum/models"
)

// ResolveDetail decides whether a fetched post may be served to the viewer.
// Absent and present-but-invisible collapse into the same negative outcome,
// so the existence of hidden posts is never revealed through a status-code
// distinction.
func ResolveDetail(post *models.Post, found bool, viewer Viewer, now time.Time) bool {
	if !found || post == nil {
		return false
	}
	return IsVisible(post, viewer, now)
}
