package policy

import "github.com/leonidz/blogicum/models"

// Decision is the outcome of an ownership check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// RecordKind tags the mutable record variants the ownership guard covers.
type RecordKind int

const (
	KindPost RecordKind = iota
	KindComment
)

// Record is a tagged view of a mutable record: its kind and author. The
// guard never needs more than that.
type Record struct {
	Kind     RecordKind
	AuthorID uint
}

// PostRecord adapts a post for the ownership guard.
func PostRecord(p *models.Post) Record {
	return Record{Kind: KindPost, AuthorID: p.AuthorID}
}

// CommentRecord adapts a comment for the ownership guard.
func CommentRecord(c *models.Comment) Record {
	return Record{Kind: KindComment, AuthorID: c.AuthorID}
}

// AuthorizeMutation allows an update or delete only when the viewer is
// authenticated and is the record's author. Callers map Deny to transport
// outcomes by kind: comments get a hard forbidden, posts a redirect to the
// post's detail view.
func AuthorizeMutation(rec Record, viewer Viewer) Decision {
	if viewer.IsAuthenticated() && rec.AuthorID == viewer.ID {
		return Allow
	}
	return Deny
}
