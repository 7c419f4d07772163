// Package policy holds the decision functions gating what a request may see
// and mutate: the post-visibility filter, the ownership guard, and detail
// resolution. All of them are pure; the current time is injected and read
// once per request so repeated checks within one evaluation cannot skew.
package policy

// Viewer is the identity a policy is evaluated for: anonymous, or a specific
// authenticated user.
type Viewer struct {
	ID            uint
	Username      string
	authenticated bool
}

// Anonymous returns the unauthenticated viewer.
func Anonymous() Viewer { return Viewer{} }

// Authenticated returns a viewer carrying a verified user identity.
func Authenticated(id uint, username string) Viewer {
	return Viewer{ID: id, Username: username, authenticated: true}
}

// IsAuthenticated reports whether the viewer carries a user identity.
func (v Viewer) IsAuthenticated() bool { return v.authenticated }

// Owns reports whether the viewer is the author identified by authorID.
func (v Viewer) Owns(authorID uint) bool { return v.authenticated && v.ID == authorID }
