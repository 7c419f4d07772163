package policy

import (
	"testing"
	"time"

	"github.com/leonidz/blogicum/models"
)

var testNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func publishedPost(authorID uint) *models.Post {
	return &models.Post{
		ID:          1,
		Title:       "hello",
		IsPublished: true,
		PubDate:     testNow.Add(-time.Hour),
		AuthorID:    authorID,
	}
}

func TestUnpublishedPostHiddenFromAnonymous(t *testing.T) {
	post := publishedPost(7)
	post.IsPublished = false

	if IsVisible(post, Anonymous(), testNow) {
		t.Fatal("unpublished post must not be visible to anonymous viewers")
	}
}

func TestUnpublishedPostVisibleToAuthor(t *testing.T) {
	post := publishedPost(7)
	post.IsPublished = false

	author := Authenticated(7, "author")
	if !IsVisible(post, author, testNow) {
		t.Fatal("author must see their own unpublished post")
	}
}

func TestUnpublishedPostHiddenFromOtherUsers(t *testing.T) {
	post := publishedPost(7)
	post.IsPublished = false

	other := Authenticated(8, "other")
	if IsVisible(post, other, testNow) {
		t.Fatal("authenticated non-authors get the public predicate, not a preview")
	}
}

func TestFuturePostHiddenUntilScheduledInstant(t *testing.T) {
	post := publishedPost(7)
	post.PubDate = testNow.Add(time.Minute)

	if IsVisible(post, Anonymous(), testNow) {
		t.Fatal("future-dated post must be hidden before its pub_date")
	}
	if !IsVisible(post, Anonymous(), post.PubDate) {
		t.Fatal("post must become visible in the exact instant pub_date arrives")
	}
	if !IsVisible(post, Authenticated(7, "author"), testNow) {
		t.Fatal("author must preview their own scheduled post")
	}
}

func TestUnpublishedCategoryHidesPost(t *testing.T) {
	catID := uint(3)
	post := publishedPost(7)
	post.CategoryID = &catID
	post.Category = &models.Category{ID: catID, Slug: "drafts", IsPublished: false}

	if IsVisible(post, Anonymous(), testNow) {
		t.Fatal("post in an unpublished category must be hidden even when itself published")
	}
	if !IsVisible(post, Authenticated(7, "author"), testNow) {
		t.Fatal("author preview overrides the category check")
	}
}

func TestPublishedCategoryKeepsPostVisible(t *testing.T) {
	catID := uint(3)
	post := publishedPost(7)
	post.CategoryID = &catID
	post.Category = &models.Category{ID: catID, Slug: "travel", IsPublished: true}

	if !IsVisible(post, Anonymous(), testNow) {
		t.Fatal("published post in a published category must be visible")
	}
}

func TestNilCategoryDoesNotHidePost(t *testing.T) {
	post := publishedPost(7)

	if !IsVisible(post, Anonymous(), testNow) {
		t.Fatal("a post without a category passes the category clause")
	}
}

func TestUnloadedCategoryAssociationFailsClosed(t *testing.T) {
	catID := uint(3)
	post := publishedPost(7)
	post.CategoryID = &catID
	post.Category = nil

	if PubliclyVisible(post, testNow) {
		t.Fatal("categorized post without a loaded association must not leak")
	}
}

func TestVisibilityIdempotentWithinHeldSnapshot(t *testing.T) {
	post := publishedPost(7)
	post.PubDate = testNow.Add(time.Nanosecond)

	first := IsVisible(post, Anonymous(), testNow)
	second := IsVisible(post, Anonymous(), testNow)
	if first != second {
		t.Fatalf("re-evaluation under one now snapshot flickered: %v then %v", first, second)
	}
	if first {
		t.Fatal("post scheduled one tick ahead of the snapshot must stay hidden for the whole request")
	}
}
