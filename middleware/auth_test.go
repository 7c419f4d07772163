package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func testContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	return ctx
}

func TestViewerFromContextAnonymous(t *testing.T) {
	ctx := testContext(t)
	viewer := ViewerFromContext(ctx)
	if viewer.IsAuthenticated() {
		t.Fatal("empty context must yield an anonymous viewer")
	}
}

func TestViewerFromContextAuthenticated(t *testing.T) {
	ctx := testContext(t)
	ctx.Set(ContextUserIDKey, uint(11))
	ctx.Set(ContextUsernameKey, "alice")

	viewer := ViewerFromContext(ctx)
	if !viewer.IsAuthenticated() {
		t.Fatal("viewer should be authenticated")
	}
	if viewer.ID != 11 {
		t.Fatalf("viewer.ID = %d, want 11", viewer.ID)
	}
	if viewer.Username != "alice" {
		t.Fatalf("viewer.Username = %q, want %q", viewer.Username, "alice")
	}
}

func TestViewerFromContextNumericVariants(t *testing.T) {
	for _, tc := range []struct {
		name string
		val  any
	}{
		{"int", int(5)},
		{"int64", int64(5)},
		{"float64", float64(5)},
	} {
		ctx := testContext(t)
		ctx.Set(ContextUserIDKey, tc.val)
		ctx.Set(ContextUsernameKey, "u")

		viewer := ViewerFromContext(ctx)
		if !viewer.IsAuthenticated() || viewer.ID != 5 {
			t.Fatalf("%s: viewer = %+v, want authenticated id 5", tc.name, viewer)
		}
	}
}

func TestViewerFromContextPartialIdentity(t *testing.T) {
	ctx := testContext(t)
	ctx.Set(ContextUserIDKey, uint(3))
	// no username stored

	if ViewerFromContext(ctx).IsAuthenticated() {
		t.Fatal("id without username must fall back to anonymous")
	}
}

func TestViewerFromContextBadIDType(t *testing.T) {
	ctx := testContext(t)
	ctx.Set(ContextUserIDKey, "3")
	ctx.Set(ContextUsernameKey, "u")

	if ViewerFromContext(ctx).IsAuthenticated() {
		t.Fatal("string id must fall back to anonymous")
	}
}

func TestBearerToken(t *testing.T) {
	ctx := testContext(t)
	ctx.Request = httptest.NewRequest("GET", "/", nil)

	if _, ok := bearerToken(ctx); ok {
		t.Fatal("missing header should yield ok=false")
	}

	ctx.Request.Header.Set("Authorization", "Bearer abc123")
	tok, ok := bearerToken(ctx)
	if !ok || tok != "abc123" {
		t.Fatalf("bearerToken = %q, %v, want abc123, true", tok, ok)
	}

	ctx.Request.Header.Set("Authorization", "Basic abc123")
	if _, ok := bearerToken(ctx); ok {
		t.Fatal("non-bearer scheme should yield ok=false")
	}

	ctx.Request.Header.Set("Authorization", "Bearer ")
	if _, ok := bearerToken(ctx); ok {
		t.Fatal("empty token should yield ok=false")
	}
}
