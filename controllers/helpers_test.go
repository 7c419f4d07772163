package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/leonidz/blogicum/middleware"
)

func testContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	return ctx
}

func TestParsePagination(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	page, size := parsePagination("", "")
	if page != 1 {
		t.Fatalf("default page = %d, want 1", page)
	}
	if size <= 0 {
		t.Fatalf("default page size = %d, want > 0", size)
	}

	page, size = parsePagination("3", "20")
	if page != 3 || size != 20 {
		t.Fatalf("parsePagination(3, 20) = %d, %d", page, size)
	}

	// junk and out-of-range values fall back to defaults
	page, _ = parsePagination("-1", "")
	if page != 1 {
		t.Fatalf("negative page = %d, want 1", page)
	}
	_, size = parsePagination("", "500")
	if size == 500 {
		t.Fatal("page size must be capped below 500")
	}
}

func TestPaginationMeta(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	meta := paginationMeta(2, 10, 25)
	if meta["page"] != 2 {
		t.Fatalf("page = %v, want 2", meta["page"])
	}
	if meta["total"] != int64(25) {
		t.Fatalf("total = %v, want 25", meta["total"])
	}
	if meta["total_pages"] != 3 {
		t.Fatalf("total_pages = %v, want 3", meta["total_pages"])
	}

	meta = paginationMeta(1, 10, 0)
	if meta["total_pages"] != 0 {
		t.Fatalf("total_pages for empty set = %v, want 0", meta["total_pages"])
	}
}

func TestGetUserID(t *testing.T) {
	ctx := testContext(t)

	if _, ok := getUserID(ctx); ok {
		t.Fatal("no identity in context should yield ok=false")
	}

	ctx.Set(middleware.ContextUserIDKey, uint(7))
	if id, ok := getUserID(ctx); !ok || id != 7 {
		t.Fatalf("getUserID = %d, %v, want 7, true", id, ok)
	}

	ctx.Set(middleware.ContextUserIDKey, float64(9))
	if id, ok := getUserID(ctx); !ok || id != 9 {
		t.Fatalf("getUserID float64 = %d, %v, want 9, true", id, ok)
	}

	ctx.Set(middleware.ContextUserIDKey, "not-a-number")
	if _, ok := getUserID(ctx); ok {
		t.Fatal("string user id should yield ok=false")
	}
}

func TestIsAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	ctx := testContext(t)
	if isAdmin(ctx) {
		t.Fatal("anonymous context must not be admin")
	}

	ctx.Set(middleware.ContextUsernameKey, "alice")
	if isAdmin(ctx) {
		t.Fatal("regular user must not be admin")
	}
}

func TestValidUsername(t *testing.T) {
	valid := []string{"alice", "bob-2", "user_name", "A1"}
	for _, s := range valid {
		if !validUsername(s) {
			t.Fatalf("validUsername(%q) = false, want true", s)
		}
	}
	invalid := []string{"with space", "семь", "semi;colon", "dot.ted"}
	for _, s := range invalid {
		if validUsername(s) {
			t.Fatalf("validUsername(%q) = true, want false", s)
		}
	}
}

func TestValidPassword(t *testing.T) {
	valid := []string{"abc123", "pass-word", "dot.ok_1"}
	for _, s := range valid {
		if !validPassword(s) {
			t.Fatalf("validPassword(%q) = false, want true", s)
		}
	}
	invalid := []string{"has space", "quote'"}
	for _, s := range invalid {
		if validPassword(s) {
			t.Fatalf("validPassword(%q) = true, want false", s)
		}
	}
}
