package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func TestListCategoryPostsUnknownSlugNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	// The lookup filters on is_published in the same query, so an
	// unpublished category produces exactly the same empty result as an
	// absent slug.
	mock.ExpectQuery("SELECT (.+) FROM `categories` WHERE slug = (.+) AND is_published = (.+)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "slug", "is_published", "created_at"}))

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/v1/categories/hidden/posts", nil)
	ctx.Params = gin.Params{{Key: "slug", Value: "hidden"}}

	NewCategoryController(db).ListCategoryPosts(ctx)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d (not an empty 200 listing)", rec.Code, http.StatusNotFound)
	}
	if resp := decodeEnvelope(t, rec); resp.Code != 40430 {
		t.Fatalf("app code = %d, want 40430", resp.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database traffic: %v", err)
	}
}
