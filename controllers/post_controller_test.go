package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/leonidz/blogicum/middleware"
	"github.com/leonidz/blogicum/utils"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func jsonBody(s string) *strings.Reader { return strings.NewReader(s) }

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) utils.JSONResponse {
	t.Helper()
	var resp utils.JSONResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestPostFromRequestIgnoresClientAuthor(t *testing.T) {
	// A malicious payload names another user as author in every shape the
	// model could accept; binding must drop all of them.
	payload := `{"title":"mine","text":"body","author_id":99,"author":{"id":99,"username":"mallory"}}`

	var req postRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	post := postFromRequest(req, 7)
	if post.AuthorID != 7 {
		t.Fatalf("AuthorID = %d, want the token identity 7", post.AuthorID)
	}
	if post.Author.ID != 0 {
		t.Fatalf("Author association = %+v, want zero value", post.Author)
	}
	if post.Title != "mine" || post.Text != "body" {
		t.Fatalf("content fields lost: %+v", post)
	}
}

func TestPostFromRequestDefaults(t *testing.T) {
	post := postFromRequest(postRequest{Title: "t", Text: "x"}, 1)
	if !post.IsPublished {
		t.Fatal("IsPublished should default to true")
	}
	if !post.PubDate.IsZero() {
		t.Fatalf("PubDate = %v, want zero until the create hook fills it", post.PubDate)
	}

	future := time.Now().Add(24 * time.Hour)
	hidden := false
	post = postFromRequest(postRequest{Title: "t", Text: "x", PubDate: &future, IsPublished: &hidden}, 1)
	if !post.PubDate.Equal(future) {
		t.Fatalf("PubDate = %v, want scheduled %v", post.PubDate, future)
	}
	if post.IsPublished {
		t.Fatal("explicit is_published=false must be honored")
	}
}

func TestDeleteCommentByNonAuthorForbidden(t *testing.T) {
	db, mock := newMockDB(t)

	// Comment 5 belongs to user 2; only the lookup may reach the database.
	mock.ExpectQuery("SELECT (.+) FROM `comments` WHERE id = (.+)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "author_id", "text", "created_at"}).
			AddRow(5, 3, 2, "keep me", time.Now()))

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/comments/5", nil)
	ctx.Params = gin.Params{{Key: "commentId", Value: "5"}}
	ctx.Set(middleware.ContextUserIDKey, uint(1))
	ctx.Set(middleware.ContextUsernameKey, "alice")

	NewPostController(db).DeleteComment(ctx)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if resp := decodeEnvelope(t, rec); resp.Code != 40321 {
		t.Fatalf("app code = %d, want 40321", resp.Code)
	}
	// No DELETE was expected; a stray one would have failed the mock.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database traffic: %v", err)
	}
}

func TestUpdateCommentByNonAuthorForbidden(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM `comments` WHERE id = (.+)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "author_id", "text", "created_at"}).
			AddRow(5, 3, 2, "keep me", time.Now()))

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodPut, "/api/v1/comments/5",
		jsonBody(`{"text":"overwritten"}`))
	ctx.Request.Header.Set("Content-Type", "application/json")
	ctx.Params = gin.Params{{Key: "commentId", Value: "5"}}
	ctx.Set(middleware.ContextUserIDKey, uint(1))
	ctx.Set(middleware.ContextUsernameKey, "alice")

	NewPostController(db).UpdateComment(ctx)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database traffic: %v", err)
	}
}

func TestGetPostRejectsNonNumericID(t *testing.T) {
	// "1abc" must not coerce to post 1; the handler rejects it before any
	// query, so a nil DB proves nothing was fetched.
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/v1/posts/1abc", nil)
	ctx.Params = gin.Params{{Key: "id", Value: "1abc"}}

	NewPostController(nil).GetPost(ctx)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if resp := decodeEnvelope(t, rec); resp.Code != 40401 {
		t.Fatalf("app code = %d, want 40401", resp.Code)
	}
}

func TestDeleteCommentRejectsNonNumericID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/comments/9zz", nil)
	ctx.Params = gin.Params{{Key: "commentId", Value: "9zz"}}
	ctx.Set(middleware.ContextUserIDKey, uint(1))
	ctx.Set(middleware.ContextUsernameKey, "alice")

	NewPostController(nil).DeleteComment(ctx)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestParseID(t *testing.T) {
	if id, ok := parseID("42"); !ok || id != 42 {
		t.Fatalf("parseID(42) = %d, %v", id, ok)
	}
	for _, raw := range []string{"", "0", "-1", "1abc", "abc", "1.5", " 1"} {
		if _, ok := parseID(raw); ok {
			t.Fatalf("parseID(%q) accepted, want rejection", raw)
		}
	}
}
