package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wtfBlogger/crud"
	"wtfBlogger/domain"
)

// newTestServer builds a Server on top of a fresh in-memory sqlite database.
// It runs outside prod mode, so requests talk plain json without a csrf
// token roundtrip. The services and the raw db handle are returned too, so
// tests can arrange fixtures and inspect state directly.
func newTestServer(t *testing.T) (*Server, *crud.Services, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	err = db.AutoMigrate(
		domain.User{},
		domain.OAuth{},
		domain.Group{},
		domain.Post{},
		domain.Comment{},
		domain.Follow{},
	)
	if err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	services, err := crud.NewServices(db,
		crud.WithUser("test-hmac-key", "test-pepper"),
		crud.WithGroup(),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithFollow(),
		crud.WithImage(),
		crud.WithOAuth(),
	)
	if err != nil {
		t.Fatalf("creating services: %v", err)
	}

	s := NewServer(false, "http://localhost:3000", "test-csrf-key", &oauth2.Config{}, services)
	return s, services, db
}

// registerUser creates a user through the UserService. The returned user
// carries its plain remember token, which is what the cookie needs.
func registerUser(t *testing.T, services *crud.Services, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username: username,
		Name:     "Test " + username,
		Email:    username + "@example.com",
		Password: "password123",
	}
	if err := services.User.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %q: %v", username, err)
	}
	return user
}

// doRequest dispatches a request through the server and returns the recorder.
// When user is non-nil the request carries the user's remember token cookie.
func doRequest(s *Server, method, target string, body string, user *domain.User) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != nil {
		req.AddCookie(&http.Cookie{Name: "remember_token", Value: user.Remember})
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestIndexListsRecentPosts(t *testing.T) {
	s, services, _ := newTestServer(t)
	author := registerUser(t, services, "alice")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		post := &domain.Post{
			UserID:    author.ID,
			Text:      fmt.Sprintf("post number %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := services.Post.Create(post); err != nil {
			t.Fatalf("creating post %d: %v", i, err)
		}
	}

	rec := doRequest(s, "GET", "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response struct {
		Title string          `json:"title"`
		Page  domain.PostPage `json:"page"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.Title != "Latest updates on the site" {
		t.Errorf("title = %q", response.Title)
	}
	if len(response.Page.Posts) != domain.PostsPerPage {
		t.Errorf("got %d posts, want %d", len(response.Page.Posts), domain.PostsPerPage)
	}
	if response.Page.Posts[0].Text != "post number 11" {
		t.Errorf("first post = %q, want the newest one", response.Page.Posts[0].Text)
	}
	if response.Page.TotalCount != 12 || response.Page.TotalPages != 2 {
		t.Errorf("total count %d over %d pages, want 12 over 2",
			response.Page.TotalCount, response.Page.TotalPages)
	}
}

func TestFeedRequiresLogin(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, "GET", "/feed", "", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirected to %q, want /login", loc)
	}
}

func TestFeedShowsFollowedAuthorsOnly(t *testing.T) {
	s, services, _ := newTestServer(t)
	reader := registerUser(t, services, "reader")
	followed := registerUser(t, services, "followed")
	stranger := registerUser(t, services, "stranger")

	if err := services.Post.Create(&domain.Post{UserID: followed.ID, Text: "in the feed"}); err != nil {
		t.Fatalf("creating post: %v", err)
	}
	if err := services.Post.Create(&domain.Post{UserID: stranger.ID, Text: "not in the feed"}); err != nil {
		t.Fatalf("creating post: %v", err)
	}
	if err := services.Follow.Create(&domain.Follow{FollowerID: reader.ID, FollowedID: followed.ID}); err != nil {
		t.Fatalf("creating follow: %v", err)
	}

	rec := doRequest(s, "GET", "/feed", "", reader)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response struct {
		Title string          `json:"title"`
		Page  domain.PostPage `json:"page"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(response.Page.Posts) != 1 || response.Page.Posts[0].Text != "in the feed" {
		t.Errorf("feed = %+v, want exactly the followed author's post", response.Page.Posts)
	}
}

func TestCreatePostRedirectsToProfile(t *testing.T) {
	s, services, db := newTestServer(t)
	author := registerUser(t, services, "writer")

	rec := doRequest(s, "POST", "/post", `{"text":"a brand new post"}`, author)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/profile/writer" {
		t.Errorf("redirected to %q, want /profile/writer", loc)
	}

	var count int64
	db.Model(&domain.Post{}).Where("user_id = ?", author.ID).Count(&count)
	if count != 1 {
		t.Errorf("post count = %d, want 1", count)
	}
}

func TestEditPostByNonAuthorIsSoftDenied(t *testing.T) {
	s, services, _ := newTestServer(t)
	author := registerUser(t, services, "author")
	intruder := registerUser(t, services, "intruder")

	post := &domain.Post{UserID: author.ID, Text: "the original text"}
	if err := services.Post.Create(post); err != nil {
		t.Fatalf("creating post: %v", err)
	}

	target := fmt.Sprintf("/post/%d", post.ID)
	rec := doRequest(s, "POST", target, `{"text":"defaced"}`, intruder)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != target {
		t.Errorf("redirected to %q, want %q", loc, target)
	}

	stored, err := services.Post.ByID(post.ID)
	if err != nil {
		t.Fatalf("fetching post: %v", err)
	}
	if stored.Text != "the original text" {
		t.Errorf("text = %q, the edit was not denied", stored.Text)
	}
}

func TestEditPostByAuthor(t *testing.T) {
	s, services, _ := newTestServer(t)
	author := registerUser(t, services, "author")

	post := &domain.Post{UserID: author.ID, Text: "the original text"}
	if err := services.Post.Create(post); err != nil {
		t.Fatalf("creating post: %v", err)
	}

	target := fmt.Sprintf("/post/%d", post.ID)
	rec := doRequest(s, "PUT", target, `{"text":"the edited text"}`, author)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != target {
		t.Errorf("redirected to %q, want %q", loc, target)
	}

	stored, err := services.Post.ByID(post.ID)
	if err != nil {
		t.Fatalf("fetching post: %v", err)
	}
	if stored.Text != "the edited text" {
		t.Errorf("text = %q, want the edited text", stored.Text)
	}
}

func TestAddComment(t *testing.T) {
	s, services, db := newTestServer(t)
	author := registerUser(t, services, "author")
	commenter := registerUser(t, services, "commenter")

	post := &domain.Post{UserID: author.ID, Text: "a post"}
	if err := services.Post.Create(post); err != nil {
		t.Fatalf("creating post: %v", err)
	}

	target := fmt.Sprintf("/post/%d/comment", post.ID)
	rec := doRequest(s, "POST", target, `{"text":"Nice post!"}`, commenter)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc, want := rec.Header().Get("Location"), fmt.Sprintf("/post/%d", post.ID); loc != want {
		t.Errorf("redirected to %q, want %q", loc, want)
	}

	var comments []domain.Comment
	db.Where("post_id = ?", post.ID).Find(&comments)
	if len(comments) != 1 {
		t.Fatalf("comment count = %d, want 1", len(comments))
	}
	if comments[0].Text != "Nice post!" || comments[0].UserID != commenter.ID || !comments[0].Active {
		t.Errorf("stored comment = %+v", comments[0])
	}
}

func TestAddInvalidCommentIsSilentlyDiscarded(t *testing.T) {
	s, services, db := newTestServer(t)
	author := registerUser(t, services, "author")

	post := &domain.Post{UserID: author.ID, Text: "a post"}
	if err := services.Post.Create(post); err != nil {
		t.Fatalf("creating post: %v", err)
	}

	// Empty text fails validation, but the client still just gets the
	// redirect back to the post.
	target := fmt.Sprintf("/post/%d/comment", post.ID)
	rec := doRequest(s, "POST", target, `{"text":""}`, author)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}

	var count int64
	db.Model(&domain.Comment{}).Count(&count)
	if count != 0 {
		t.Errorf("comment count = %d, want 0", count)
	}
}

func TestAddCommentToMissingPost(t *testing.T) {
	s, services, _ := newTestServer(t)
	user := registerUser(t, services, "commenter")

	rec := doRequest(s, "POST", "/post/999/comment", `{"text":"hello?"}`, user)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestFollowSelfIsANoop(t *testing.T) {
	s, services, db := newTestServer(t)
	user := registerUser(t, services, "loner")

	rec := doRequest(s, "POST", "/follow/loner", "", user)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/profile/loner" {
		t.Errorf("redirected to %q, want /profile/loner", loc)
	}

	var count int64
	db.Model(&domain.Follow{}).Count(&count)
	if count != 0 {
		t.Errorf("self follow created %d edges, want 0", count)
	}
}

func TestFollowIsIdempotentAcrossRequests(t *testing.T) {
	s, services, db := newTestServer(t)
	follower := registerUser(t, services, "follower")
	registerUser(t, services, "author")

	for i := 0; i < 2; i++ {
		rec := doRequest(s, "POST", "/follow/author", "", follower)
		if rec.Code != http.StatusFound {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, http.StatusFound)
		}
	}

	var count int64
	db.Model(&domain.Follow{}).Count(&count)
	if count != 1 {
		t.Errorf("edge count = %d, want exactly 1", count)
	}
}

func TestUnfollowWithoutEdgeIsANotFound(t *testing.T) {
	s, services, _ := newTestServer(t)
	user := registerUser(t, services, "walter")
	registerUser(t, services, "jesse")

	rec := doRequest(s, "POST", "/unfollow/jesse", "", user)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestProfileShowsFollowState(t *testing.T) {
	s, services, _ := newTestServer(t)
	follower := registerUser(t, services, "follower")
	author := registerUser(t, services, "author")

	if err := services.Follow.Create(&domain.Follow{FollowerID: follower.ID, FollowedID: author.ID}); err != nil {
		t.Fatalf("creating follow: %v", err)
	}

	var response struct {
		Title     string `json:"title"`
		Following bool   `json:"following"`
		PostCount int    `json:"post_count"`
	}

	// The follower sees the author as followed.
	rec := doRequest(s, "GET", "/profile/author", "", follower)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.Title != "Profile of Test author" {
		t.Errorf("title = %q", response.Title)
	}
	if !response.Following {
		t.Error("following = false, want true for the follower")
	}

	// An anonymous visitor never does.
	rec = doRequest(s, "GET", "/profile/author", "", nil)
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.Following {
		t.Error("following = true for an anonymous visitor")
	}
}

func TestProfileOfUnknownAuthor(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, "GET", "/profile/nobody", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPostDetail(t *testing.T) {
	s, services, _ := newTestServer(t)
	author := registerUser(t, services, "author")

	post := &domain.Post{UserID: author.ID, Text: "a detailed post"}
	if err := services.Post.Create(post); err != nil {
		t.Fatalf("creating post: %v", err)
	}
	if err := services.Comment.Create(&domain.Comment{PostID: post.ID, UserID: author.ID, Text: "first"}); err != nil {
		t.Fatalf("creating comment: %v", err)
	}

	rec := doRequest(s, "GET", fmt.Sprintf("/post/%d", post.ID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response struct {
		Post      domain.Post      `json:"post"`
		PostCount int              `json:"post_count"`
		Comments  []domain.Comment `json:"comments"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.Post.Text != "a detailed post" {
		t.Errorf("post text = %q", response.Post.Text)
	}
	if response.PostCount != 1 {
		t.Errorf("post count = %d, want 1", response.PostCount)
	}
	if len(response.Comments) != 1 || response.Comments[0].Text != "first" {
		t.Errorf("comments = %+v, want the single comment", response.Comments)
	}
}

func TestPostDetailNotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doRequest(s, "GET", "/post/999", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGroupPosts(t *testing.T) {
	s, services, _ := newTestServer(t)
	author := registerUser(t, services, "author")

	group := &domain.Group{Title: "Gophers", Slug: "gophers"}
	if err := services.Group.Create(group); err != nil {
		t.Fatalf("creating group: %v", err)
	}
	if err := services.Post.Create(&domain.Post{UserID: author.ID, Text: "filed", GroupID: &group.ID}); err != nil {
		t.Fatalf("creating grouped post: %v", err)
	}
	if err := services.Post.Create(&domain.Post{UserID: author.ID, Text: "unfiled"}); err != nil {
		t.Fatalf("creating ungrouped post: %v", err)
	}

	rec := doRequest(s, "GET", "/group/gophers", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response struct {
		Title string          `json:"title"`
		Group domain.Group    `json:"group"`
		Page  domain.PostPage `json:"page"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.Title != "Posts of the community Gophers" {
		t.Errorf("title = %q", response.Title)
	}
	if len(response.Page.Posts) != 1 || response.Page.Posts[0].Text != "filed" {
		t.Errorf("page = %+v, want only the post filed under the group", response.Page.Posts)
	}

	rec = doRequest(s, "GET", "/group/no-such-group", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown group: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s, _, _ := newTestServer(t)

	body := `{"username":"newbie","name":"New Bee","email":"newbie@example.com","password":"password123"}`
	rec := doRequest(s, "POST", "/register", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	// Registration sets the remember token cookie.
	cookie := rec.Result().Cookies()
	found := false
	for _, c := range cookie {
		if c.Name == "remember_token" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("no remember_token cookie was set on register")
	}

	rec = doRequest(s, "POST", "/login", `{"email":"newbie@example.com","password":"password123"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	rec = doRequest(s, "POST", "/login", `{"email":"newbie@example.com","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad login status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}
