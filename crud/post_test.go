package crud

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"wtfBlogger/domain"
	"wtfBlogger/errs"
)

func TestCreatePostListsFirstInProfile(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db)
	author := testUser(t, db, "alice")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		post := &domain.Post{
			UserID:    author.ID,
			Text:      "older post",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := ps.Create(post); err != nil {
			t.Fatalf("creating post: %v", err)
		}
	}

	newest := &domain.Post{UserID: author.ID, Text: "the newest post"}
	if err := ps.Create(newest); err != nil {
		t.Fatalf("creating newest post: %v", err)
	}

	page, err := ps.ByAuthor(author.ID, 1)
	if err != nil {
		t.Fatalf("listing author posts: %v", err)
	}
	if len(page.Posts) != 4 {
		t.Fatalf("got %d posts, want 4", len(page.Posts))
	}
	if page.Posts[0].ID != newest.ID {
		t.Errorf("newest post is not listed first, got post %d", page.Posts[0].ID)
	}

	// The new post must appear exactly once across the listing.
	seen := 0
	for _, p := range page.Posts {
		if p.ID == newest.ID {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("newest post appears %d times, want exactly once", seen)
	}
}

func TestPostPagination(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db)
	author := testUser(t, db, "bob")

	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 25; i++ {
		post := &domain.Post{
			UserID:    author.ID,
			Text:      "paginated post",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := ps.Create(post); err != nil {
			t.Fatalf("creating post %d: %v", i, err)
		}
	}

	tests := []struct {
		name        string
		requested   int
		wantNumber  int
		wantLen     int
		wantHasNext bool
		wantHasPrev bool
	}{
		{"first page", 1, 1, 10, true, false},
		{"middle page", 2, 2, 10, true, true},
		{"last page", 3, 3, 5, false, true},
		{"beyond last page clamps", 4, 3, 5, false, true},
		{"zero clamps to first", 0, 1, 10, true, false},
		{"negative clamps to first", -3, 1, 10, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := ps.Recent(tt.requested)
			if err != nil {
				t.Fatalf("listing page %d: %v", tt.requested, err)
			}
			if page.Number != tt.wantNumber {
				t.Errorf("page number = %d, want %d", page.Number, tt.wantNumber)
			}
			if len(page.Posts) != tt.wantLen {
				t.Errorf("got %d posts, want %d", len(page.Posts), tt.wantLen)
			}
			if page.HasNext != tt.wantHasNext {
				t.Errorf("has next = %v, want %v", page.HasNext, tt.wantHasNext)
			}
			if page.HasPrev != tt.wantHasPrev {
				t.Errorf("has prev = %v, want %v", page.HasPrev, tt.wantHasPrev)
			}
			if page.TotalPages != 3 {
				t.Errorf("total pages = %d, want 3", page.TotalPages)
			}
			if page.TotalCount != 25 {
				t.Errorf("total count = %d, want 25", page.TotalCount)
			}
		})
	}
}

func TestPostPaginationEmptyListing(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db)

	page, err := ps.Recent(1)
	if err != nil {
		t.Fatalf("listing empty database: %v", err)
	}
	if len(page.Posts) != 0 {
		t.Errorf("got %d posts, want 0", len(page.Posts))
	}
	if page.Number != 1 || page.TotalPages != 1 {
		t.Errorf("page %d of %d, want 1 of 1", page.Number, page.TotalPages)
	}
	if page.HasNext || page.HasPrev {
		t.Error("empty listing should have neither a next nor a previous page")
	}
}

func TestPostValidation(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db)
	author := testUser(t, db, "carol")

	if err := ps.Create(&domain.Post{UserID: author.ID}); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("empty text: got %v, want EINVALID", err)
	}

	long := strings.Repeat("x", domain.PostTextMaxLength+1)
	if err := ps.Create(&domain.Post{UserID: author.ID, Text: long}); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("text too long: got %v, want EINVALID", err)
	}

	if err := ps.Create(&domain.Post{Text: "no author"}); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("missing author: got %v, want EINVALID", err)
	}

	missingGroup := 999
	if err := ps.Create(&domain.Post{UserID: author.ID, Text: "ok", GroupID: &missingGroup}); errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Errorf("unknown group: got %v, want ENOTFOUND", err)
	}

	var count int64
	db.Model(&domain.Post{}).Count(&count)
	if count != 0 {
		t.Errorf("invalid posts were persisted, count = %d", count)
	}
}

func TestPostUpdateKeepsCreationTimestamp(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db)
	gs := NewGroupService(db)
	author := testUser(t, db, "dave")

	group := &domain.Group{Title: "Gophers", Slug: "gophers", Description: "All things Go."}
	if err := gs.Create(group); err != nil {
		t.Fatalf("creating group: %v", err)
	}

	post := &domain.Post{UserID: author.ID, Text: "first version"}
	if err := ps.Create(post); err != nil {
		t.Fatalf("creating post: %v", err)
	}

	fetched, err := ps.ByID(post.ID)
	if err != nil {
		t.Fatalf("fetching post: %v", err)
	}
	createdAt := fetched.CreatedAt

	fetched.Text = "second version"
	fetched.GroupID = &group.ID
	fetched.Group = nil
	if err := ps.Update(fetched); err != nil {
		t.Fatalf("updating post: %v", err)
	}

	updated, err := ps.ByID(post.ID)
	if err != nil {
		t.Fatalf("refetching post: %v", err)
	}
	if updated.Text != "second version" {
		t.Errorf("text = %q, want %q", updated.Text, "second version")
	}
	if updated.GroupID == nil || *updated.GroupID != group.ID {
		t.Errorf("group reference was not updated")
	}
	if !updated.CreatedAt.Equal(createdAt) {
		t.Errorf("creation timestamp changed from %v to %v", createdAt, updated.CreatedAt)
	}
}

func TestFeedOnlyShowsFollowedAuthors(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db)
	fs := NewFollowService(db)
	reader := testUser(t, db, "reader")
	followed := testUser(t, db, "followed")
	stranger := testUser(t, db, "stranger")

	if err := ps.Create(&domain.Post{UserID: followed.ID, Text: "from a followed author"}); err != nil {
		t.Fatalf("creating post: %v", err)
	}
	if err := ps.Create(&domain.Post{UserID: stranger.ID, Text: "from a stranger"}); err != nil {
		t.Fatalf("creating post: %v", err)
	}
	if err := fs.Create(&domain.Follow{FollowerID: reader.ID, FollowedID: followed.ID}); err != nil {
		t.Fatalf("creating follow: %v", err)
	}

	page, err := ps.FeedOf(reader.ID, 1)
	if err != nil {
		t.Fatalf("listing feed: %v", err)
	}
	if len(page.Posts) != 1 {
		t.Fatalf("got %d feed posts, want 1", len(page.Posts))
	}
	if page.Posts[0].UserID != followed.ID {
		t.Errorf("feed contains a post by user %d, want only posts by %d", page.Posts[0].UserID, followed.ID)
	}
}

func TestFeedOrdersNewestFirstAcrossAuthors(t *testing.T) {
	db := testDB(t)
	ps := NewPostService(db)
	fs := NewFollowService(db)
	reader := testUser(t, db, "reader")
	first := testUser(t, db, "first")
	second := testUser(t, db, "second")

	for _, author := range []*domain.User{first, second} {
		if err := fs.Create(&domain.Follow{FollowerID: reader.ID, FollowedID: author.ID}); err != nil {
			t.Fatalf("creating follow: %v", err)
		}
	}

	// Interleave the two authors, so the ordering cannot come from the
	// grouping of the join.
	base := time.Now().Add(-time.Hour)
	authors := []*domain.User{first, second, first, second}
	for i, author := range authors {
		post := &domain.Post{
			UserID:    author.ID,
			Text:      fmt.Sprintf("feed post %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := ps.Create(post); err != nil {
			t.Fatalf("creating post %d: %v", i, err)
		}
	}

	page, err := ps.FeedOf(reader.ID, 1)
	if err != nil {
		t.Fatalf("listing feed: %v", err)
	}
	if len(page.Posts) != 4 {
		t.Fatalf("got %d feed posts, want 4", len(page.Posts))
	}
	for i, want := range []string{"feed post 3", "feed post 2", "feed post 1", "feed post 0"} {
		if page.Posts[i].Text != want {
			t.Errorf("feed position %d = %q, want %q", i, page.Posts[i].Text, want)
		}
	}
}
