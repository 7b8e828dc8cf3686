package crud

import (
	"testing"

	"wtfBlogger/domain"
	"wtfBlogger/errs"
)

func TestGroupBySlug(t *testing.T) {
	db := testDB(t)
	gs := NewGroupService(db)

	group := &domain.Group{Title: "Gophers", Slug: "Gophers ", Description: "All things Go."}
	if err := gs.Create(group); err != nil {
		t.Fatalf("creating group: %v", err)
	}

	// The slug gets normalized on the way in.
	found, err := gs.BySlug("gophers")
	if err != nil {
		t.Fatalf("fetching group by slug: %v", err)
	}
	if found.ID != group.ID {
		t.Errorf("fetched group %d, want %d", found.ID, group.ID)
	}

	if _, err := gs.BySlug("no-such-group"); errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Errorf("unknown slug: got %v, want ENOTFOUND", err)
	}
}

func TestGroupValidation(t *testing.T) {
	db := testDB(t)
	gs := NewGroupService(db)

	if err := gs.Create(&domain.Group{Slug: "untitled"}); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("missing title: got %v, want EINVALID", err)
	}
	if err := gs.Create(&domain.Group{Title: "No Slug"}); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("missing slug: got %v, want EINVALID", err)
	}
	if err := gs.Create(&domain.Group{Title: "Bad Slug", Slug: "not a slug!"}); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("malformed slug: got %v, want EINVALID", err)
	}

	if err := gs.Create(&domain.Group{Title: "First", Slug: "taken"}); err != nil {
		t.Fatalf("creating group: %v", err)
	}
	if err := gs.Create(&domain.Group{Title: "Second", Slug: "taken"}); errs.ErrorCode(err) != errs.EINVALID {
		t.Errorf("duplicate slug: got %v, want EINVALID", err)
	}
}

func TestDeletingGroupKeepsPosts(t *testing.T) {
	db := testDB(t)
	gs := NewGroupService(db)
	ps := NewPostService(db)
	author := testUser(t, db, "grouped")

	group := &domain.Group{Title: "Doomed", Slug: "doomed"}
	if err := gs.Create(group); err != nil {
		t.Fatalf("creating group: %v", err)
	}
	post := &domain.Post{UserID: author.ID, Text: "survives its group", GroupID: &group.ID}
	if err := ps.Create(post); err != nil {
		t.Fatalf("creating post: %v", err)
	}

	if err := db.Delete(&domain.Group{}, "id = ?", group.ID).Error; err != nil {
		t.Fatalf("deleting group: %v", err)
	}

	if _, err := ps.ByID(post.ID); err != nil {
		t.Fatalf("post did not survive group deletion: %v", err)
	}
}
