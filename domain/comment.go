package domain

import "time"

// CommentTextMaxLength is the maximum number of characters of a comment's text.
const CommentTextMaxLength = 5000

// Comment represents a user's comment on a Post. Comments are created through
// the add-comment handler and are deleted only by cascading deletion of their
// Post or their author. The Active flag is a soft-delete marker and Updated
// auto-refreshes on mutation; neither is driven by any handler yet.
type Comment struct {
	ID     int    `json:"id"`
	PostID int    `json:"post_id" gorm:"notNull;index"`
	Post   *Post  `json:"-"`
	UserID int    `json:"user_id" gorm:"notNull;index"`
	User   User   `json:"user"`
	Text   string `json:"text"`
	Active bool   `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	ByPost(postID int) ([]Comment, error)
	Create(comment *Comment) error
}
