package domain

import "time"

// PostTextMaxLength is the maximum number of characters of a post's text.
const PostTextMaxLength = 5000

// Post represents a blog post. A Post always belongs to exactly one author
// and may optionally be filed under a Group. Its images are stored as files
// in the filesystem, not in the database. The CreatedAt timestamp is set
// once on creation and never touched by the edit handler.
type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id" gorm:"notNull;index"`
	User   User   `json:"user"`
	Text   string `json:"text"`

	// GroupID is a pointer, so a post without a group stores null. A plain
	// int would write 0 on updates and trip the foreign key constraint.
	GroupID *int   `json:"group_id,omitempty"`
	Group   *Group `json:"group,omitempty"`

	Comments []Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Images   []Image   `json:"images,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostService is a set of methods to manipulate and work with the Post model.
// All listing methods return pages of 10 posts, ordered newest first.
type PostService interface {
	ByID(id int) (*Post, error)
	Recent(page int) (*PostPage, error)
	ByGroup(groupID, page int) (*PostPage, error)
	ByAuthor(userID, page int) (*PostPage, error)
	FeedOf(userID, page int) (*PostPage, error)
	CountByAuthor(userID int) (int, error)
	Create(post *Post) error
	Update(post *Post) error
}
