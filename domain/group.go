package domain

import "time"

// Group is a named category that posts can optionally be filed under.
// It is addressed externally by its unique url slug. Deleting a Group
// does not delete its Posts, their group reference is set to null instead.
type Group struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug" gorm:"notNull;uniqueIndex"`
	Description string `json:"description"`

	Posts []Post `json:"posts,omitempty" gorm:"constraint:OnDelete:SET NULL"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupService is a set of methods to manipulate and work with the Group model.
type GroupService interface {
	BySlug(slug string) (*Group, error)
	Create(group *Group) error
}
