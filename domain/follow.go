package domain

import "time"

// Follow represents a self-referential many-to-many relationship between two
// users. A Follow is created when one user decides to follow an author. The
// FollowerID is the ID of the user that follows, the FollowedID is the ID of
// the author being followed. The composite unique index guarantees at most
// one edge per (follower, followed) pair at the storage layer.
type Follow struct {
	ID         int  `json:"id"`
	FollowerID int  `json:"-" gorm:"notNull;index;uniqueIndex:idx_follower_followed"`
	Follower   User `json:"follower"`
	FollowedID int  `json:"-" gorm:"notNull;index;uniqueIndex:idx_follower_followed"`
	Followed   User `json:"followed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
// Create is idempotent, creating the same edge twice leaves a single record.
type FollowService interface {
	Create(follow *Follow) error
	Delete(follow *Follow) error
	Exists(followerID, followedID int) (bool, error)
}
