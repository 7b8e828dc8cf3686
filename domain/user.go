package domain

import (
	"context"
	"time"
)

// User represents a registered author. Users write Posts and Comments and
// follow each other. The Password and Remember fields only ever exist in
// memory, the database stores their hashed counterparts.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username" gorm:"notNull;uniqueIndex"`
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"notNull;uniqueIndex"`
	Avatar   string `json:"avatar"`

	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-"`
	Remember     string `json:"-" gorm:"-"`
	RememberHash string `json:"-"`

	// NoPasswordNeeded is set for users created through an oauth provider.
	NoPasswordNeeded bool `json:"-" gorm:"-"`

	Posts     []Post    `json:"posts,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Comments  []Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Followers []Follow  `json:"followers,omitempty" gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
	Followeds []Follow  `json:"followeds,omitempty" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserService is a set of methods to manipulate and work with the User model.
// It also contains the database-facing half of the authentication system.
type UserService interface {
	Authenticate(email, password string) (*User, error)
	ByID(id int) (*User, error)
	ByUsername(username string) (*User, error)
	ByEmail(email string) (*User, error)
	ByRemember(token string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	MakeRememberToken() (string, error)
}
