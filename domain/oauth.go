package domain

import "time"

// OAuth links a User to an account at an external oauth provider. A user
// logging in through a provider for the first time gets a User record and
// an OAuth record created in one go.
type OAuth struct {
	ID             int    `json:"id"`
	UserID         int    `json:"user_id" gorm:"notNull;index"`
	User           *User  `json:"user,omitempty"`
	Provider       string `json:"provider" gorm:"notNull"`
	ProviderUserID string `json:"provider_user_id" gorm:"notNull;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OAuthService is a set of methods to manipulate and work with the OAuth model.
type OAuthService interface {
	ByProviderUserID(provider, providerUserID string) (*OAuth, error)
	Create(oauth *OAuth) error
}
