package domain

import "time"

// StoredAccount is one entry of the client-side account registry.
type StoredAccount struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	AvatarRef   string    `json:"avatarRef,omitempty"`
	LastUsedAt  time.Time `json:"lastUsedAt"`
}
