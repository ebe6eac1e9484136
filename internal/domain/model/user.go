package model

import "time"

// User mirrors the chat-platform identity; ID is the external Telegram id as
// opaque text. The bot never builds a richer profile than this.
type User struct {
	ID        string
	Name      string
	Username  string
	IsAdmin   bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewUser(id, name, username string, isAdmin bool) *User {
	now := time.Now()
	return &User{
		ID:        id,
		Name:      name,
		Username:  username,
		IsAdmin:   isAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
