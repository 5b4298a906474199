package models

import "time"

// User is a registered author. Credentials, e-mail and account state stay
// out of its public JSON.
type User struct {
	ID           int       `json:"id" validate:"gte=0"`
	Username     string    `json:"username" validate:"required,max=150,username"`
	FirstName    string    `json:"first_name" validate:"max=150"`
	LastName     string    `json:"last_name" validate:"max=150"`
	Email        string    `json:"-" validate:"omitempty,email,max=254"`
	PasswordHash string    `json:"-" validate:"required"`
	DateJoined   time.Time `json:"date_joined" validate:"required"`
	IsActive     bool      `json:"-"`
}

// Group is a named category that posts may belong to.
type Group struct {
	ID          int    `json:"id" validate:"gte=0"`
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Description string `json:"description"`
}

// Post is a user-authored text entry. GroupID is zero when the post has no group.
type Post struct {
	ID       int       `json:"id" validate:"gte=0"`
	Text     string    `json:"text" validate:"required,notblank"`
	PubDate  time.Time `json:"pub_date" validate:"required"`
	AuthorID int       `json:"author_id" validate:"required,gt=0"`
	GroupID  int       `json:"group_id,omitempty" validate:"gte=0"`
	Author   *User     `json:"author,omitempty" validate:"-"`
	Group    *Group    `json:"group,omitempty" validate:"-"`
}

// Session binds a browser cookie token to a user.
type Session struct {
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResetToken is a password reset link. PasswordStamp fingerprints the
// password hash the link was issued against.
type ResetToken struct {
	Token         string    `json:"token"`
	UserID        int       `json:"user_id"`
	PasswordStamp string    `json:"password_stamp"`
	CreatedAt     time.Time `json:"created_at"`
}
