package repositories

import (
	"time"

	"yatube/app/models"
)

// PostFilter narrows a post listing to one group, one author, or both.
// Zero fields are ignored; the zero filter selects every post.
type PostFilter struct {
	GroupID  int
	AuthorID int
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	Update(post *models.Post) error
	Count(filter PostFilter) (int, error)
	// List returns posts newest first.
	List(filter PostFilter, limit, offset int) ([]*models.Post, error)
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(group *models.Group) error
	GetByID(id int) (*models.Group, error)
	GetBySlug(slug string) (*models.Group, error)
	List() ([]*models.Group, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	// UsernameTaken reports whether a username is in use in any letter case.
	UsernameTaken(username string) (bool, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// SessionRepository stores login sessions that expire after a TTL
type SessionRepository interface {
	Create(session *models.Session, ttl time.Duration) error
	Get(token string) (*models.Session, error)
	Delete(token string) error
	// DeleteForUser removes every session of userID except keep.
	DeleteForUser(userID int, keep string) error
}

// ResetTokenRepository stores single-use password reset tokens
type ResetTokenRepository interface {
	Create(token *models.ResetToken, ttl time.Duration) error
	Get(token string) (*models.ResetToken, error)
	Consume(token string) (*models.ResetToken, error)
}
