package mock

import (
	"sort"
	"strings"
	"sync"
	"time"

	"yatube/app/models"
	"yatube/app/repositories"
)

type PostRepository struct {
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex
}

type GroupRepository struct {
	groups map[int]*models.Group
	nextID int
	mutex  sync.RWMutex
}

type UserRepository struct {
	users  map[int]*models.User
	nextID int
	mutex  sync.RWMutex
}

type SessionRepository struct {
	sessions map[string]sessionEntry
	mutex    sync.Mutex
}

type ResetTokenRepository struct {
	tokens map[string]tokenEntry
	mutex  sync.Mutex
}

type sessionEntry struct {
	session models.Session
	expires time.Time
}

type tokenEntry struct {
	token   models.ResetToken
	expires time.Time
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		nextID: 1,
	}
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{
		groups: make(map[int]*models.Group),
		nextID: 1,
	}
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int]*models.User),
		nextID: 1,
	}
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]sessionEntry)}
}

func NewResetTokenRepository() *ResetTokenRepository {
	return &ResetTokenRepository{tokens: make(map[string]tokenEntry)}
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = m.nextID
	m.nextID++
	post.BeforeCreate()
	stored := *post
	stored.Author, stored.Group = nil, nil
	m.posts[post.ID] = &stored
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, exists := m.posts[post.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	existing.Text = post.Text
	existing.GroupID = post.GroupID
	post.AuthorID = existing.AuthorID
	post.PubDate = existing.PubDate
	return nil
}

func (m *PostRepository) matching(filter repositories.PostFilter) []*models.Post {
	var posts []*models.Post
	for _, post := range m.posts {
		if filter.GroupID > 0 && post.GroupID != filter.GroupID {
			continue
		}
		if filter.AuthorID > 0 && post.AuthorID != filter.AuthorID {
			continue
		}
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts
}

func (m *PostRepository) Count(filter repositories.PostFilter) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.matching(filter)), nil
}

func (m *PostRepository) List(filter repositories.PostFilter, limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := []*models.Post{}
	for i, post := range m.matching(filter) {
		if i < offset {
			continue
		}
		if len(posts) >= limit {
			break
		}
		copied := *post
		posts = append(posts, &copied)
	}
	return posts, nil
}

// GroupRepository implementation
func (m *GroupRepository) Create(group *models.Group) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, g := range m.groups {
		if g.Slug == group.Slug {
			return repositories.ErrDuplicate
		}
	}
	group.ID = m.nextID
	m.nextID++
	stored := *group
	m.groups[group.ID] = &stored
	return nil
}

func (m *GroupRepository) GetByID(id int) (*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	group, exists := m.groups[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	copied := *group
	return &copied, nil
}

func (m *GroupRepository) GetBySlug(slug string) (*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, group := range m.groups {
		if group.Slug == slug {
			copied := *group
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *GroupRepository) List() ([]*models.Group, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	groups := []*models.Group{}
	for _, group := range m.groups {
		copied := *group
		groups = append(groups, &copied)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

// UserRepository implementation
func (m *UserRepository) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Username, user.Username) {
			return repositories.ErrDuplicate
		}
		if user.Email != "" && strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *UserRepository) find(match func(u *models.User) bool) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, user := range m.users {
		if match(user) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) GetByUsername(username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Username == username })
}

func (m *UserRepository) UsernameTaken(username string) (bool, error) {
	_, err := m.find(func(u *models.User) bool { return strings.EqualFold(u.Username, username) })
	if err == repositories.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *UserRepository) GetByEmail(email string) (*models.User, error) {
	if email == "" {
		return nil, repositories.ErrNotFound
	}
	return m.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *UserRepository) Update(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, exists := m.users[user.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	if user.Email != "" {
		for id, u := range m.users {
			if id != user.ID && strings.EqualFold(u.Email, user.Email) {
				return repositories.ErrDuplicate
			}
		}
	}
	user.Username = existing.Username
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

// SessionRepository implementation
func (m *SessionRepository) Create(session *models.Session, ttl time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.Token] = sessionEntry{session: *session, expires: time.Now().Add(ttl)}
	return nil
}

func (m *SessionRepository) Get(token string) (*models.Session, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.sessions[token]
	if !exists || time.Now().After(entry.expires) {
		return nil, repositories.ErrNotFound
	}
	session := entry.session
	return &session, nil
}

func (m *SessionRepository) Delete(token string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *SessionRepository) DeleteForUser(userID int, keep string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for token, entry := range m.sessions {
		if entry.session.UserID == userID && token != keep {
			delete(m.sessions, token)
		}
	}
	return nil
}

// ResetTokenRepository implementation
func (m *ResetTokenRepository) Create(token *models.ResetToken, ttl time.Duration) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.tokens[token.Token] = tokenEntry{token: *token, expires: time.Now().Add(ttl)}
	return nil
}

func (m *ResetTokenRepository) Get(token string) (*models.ResetToken, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.tokens[token]
	if !exists || time.Now().After(entry.expires) {
		return nil, repositories.ErrNotFound
	}
	stored := entry.token
	return &stored, nil
}

func (m *ResetTokenRepository) Consume(token string) (*models.ResetToken, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.tokens[token]
	if !exists || time.Now().After(entry.expires) {
		return nil, repositories.ErrNotFound
	}
	delete(m.tokens, token)
	stored := entry.token
	return &stored, nil
}

var (
	_ repositories.PostRepository       = (*PostRepository)(nil)
	_ repositories.GroupRepository      = (*GroupRepository)(nil)
	_ repositories.UserRepository       = (*UserRepository)(nil)
	_ repositories.SessionRepository    = (*SessionRepository)(nil)
	_ repositories.ResetTokenRepository = (*ResetTokenRepository)(nil)
)
