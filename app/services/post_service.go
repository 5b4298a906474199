package services

import (
	"errors"
	"fmt"

	"yatube/app/forms"
	"yatube/app/models"
	"yatube/app/pagination"
	"yatube/app/repositories"
)

// PostPage is one page of a post listing.
type PostPage = pagination.Page[*models.Post]

// PostService handles business logic for posts
type PostService struct {
	postRepo  repositories.PostRepository
	groupRepo repositories.GroupRepository
	userRepo  repositories.UserRepository
	perPage   int
}

// NewPostService creates a new PostService listing perPage posts per page
func NewPostService(postRepo repositories.PostRepository, groupRepo repositories.GroupRepository, userRepo repositories.UserRepository, perPage int) *PostService {
	if perPage < 1 {
		perPage = pagination.DefaultPerPage
	}
	return &PostService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		perPage:   perPage,
	}
}

// Index returns a page of all posts, newest first
func (s *PostService) Index(rawPage string) (*PostPage, error) {
	return s.listPage(repositories.PostFilter{}, rawPage)
}

// GroupPosts returns the group with the given slug and a page of its posts
func (s *PostService) GroupPosts(slug, rawPage string) (*models.Group, *PostPage, error) {
	group, err := s.groupRepo.GetBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.listPage(repositories.PostFilter{GroupID: group.ID}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return group, page, nil
}

// Profile returns the user with the given username and a page of their posts
func (s *PostService) Profile(username, rawPage string) (*models.User, *PostPage, error) {
	author, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.listPage(repositories.PostFilter{AuthorID: author.ID}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return author, page, nil
}

// GetPost retrieves a post by ID with its author and group attached
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.attach([]*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// Detail retrieves a post and the number of posts its author has written
func (s *PostService) Detail(id int) (*models.Post, int, error) {
	post, err := s.GetPost(id)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.postRepo.Count(repositories.PostFilter{AuthorID: post.AuthorID})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts of author %d: %w", post.AuthorID, err)
	}
	return post, count, nil
}

// Create validates the form and stores a new post written by author
func (s *PostService) Create(author *models.User, form *forms.PostForm) (*models.Post, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	group, err := s.resolveGroup(form)
	if err != nil {
		return nil, err
	}

	post := &models.Post{Text: form.Text}
	if err := post.SetAuthor(author); err != nil {
		return nil, err
	}
	post.SetGroup(group)
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("invalid post: %w", err)
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// CanEdit reports whether user may edit post
func (s *PostService) CanEdit(user *models.User, post *models.Post) bool {
	return user != nil && post != nil && user.ID == post.AuthorID
}

// Edit replaces the text and group of a post. Only the author may edit;
// the publication date and author are preserved.
func (s *PostService) Edit(user *models.User, id int, form *forms.PostForm) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !s.CanEdit(user, post) {
		return nil, ErrForbidden
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	group, err := s.resolveGroup(form)
	if err != nil {
		return nil, err
	}

	post.Text = form.Text
	post.SetGroup(group)
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("invalid post: %w", err)
	}
	if err := s.postRepo.Update(post); err != nil {
		return nil, fmt.Errorf("failed to update post %d: %w", id, err)
	}
	post.Author = user
	return post, nil
}

// resolveGroup looks up the selected group; an unknown id is a form error
func (s *PostService) resolveGroup(form *forms.PostForm) (*models.Group, error) {
	if !form.HasGroup() {
		return nil, nil
	}
	id := form.GroupID()
	if id == 0 {
		return nil, form.InvalidGroup()
	}
	group, err := s.groupRepo.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, form.InvalidGroup()
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *PostService) listPage(filter repositories.PostFilter, rawPage string) (*PostPage, error) {
	count, err := s.postRepo.Count(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	paginator := pagination.New(count, s.perPage)
	page, err := pagination.Paginate(paginator, rawPage, func(limit, offset int) ([]*models.Post, error) {
		return s.postRepo.List(filter, limit, offset)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if err := s.attach(page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

// attach populates Author and Group on each post, loading every referenced
// user and group once.
func (s *PostService) attach(posts []*models.Post) error {
	users := map[int]*models.User{}
	groups := map[int]*models.Group{}
	for _, post := range posts {
		author, ok := users[post.AuthorID]
		if !ok {
			var err error
			author, err = s.userRepo.GetByID(post.AuthorID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("failed to load author of post %d: %w", post.ID, err)
			}
			users[post.AuthorID] = author
		}
		post.Author = author

		if post.GroupID == 0 {
			continue
		}
		group, ok := groups[post.GroupID]
		if !ok {
			var err error
			group, err = s.groupRepo.GetByID(post.GroupID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("failed to load group of post %d: %w", post.ID, err)
			}
			groups[post.GroupID] = group
		}
		post.Group = group
	}
	return nil
}
