package services

import (
	"errors"
	"fmt"
	"strings"

	"yatube/app/models"
	"yatube/app/repositories"
)

// GroupService manages post groups
type GroupService struct {
	groupRepo repositories.GroupRepository
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo repositories.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// CreateGroup validates and stores a new group
func (s *GroupService) CreateGroup(title, slug, description string) (*models.Group, error) {
	group := &models.Group{
		Title:       strings.TrimSpace(title),
		Slug:        strings.TrimSpace(slug),
		Description: strings.TrimSpace(description),
	}
	if err := group.Validate(); err != nil {
		return nil, fmt.Errorf("invalid group: %w", err)
	}
	if err := s.groupRepo.Create(group); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("group with slug %q already exists: %w", group.Slug, err)
		}
		return nil, err
	}
	return group, nil
}

// GetBySlug retrieves a group by slug
func (s *GroupService) GetBySlug(slug string) (*models.Group, error) {
	return s.groupRepo.GetBySlug(slug)
}

// ListGroups returns all groups ordered by title
func (s *GroupService) ListGroups() ([]*models.Group, error) {
	return s.groupRepo.List()
}
