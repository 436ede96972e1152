package service

import (
	"context"
	"fmt"

	"devconnect/internal/domain"
)

type UserService struct {
	users    domain.UserRepository
	articles *ArticleService
}

func NewUserService(users domain.UserRepository, articles *ArticleService) *UserService {
	return &UserService{users: users, articles: articles}
}

// Profile is a user page: the user and their articles.
type Profile struct {
	User     *domain.User   `json:"user"`
	Articles []*ArticleView `json:"articles"`
	IsOwn    bool           `json:"is_own"`
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// Profile loads the profile of username as seen by callerID (0 for anonymous).
func (s *UserService) Profile(ctx context.Context, username string, callerID int64) (*Profile, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, u, callerID)
}

func (s *UserService) OwnProfile(ctx context.Context, callerID int64) (*Profile, error) {
	u, err := s.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.profileOf(ctx, u, callerID)
}

func (s *UserService) profileOf(ctx context.Context, u *domain.User, callerID int64) (*Profile, error) {
	articles, err := s.articles.ListByAuthor(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, Articles: articles, IsOwn: u.ID == callerID}, nil
}
