package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"devconnect/internal/domain"
	"devconnect/internal/security"
	"devconnect/internal/storage"
	"devconnect/internal/upload"
)

// AuthService handles registration, login, and session resolution.
type AuthService struct {
	users  domain.UserRepository
	tokens *security.TokenService
	hash   *security.PasswordHasher
	files  FileStore
	now    func() time.Time
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService, hash *security.PasswordHasher, files FileStore) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hash:   hash,
		files:  files,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Description     string
	Skills          []string
	Avatar          *Upload
}

type LoginInput struct {
	Email    string
	Password string
}

// Session is an issued login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if in.Password != in.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}

	var avatar *upload.Accepted
	if in.Avatar.present() {
		acc, err := admit(in.Avatar, upload.KindAvatar)
		if err != nil {
			return nil, err
		}
		avatar = acc
	}

	// Check username uniqueness
	if existing, err := s.users.GetByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: username or email already taken", domain.ErrConflict)
	}

	// Check email uniqueness
	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: username or email already taken", domain.ErrConflict)
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Description:  strings.TrimSpace(in.Description),
		Skills:       CleanSkills(in.Skills),
	}

	var saved *storage.Stored
	if avatar != nil {
		// Stored before the user row exists, so the owner part is 0.
		saved, err = store(s.files, 0, s.now(), avatar, in.Avatar.Body)
		if err != nil {
			return nil, err
		}
		user.Avatar = strPtr(saved.PublicPath)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if saved != nil {
			if rmErr := s.files.Remove(saved.Kind, saved.Name); rmErr != nil {
				log.Printf("auth: remove avatar %s: %v", saved.Name, rmErr)
			}
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || !s.hash.Matches(in.Password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.TTL()),
		User:      user,
	}, nil
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	id, err := s.tokens.UserID(token)
	if err != nil {
		if errors.Is(err, security.ErrInvalidSession) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// CleanSkills trims entries, drops blanks and duplicates, keeping order.
// A single comma separated entry is split.
func CleanSkills(raw []string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, entry := range raw {
		for _, s := range strings.Split(entry, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			key := strings.ToLower(s)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
