package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"devconnect/internal/domain"
)

const userColumns = `id, username, email, password_hash, avatar, description, skills, created_at`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	skills, err := json.Marshal(nonNilSkills(u.Skills))
	if err != nil {
		return fmt.Errorf("encode skills: %w", err)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, avatar, description, skills, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.Username, u.Email, u.PasswordHash, u.Avatar, u.Description, string(skills), u.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: username or email already taken", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	u.ID = id
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	u, err := scanUserRow(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserRow(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var skills string
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Avatar,
		&u.Description,
		&skills,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	if skills != "" {
		if err := json.Unmarshal([]byte(skills), &u.Skills); err != nil {
			return nil, fmt.Errorf("decode skills: %w", err)
		}
	}
	u.Skills = nonNilSkills(u.Skills)
	return u, nil
}

func nonNilSkills(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
