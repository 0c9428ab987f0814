package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/colmward/hamper/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

// Create provisions a user along with their account and the profile chosen
// at signup, all in one transaction. Requester is the default path; a
// shopper signup gets a Shopper profile instead.
func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", params.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin signup transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var accountID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO accounts (name) VALUES ($1) RETURNING id`,
		params.DisplayName,
	).Scan(&accountID)
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	user := &models.User{}
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, display_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, password_hash, display_name, created_at, updated_at`,
		params.Email, params.PasswordHash, params.DisplayName,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	switch params.ProfileType {
	case models.ProfileShopper:
		_, err = tx.Exec(ctx,
			`INSERT INTO shoppers (user_id, account_id) VALUES ($1, $2)`,
			user.ID, accountID,
		)
		if err != nil {
			return nil, fmt.Errorf("creating shopper profile: %w", err)
		}
	default:
		token, err := generateInviteToken()
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO requesters (user_id, account_id, invite_token_hash) VALUES ($1, $2, $3)`,
			user.ID, accountID, hashInviteToken(token),
		)
		if err != nil {
			return nil, fmt.Errorf("creating requester profile: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit signup: %w", err)
	}
	committed = true

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}

	return user, nil
}

// GetProfiles returns the user's profiles; either pointer may be nil.
func (s *UserService) GetProfiles(ctx context.Context, userID uuid.UUID) (*models.Requester, *models.Shopper, error) {
	p, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, nil, err
	}
	return p.Requester, p.Shopper, nil
}
