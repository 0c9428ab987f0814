package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/colmward/hamper/internal/authz"
	"github.com/colmward/hamper/internal/models"
)

var (
	ErrRequesterNotFound = errors.New("requester not found")
	ErrShopperNotFound   = errors.New("shopper not found")
	// ErrInviteNotFound covers both an unknown requester ID and a stale
	// token. The token doubles as a secret, so a mismatch never reveals
	// whether the requester exists.
	ErrInviteNotFound = errors.New("invite not found")
)

// RelationService manages the requester-shopper relation and the invite
// tokens that gate it.
type RelationService struct {
	db      DB
	baseURL string
}

func NewRelationService(db DB, baseURL string) *RelationService {
	return &RelationService{db: db, baseURL: baseURL}
}

// ListShoppers returns the shoppers the acting requester has authorized.
func (s *RelationService) ListShoppers(ctx context.Context, userID uuid.UUID) ([]models.ShopperSummary, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(authz.ActionListShoppers, principal, authz.Target{}) {
		return nil, ErrForbidden
	}

	rows, err := s.db.Query(ctx,
		`SELECT sh.id, sh.user_id, sh.account_id, sh.created_at, u.display_name
		 FROM requester_shoppers rs
		 JOIN shoppers sh ON rs.shopper_id = sh.id
		 JOIN users u ON sh.user_id = u.id
		 WHERE rs.requester_id = $1
		 ORDER BY u.display_name`,
		principal.Requester.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing shoppers: %w", err)
	}
	defer rows.Close()

	shoppers := []models.ShopperSummary{}
	for rows.Next() {
		var sh models.ShopperSummary
		if err := rows.Scan(&sh.ID, &sh.UserID, &sh.AccountID, &sh.CreatedAt, &sh.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning shopper: %w", err)
		}
		shoppers = append(shoppers, sh)
	}
	return shoppers, rows.Err()
}

// GetShopper returns one shopper in the acting requester's set.
func (s *RelationService) GetShopper(ctx context.Context, userID, shopperID uuid.UUID) (*models.ShopperSummary, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	shopper, err := s.loadShopper(ctx, shopperID)
	if err != nil {
		return nil, err
	}

	if !authz.Allowed(authz.ActionViewShopper, principal, authz.Target{Shopper: &shopper.Shopper}) {
		return nil, ErrForbidden
	}
	return shopper, nil
}

// RemoveShopper severs the relation. The removal is idempotent at the
// storage level and never touches the shopper's existing claims.
func (s *RelationService) RemoveShopper(ctx context.Context, userID, shopperID uuid.UUID) error {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return err
	}

	shopper, err := s.loadShopper(ctx, shopperID)
	if err != nil {
		return err
	}

	if !authz.Allowed(authz.ActionRemoveShopper, principal, authz.Target{Shopper: &shopper.Shopper}) {
		return ErrForbidden
	}

	_, err = s.db.Exec(ctx,
		`DELETE FROM requester_shoppers WHERE requester_id = $1 AND shopper_id = $2`,
		principal.Requester.ID, shopperID,
	)
	if err != nil {
		return fmt.Errorf("removing shopper: %w", err)
	}
	return nil
}

// ListRequesters returns the requesters that authorized the acting shopper.
func (s *RelationService) ListRequesters(ctx context.Context, userID uuid.UUID) ([]models.RequesterSummary, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(authz.ActionListRequesters, principal, authz.Target{}) {
		return nil, ErrForbidden
	}

	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.user_id, r.account_id, r.created_at, u.display_name
		 FROM requester_shoppers rs
		 JOIN requesters r ON rs.requester_id = r.id
		 JOIN users u ON r.user_id = u.id
		 WHERE rs.shopper_id = $1
		 ORDER BY u.display_name`,
		principal.Shopper.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing requesters: %w", err)
	}
	defer rows.Close()

	requesters := []models.RequesterSummary{}
	for rows.Next() {
		var r models.RequesterSummary
		if err := rows.Scan(&r.ID, &r.UserID, &r.AccountID, &r.CreatedAt, &r.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning requester: %w", err)
		}
		requesters = append(requesters, r)
	}
	return requesters, rows.Err()
}

// GetRequester returns one requester that authorized the acting shopper.
func (s *RelationService) GetRequester(ctx context.Context, userID, requesterID uuid.UUID) (*models.RequesterSummary, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	requester, err := s.loadRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	if !authz.Allowed(authz.ActionViewRequester, principal, authz.Target{Requester: &requester.Requester}) {
		return nil, ErrForbidden
	}
	return requester, nil
}

// GenerateInviteLink rotates the acting requester's invite token and
// returns a fresh single-use link. Any previously issued link goes stale.
func (s *RelationService) GenerateInviteLink(ctx context.Context, userID uuid.UUID) (string, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return "", err
	}
	if principal.Requester == nil {
		return "", ErrForbidden
	}

	token, err := s.rotateToken(ctx, s.db, principal.Requester.ID)
	if err != nil {
		return "", err
	}

	return s.inviteURL(principal.Requester.ID, token), nil
}

// AcceptInvite resolves the requester by (id, token) pair, idempotently
// adds the acting shopper to its set and rotates the token so the link
// cannot be replayed.
func (s *RelationService) AcceptInvite(ctx context.Context, userID, requesterID uuid.UUID, token string) (*models.RequesterSummary, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if principal.Shopper == nil {
		return nil, ErrForbidden
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin invite accept transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	requester := &models.RequesterSummary{}
	err = tx.QueryRow(ctx,
		`SELECT r.id, r.user_id, r.account_id, r.created_at, u.display_name
		 FROM requesters r
		 JOIN users u ON r.user_id = u.id
		 WHERE r.id = $1 AND r.invite_token_hash = $2
		 FOR UPDATE OF r`,
		requesterID, hashInviteToken(token),
	).Scan(&requester.ID, &requester.UserID, &requester.AccountID, &requester.CreatedAt, &requester.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving invite: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO requester_shoppers (requester_id, shopper_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		requesterID, principal.Shopper.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("adding shopper: %w", err)
	}

	if _, err := s.rotateToken(ctx, tx, requesterID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit invite accept: %w", err)
	}
	committed = true

	return requester, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (Result, error)
}

func (s *RelationService) rotateToken(ctx context.Context, db execer, requesterID uuid.UUID) (string, error) {
	token, err := generateInviteToken()
	if err != nil {
		return "", err
	}

	result, err := db.Exec(ctx,
		`UPDATE requesters SET invite_token_hash = $1 WHERE id = $2`,
		hashInviteToken(token), requesterID,
	)
	if err != nil {
		return "", fmt.Errorf("rotating invite token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return "", ErrRequesterNotFound
	}
	return token, nil
}

func (s *RelationService) inviteURL(requesterID uuid.UUID, token string) string {
	return fmt.Sprintf("%s/add-shopper/%s/%s", s.baseURL, requesterID, token)
}

func (s *RelationService) loadShopper(ctx context.Context, shopperID uuid.UUID) (*models.ShopperSummary, error) {
	shopper := &models.ShopperSummary{}
	err := s.db.QueryRow(ctx,
		`SELECT sh.id, sh.user_id, sh.account_id, sh.created_at, u.display_name
		 FROM shoppers sh
		 JOIN users u ON sh.user_id = u.id
		 WHERE sh.id = $1`,
		shopperID,
	).Scan(&shopper.ID, &shopper.UserID, &shopper.AccountID, &shopper.CreatedAt, &shopper.DisplayName)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrShopperNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading shopper: %w", err)
	}
	return shopper, nil
}

func (s *RelationService) loadRequester(ctx context.Context, requesterID uuid.UUID) (*models.RequesterSummary, error) {
	requester := &models.RequesterSummary{}
	err := s.db.QueryRow(ctx,
		`SELECT r.id, r.user_id, r.account_id, r.created_at, u.display_name
		 FROM requesters r
		 JOIN users u ON r.user_id = u.id
		 WHERE r.id = $1`,
		requesterID,
	).Scan(&requester.ID, &requester.UserID, &requester.AccountID, &requester.CreatedAt, &requester.DisplayName)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequesterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading requester: %w", err)
	}
	return requester, nil
}

func generateInviteToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate invite token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func hashInviteToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
