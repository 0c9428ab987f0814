package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/colmward/hamper/internal/authz"
	"github.com/colmward/hamper/internal/models"
)

// ErrForbidden is returned whenever an authorization predicate fails. It is
// deliberately uniform; callers learn nothing about which rule rejected.
var ErrForbidden = errors.New("forbidden")

// loadPrincipal resolves the acting user's profiles and relation sets so
// the authz predicates can run without touching storage.
func loadPrincipal(ctx context.Context, db DB, userID uuid.UUID) (authz.Principal, error) {
	p := authz.Principal{UserID: userID}

	var req models.Requester
	err := db.QueryRow(ctx,
		`SELECT id, user_id, account_id, created_at FROM requesters WHERE user_id = $1`,
		userID,
	).Scan(&req.ID, &req.UserID, &req.AccountID, &req.CreatedAt)
	switch {
	case err == nil:
		p.Requester = &req
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return p, fmt.Errorf("loading requester profile: %w", err)
	}

	var sh models.Shopper
	err = db.QueryRow(ctx,
		`SELECT id, user_id, account_id, created_at FROM shoppers WHERE user_id = $1`,
		userID,
	).Scan(&sh.ID, &sh.UserID, &sh.AccountID, &sh.CreatedAt)
	switch {
	case err == nil:
		p.Shopper = &sh
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return p, fmt.Errorf("loading shopper profile: %w", err)
	}

	if p.Requester != nil {
		ids, err := relationIDs(ctx, db,
			`SELECT shopper_id FROM requester_shoppers WHERE requester_id = $1`, p.Requester.ID)
		if err != nil {
			return p, fmt.Errorf("loading authorized shoppers: %w", err)
		}
		p.ShopperIDs = ids
	}

	if p.Shopper != nil {
		ids, err := relationIDs(ctx, db,
			`SELECT requester_id FROM requester_shoppers WHERE shopper_id = $1`, p.Shopper.ID)
		if err != nil {
			return p, fmt.Errorf("loading authorizing requesters: %w", err)
		}
		p.RequesterIDs = ids
	}

	return p, nil
}

func relationIDs(ctx context.Context, db DB, sql string, arg uuid.UUID) ([]uuid.UUID, error) {
	rows, err := db.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
