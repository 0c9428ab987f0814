package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/colmward/hamper/internal/authz"
	"github.com/colmward/hamper/internal/models"
)

var (
	ErrRequestedItemNotFound = errors.New("requested item not found")
	ErrAlreadyClaimed        = errors.New("requested item already claimed")
	ErrItemNameRequired      = errors.New("item name is required")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrShopperNotAuthorized  = errors.New("shopper is not authorized for this requester")
)

const requestedItemColumns = `ri.id, ri.requester_id, ri.shopper_id, ri.item_id, i.name,
	 ri.quantity, ri.priority, ri.claimed_at, ri.created_at, ri.updated_at`

type RequestedItemService struct {
	db DB
}

func NewRequestedItemService(db DB) *RequestedItemService {
	return &RequestedItemService{db: db}
}

// List returns the acting requester's items, highest priority first.
func (s *RequestedItemService) List(ctx context.Context, userID uuid.UUID) ([]models.RequestedItem, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(authz.ActionListRequestedItems, principal, authz.Target{}) {
		return nil, ErrForbidden
	}

	return s.itemsForRequester(ctx, principal.Requester.ID)
}

// ListForRequester returns a requester's items to one of its authorized
// shoppers, highest priority first.
func (s *RequestedItemService) ListForRequester(ctx context.Context, userID, requesterID uuid.UUID) ([]models.RequestedItem, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	requester, err := s.getRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	if !authz.Allowed(authz.ActionViewRequesterItems, principal, authz.Target{Requester: requester}) {
		return nil, ErrForbidden
	}

	return s.itemsForRequester(ctx, requesterID)
}

func (s *RequestedItemService) itemsForRequester(ctx context.Context, requesterID uuid.UUID) ([]models.RequestedItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+requestedItemColumns+`
		 FROM requested_items ri
		 JOIN items i ON ri.item_id = i.id
		 WHERE ri.requester_id = $1
		 ORDER BY ri.priority DESC, ri.created_at`,
		requesterID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing requested items: %w", err)
	}
	defer rows.Close()

	items := []models.RequestedItem{}
	for rows.Next() {
		var ri models.RequestedItem
		if err := scanRequestedItem(rows, &ri); err != nil {
			return nil, fmt.Errorf("scanning requested item: %w", err)
		}
		items = append(items, ri)
	}
	return items, rows.Err()
}

// Create validates the request, resolves the catalog item by name
// (creating it on first use) and inserts the requested item.
func (s *RequestedItemService) Create(ctx context.Context, userID uuid.UUID, params models.CreateRequestedItemParams) (*models.RequestedItem, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(authz.ActionCreateRequestedItem, principal, authz.Target{}) {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(params.ItemName)
	if name == "" {
		return nil, ErrItemNameRequired
	}
	if params.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if !params.Priority.Valid() {
		return nil, models.ErrInvalidPriority
	}

	var itemID uuid.UUID
	err = s.db.QueryRow(ctx,
		`INSERT INTO items (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		name,
	).Scan(&itemID)
	if err != nil {
		return nil, fmt.Errorf("resolving catalog item: %w", err)
	}

	ri := &models.RequestedItem{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO requested_items (requester_id, item_id, quantity, priority)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, requester_id, shopper_id, item_id, quantity, priority, claimed_at, created_at, updated_at`,
		principal.Requester.ID, itemID, params.Quantity, params.Priority,
	).Scan(&ri.ID, &ri.RequesterID, &ri.ShopperID, &ri.ItemID, &ri.Quantity, &ri.Priority, &ri.ClaimedAt, &ri.CreatedAt, &ri.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating requested item: %w", err)
	}
	ri.ItemName = name

	return ri, nil
}

// Get returns one of the acting requester's items. Items owned by anyone
// else are reported as missing, never as forbidden.
func (s *RequestedItemService) Get(ctx context.Context, userID, itemID uuid.UUID) (*models.RequestedItem, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	ri, target, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if !authz.Allowed(authz.ActionViewRequestedItem, principal, target) {
		return nil, ErrRequestedItemNotFound
	}
	return ri, nil
}

// Update mutates quantity, priority or the assigned shopper. Owner only.
// Assigning a shopper requires it to be in the requester's shopper set and
// stamps the claim timestamp.
func (s *RequestedItemService) Update(ctx context.Context, userID, itemID uuid.UUID, params models.UpdateRequestedItemParams) (*models.RequestedItem, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	ri, target, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if !authz.Allowed(authz.ActionUpdateRequestedItem, principal, target) {
		return nil, ErrForbidden
	}

	quantity := ri.Quantity
	if params.Quantity != nil {
		if *params.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		quantity = *params.Quantity
	}

	priority := ri.Priority
	if params.Priority != nil {
		if !params.Priority.Valid() {
			return nil, models.ErrInvalidPriority
		}
		priority = *params.Priority
	}

	shopperID := ri.ShopperID
	assigning := false
	if params.ShopperID != nil {
		if !containsUUID(principal.ShopperIDs, *params.ShopperID) {
			return nil, ErrShopperNotAuthorized
		}
		shopperID = params.ShopperID
		assigning = ri.ShopperID == nil || *ri.ShopperID != *params.ShopperID
	}

	updated := &models.RequestedItem{}
	err = s.db.QueryRow(ctx,
		`UPDATE requested_items
		 SET quantity = $1,
		     priority = $2,
		     shopper_id = $3,
		     claimed_at = CASE WHEN $4 THEN NOW() ELSE claimed_at END,
		     updated_at = NOW()
		 WHERE id = $5
		 RETURNING id, requester_id, shopper_id, item_id, quantity, priority, claimed_at, created_at, updated_at`,
		quantity, priority, shopperID, assigning, itemID,
	).Scan(&updated.ID, &updated.RequesterID, &updated.ShopperID, &updated.ItemID, &updated.Quantity, &updated.Priority, &updated.ClaimedAt, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updating requested item: %w", err)
	}
	updated.ItemName = ri.ItemName

	return updated, nil
}

// Delete removes one of the acting requester's items.
func (s *RequestedItemService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return err
	}

	_, target, err := s.loadItem(ctx, itemID)
	if err != nil {
		return err
	}

	if !authz.Allowed(authz.ActionDeleteRequestedItem, principal, target) {
		return ErrForbidden
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM requested_items WHERE id = $1`, itemID); err != nil {
		return fmt.Errorf("deleting requested item: %w", err)
	}
	return nil
}

// Claim assigns the acting shopper to an unclaimed item and stamps the
// claim time. A second claim on the same item is a conflict rather than a
// silent reassignment.
func (s *RequestedItemService) Claim(ctx context.Context, userID, itemID uuid.UUID) (*models.RequestedItem, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	_, target, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if !authz.Allowed(authz.ActionClaimRequestedItem, principal, target) {
		return nil, ErrForbidden
	}

	result, err := s.db.Exec(ctx,
		`UPDATE requested_items
		 SET shopper_id = $1, claimed_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND shopper_id IS NULL`,
		principal.Shopper.ID, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("claiming requested item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrAlreadyClaimed
	}

	claimed, _, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// loadItem fetches the item plus the user identities behind its requester
// and assigned shopper, ready for predicate evaluation.
func (s *RequestedItemService) loadItem(ctx context.Context, itemID uuid.UUID) (*models.RequestedItem, authz.Target, error) {
	ri := &models.RequestedItem{}
	var ownerUserID uuid.UUID
	var shopperUserID *uuid.UUID

	err := s.db.QueryRow(ctx,
		`SELECT `+requestedItemColumns+`, r.user_id, s.user_id
		 FROM requested_items ri
		 JOIN items i ON ri.item_id = i.id
		 JOIN requesters r ON ri.requester_id = r.id
		 LEFT JOIN shoppers s ON ri.shopper_id = s.id
		 WHERE ri.id = $1`,
		itemID,
	).Scan(&ri.ID, &ri.RequesterID, &ri.ShopperID, &ri.ItemID, &ri.ItemName,
		&ri.Quantity, &ri.Priority, &ri.ClaimedAt, &ri.CreatedAt, &ri.UpdatedAt,
		&ownerUserID, &shopperUserID)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, authz.Target{}, ErrRequestedItemNotFound
	}
	if err != nil {
		return nil, authz.Target{}, fmt.Errorf("loading requested item: %w", err)
	}

	target := authz.Target{
		RequestedItem:     ri,
		ItemOwnerUserID:   ownerUserID,
		ItemShopperUserID: shopperUserID,
	}
	return ri, target, nil
}

func (s *RequestedItemService) getRequester(ctx context.Context, requesterID uuid.UUID) (*models.Requester, error) {
	requester := &models.Requester{}
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, account_id, created_at FROM requesters WHERE id = $1`,
		requesterID,
	).Scan(&requester.ID, &requester.UserID, &requester.AccountID, &requester.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequesterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading requester: %w", err)
	}
	return requester, nil
}

func scanRequestedItem(rows Rows, ri *models.RequestedItem) error {
	return rows.Scan(&ri.ID, &ri.RequesterID, &ri.ShopperID, &ri.ItemID, &ri.ItemName,
		&ri.Quantity, &ri.Priority, &ri.ClaimedAt, &ri.CreatedAt, &ri.UpdatedAt)
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
