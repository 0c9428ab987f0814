package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/colmward/hamper/internal/models"
)

// itemFixture is the stored item behind loadItem queries.
type itemFixture struct {
	id            uuid.UUID
	requesterID   uuid.UUID
	ownerUserID   uuid.UUID
	shopperID     *uuid.UUID
	shopperUserID *uuid.UUID
	itemID        uuid.UUID
	name          string
	quantity      int
	priority      models.Priority
	claimedAt     *time.Time
	now           time.Time
}

func (it *itemFixture) row() Row {
	return rowOf(it.id, it.requesterID, it.shopperID, it.itemID, it.name,
		it.quantity, it.priority, it.claimedAt, it.now, it.now,
		it.ownerUserID, it.shopperUserID)
}

func itemServiceFor(t *testing.T, fx *fixture, it *itemFixture, extra *fakeDB) *RequestedItemService {
	t.Helper()
	db := &fakeDB{
		queryRow: func(sql string, args []any) Row {
			if row, ok := fx.principalRow(sql); ok {
				return row
			}
			if it != nil && strings.Contains(sql, "FROM requested_items ri") {
				return it.row()
			}
			if extra != nil && extra.queryRow != nil {
				return extra.queryRow(sql, args)
			}
			t.Fatalf("unexpected query: %s", sql)
			return nil
		},
		query: func(sql string, args []any) (Rows, error) {
			if rows, ok := fx.principalRows(sql); ok {
				return rows, nil
			}
			if extra != nil && extra.query != nil {
				return extra.query(sql, args)
			}
			t.Fatalf("unexpected query: %s", sql)
			return nil, nil
		},
		exec: func(sql string, args []any) (Result, error) {
			if extra != nil && extra.exec != nil {
				return extra.exec(sql, args)
			}
			t.Fatalf("unexpected exec: %s", sql)
			return nil, nil
		},
	}
	return NewRequestedItemService(db)
}

func TestListRequiresRequesterProfile(t *testing.T) {
	fx := newFixture()
	fx.hasShopper = true

	svc := itemServiceFor(t, fx, nil, nil)
	_, err := svc.List(context.Background(), fx.userID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestListOrdersByPriority(t *testing.T) {
	fx := newFixture()
	fx.hasRequester = true
	now := time.Now()

	var listSQL string
	extra := &fakeDB{
		query: func(sql string, args []any) (Rows, error) {
			listSQL = sql
			return rowsOf(
				[]any{uuid.New(), fx.requesterID, nil, uuid.New(), "milk", 2, models.PriorityHigh, nil, now, now},
				[]any{uuid.New(), fx.requesterID, nil, uuid.New(), "bread", 1, models.PriorityLow, nil, now, now},
			), nil
		},
	}

	svc := itemServiceFor(t, fx, nil, extra)
	items, err := svc.List(context.Background(), fx.userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if !strings.Contains(listSQL, "ORDER BY ri.priority DESC") {
		t.Errorf("expected priority ordering, got %q", listSQL)
	}
	if items[0].ItemName != "milk" || items[0].Priority != models.PriorityHigh {
		t.Errorf("unexpected first item: %+v", items[0])
	}
}

func TestCreateValidation(t *testing.T) {
	fx := newFixture()
	fx.hasRequester = true
	svc := itemServiceFor(t, fx, nil, nil)

	cases := []struct {
		name    string
		params  models.CreateRequestedItemParams
		wantErr error
	}{
		{"empty name", models.CreateRequestedItemParams{ItemName: "   ", Quantity: 1}, ErrItemNameRequired},
		{"zero quantity", models.CreateRequestedItemParams{ItemName: "milk", Quantity: 0}, ErrInvalidQuantity},
		{"bad priority", models.CreateRequestedItemParams{ItemName: "milk", Quantity: 1, Priority: 9}, models.ErrInvalidPriority},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), fx.userID, tc.params)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateResolvesCatalogItemByName(t *testing.T) {
	fx := newFixture()
	fx.hasRequester = true
	itemID := uuid.New()
	now := time.Now()

	var catalogSQL string
	extra := &fakeDB{
		queryRow: func(sql string, args []any) Row {
			switch {
			case strings.Contains(sql, "INSERT INTO items"):
				catalogSQL = sql
				return rowOf(itemID)
			case strings.Contains(sql, "INSERT INTO requested_items"):
				return rowOf(uuid.New(), fx.requesterID, nil, itemID, 3, models.PriorityMedium, nil, now, now)
			}
			t.Fatalf("unexpected query: %s", sql)
			return nil
		},
	}

	svc := itemServiceFor(t, fx, nil, extra)
	ri, err := svc.Create(context.Background(), fx.userID, models.CreateRequestedItemParams{
		ItemName: "  milk  ",
		Quantity: 3,
		Priority: models.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(catalogSQL, "ON CONFLICT (name)") {
		t.Errorf("expected upsert on catalog name, got %q", catalogSQL)
	}
	if ri.ItemName != "milk" {
		t.Errorf("expected trimmed item name, got %q", ri.ItemName)
	}
}

func TestGetSomeoneElsesItemReportsNotFound(t *testing.T) {
	fx := newFixture()
	fx.hasRequester = true

	it := &itemFixture{
		id:          uuid.New(),
		requesterID: uuid.New(), // a different requester
		ownerUserID: uuid.New(),
		itemID:      uuid.New(),
		name:        "milk",
		quantity:    1,
		now:         time.Now(),
	}

	svc := itemServiceFor(t, fx, it, nil)
	_, err := svc.Get(context.Background(), fx.userID, it.id)
	if !errors.Is(err, ErrRequestedItemNotFound) {
		t.Fatalf("expected ErrRequestedItemNotFound, got %v", err)
	}
}

func TestGetUnknownItemReportsNotFound(t *testing.T) {
	fx := newFixture()
	fx.hasRequester = true

	extra := &fakeDB{
		queryRow: func(sql string, args []any) Row { return noRow() },
	}

	svc := itemServiceFor(t, fx, nil, extra)
	_, err := svc.Get(context.Background(), fx.userID, uuid.New())
	if !errors.Is(err, ErrRequestedItemNotFound) {
		t.Fatalf("expected ErrRequestedItemNotFound, got %v", err)
	}
}

func TestUpdateByNonOwnerIsForbidden(t *testing.T) {
	fx := newFixture()
	fx.hasRequester = true

	it := &itemFixture{
		id:          uuid.New(),
		requesterID: uuid.New(),
		ownerUserID: uuid.New(),
		itemID:      uuid.New(),
		name:        "milk",
		quantity:    1,
		now:         time.Now(),
	}

	svc := itemServiceFor(t, fx, it, nil)
	quantity := 5
	_, err := svc.Update(context.Background(), fx.userID, it.id, models.UpdateRequestedItemParams{Quantity: &quantity})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdateRejectsUnauthorizedShopperAssignment(t *testing.T) {
	fx := newFixture()
	fx.hasRequester = true

	it := &itemFixture{
		id:          uuid.New(),
		requesterID: fx.requesterID,
		ownerUserID: fx.userID,
		itemID:      uuid.New(),
		name:        "milk",
		quantity:    1,
		now:         time.Now(),
	}

	svc := itemServiceFor(t, fx, it, nil)
	stranger := uuid.New()
	_, err := svc.Update(context.Background(), fx.userID, it.id, models.UpdateRequestedItemParams{ShopperID: &stranger})
	if !errors.Is(err, ErrShopperNotAuthorized) {
		t.Fatalf("expected ErrShopperNotAuthorized, got %v", err)
	}
}

func TestUpdateAssignsAuthorizedShopper(t *testing.T) {
	fx := newFixture()
	fx.hasRequester = true
	assignee := uuid.New()
	fx.shopperIDs = []uuid.UUID{assignee}
	now := time.Now()

	it := &itemFixture{
		id:          uuid.New(),
		requesterID: fx.requesterID,
		ownerUserID: fx.userID,
		itemID:      uuid.New(),
		name:        "milk",
		quantity:    1,
		now:         now,
	}

	var assigning bool
	extra := &fakeDB{
		queryRow: func(sql string, args []any) Row {
			if strings.Contains(sql, "UPDATE requested_items") {
				assigning, _ = args[3].(bool)
				return rowOf(it.id, it.requesterID, &assignee, it.itemID, 1, models.PriorityLow, &now, now, now)
			}
			t.Fatalf("unexpected query: %s", sql)
			return nil
		},
	}

	svc := itemServiceFor(t, fx, it, extra)
	updated, err := svc.Update(context.Background(), fx.userID, it.id, models.UpdateRequestedItemParams{ShopperID: &assignee})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !assigning {
		t.Error("expected assignment to stamp the claim time")
	}
	if updated.ShopperID == nil || *updated.ShopperID != assignee {
		t.Errorf("expected shopper %s, got %v", assignee, updated.ShopperID)
	}
}

func TestDeleteByOwner(t *testing.T) {
	fx := newFixture()
	fx.hasRequester = true

	it := &itemFixture{
		id:          uuid.New(),
		requesterID: fx.requesterID,
		ownerUserID: fx.userID,
		itemID:      uuid.New(),
		name:        "milk",
		quantity:    1,
		now:         time.Now(),
	}

	var deleteSQL string
	extra := &fakeDB{
		exec: func(sql string, args []any) (Result, error) {
			deleteSQL = sql
			return fakeResult(1), nil
		},
	}

	svc := itemServiceFor(t, fx, it, extra)
	if err := svc.Delete(context.Background(), fx.userID, it.id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(deleteSQL, "DELETE FROM requested_items") {
		t.Errorf("expected delete statement, got %q", deleteSQL)
	}
}

func TestClaimByAuthorizedShopper(t *testing.T) {
	fx := newFixture()
	fx.hasShopper = true
	requesterID := uuid.New()
	fx.requesterIDs = []uuid.UUID{requesterID}
	now := time.Now()

	it := &itemFixture{
		id:          uuid.New(),
		requesterID: requesterID,
		ownerUserID: uuid.New(),
		itemID:      uuid.New(),
		name:        "milk",
		quantity:    1,
		now:         now,
	}

	claimed := false
	extra := &fakeDB{
		exec: func(sql string, args []any) (Result, error) {
			if !strings.Contains(sql, "shopper_id IS NULL") {
				t.Errorf("claim must guard against existing claims, got %q", sql)
			}
			claimed = true
			it.shopperID = &fx.shopperID
			it.shopperUserID = &fx.userID
			it.claimedAt = &now
			return fakeResult(1), nil
		},
	}

	svc := itemServiceFor(t, fx, it, extra)
	ri, err := svc.Claim(context.Background(), fx.userID, it.id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claimed {
		t.Fatal("expected claim update to run")
	}
	if !ri.Claimed() {
		t.Errorf("expected item to be claimed, got %+v", ri)
	}
}

func TestClaimByUnrelatedShopperIsForbidden(t *testing.T) {
	fx := newFixture()
	fx.hasShopper = true

	it := &itemFixture{
		id:          uuid.New(),
		requesterID: uuid.New(),
		ownerUserID: uuid.New(),
		itemID:      uuid.New(),
		name:        "milk",
		quantity:    1,
		now:         time.Now(),
	}

	svc := itemServiceFor(t, fx, it, nil)
	_, err := svc.Claim(context.Background(), fx.userID, it.id)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestClaimTakenItemConflicts(t *testing.T) {
	fx := newFixture()
	fx.hasShopper = true
	requesterID := uuid.New()
	fx.requesterIDs = []uuid.UUID{requesterID}
	otherShopper := uuid.New()
	otherUser := uuid.New()
	now := time.Now()

	it := &itemFixture{
		id:            uuid.New(),
		requesterID:   requesterID,
		ownerUserID:   uuid.New(),
		shopperID:     &otherShopper,
		shopperUserID: &otherUser,
		itemID:        uuid.New(),
		name:          "milk",
		quantity:      1,
		claimedAt:     &now,
		now:           now,
	}

	extra := &fakeDB{
		exec: func(sql string, args []any) (Result, error) {
			return fakeResult(0), nil
		},
	}

	svc := itemServiceFor(t, fx, it, extra)
	_, err := svc.Claim(context.Background(), fx.userID, it.id)
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
}
