package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Priority is the closed Low/Medium/High enumeration. Listings default to
// priority descending.
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityMedium Priority = 1
	PriorityHigh   Priority = 2
)

var ErrInvalidPriority = errors.New("invalid priority")

func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Item is a shared catalog entry, created on demand by name.
type Item struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RequestedItem belongs to exactly one requester and is optionally
// assigned to one shopper. ShopperID is nil until the item is claimed;
// ClaimedAt records when the assignment happened.
type RequestedItem struct {
	ID          uuid.UUID  `json:"id"`
	RequesterID uuid.UUID  `json:"requester_id"`
	ShopperID   *uuid.UUID `json:"shopper_id,omitempty"`
	ItemID      uuid.UUID  `json:"item_id"`
	ItemName    string     `json:"item_name"`
	Quantity    int        `json:"quantity"`
	Priority    Priority   `json:"priority"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Claimed reports whether a shopper has been assigned.
func (ri *RequestedItem) Claimed() bool {
	return ri.ShopperID != nil
}

type CreateRequestedItemParams struct {
	ItemName string
	Quantity int
	Priority Priority
}

type UpdateRequestedItemParams struct {
	Quantity  *int
	Priority  *Priority
	ShopperID *uuid.UUID
}
