package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProfileType is the role chosen at signup. A user holds at most one
// Requester and at most one Shopper profile.
type ProfileType string

const (
	ProfileRequester ProfileType = "requester"
	ProfileShopper   ProfileType = "shopper"
)

var ErrInvalidProfileType = errors.New("invalid profile type")

// ParseProfileType validates a signup account-type choice. The empty
// string defaults to requester, matching the automatic provisioning path.
func ParseProfileType(s string) (ProfileType, error) {
	switch ProfileType(s) {
	case ProfileRequester, "":
		return ProfileRequester, nil
	case ProfileShopper:
		return ProfileShopper, nil
	default:
		return "", ErrInvalidProfileType
	}
}

// Account is the billing/grouping container created alongside each user.
type Account struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Requester owns requested items and maintains the set of shoppers it has
// authorized. The invite token is stored hashed; only the plaintext link
// handed out at generation time can satisfy the hash.
type Requester struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	AccountID uuid.UUID `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Shopper claims requested items for the requesters that authorized it.
type Shopper struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	AccountID uuid.UUID `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RequesterSummary is a requester as seen by one of its shoppers.
type RequesterSummary struct {
	Requester
	DisplayName string `json:"display_name"`
}

// ShopperSummary is a shopper as seen by the requester that authorized it.
type ShopperSummary struct {
	Shopper
	DisplayName string `json:"display_name"`
}
