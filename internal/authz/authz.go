// Package authz decides whether an acting user may perform an action on a
// resolved resource. Every rule is a pure predicate over the principal and
// the target; an action is permitted only when all of its predicates hold.
package authz

import (
	"github.com/google/uuid"

	"github.com/colmward/hamper/internal/models"
)

// Principal is the acting user with both profiles (if held) and the
// relation sets already resolved. Predicates never touch storage.
type Principal struct {
	UserID    uuid.UUID
	Requester *models.Requester
	Shopper   *models.Shopper

	// ShopperIDs are the shoppers authorized by the principal's requester
	// profile. RequesterIDs are the requesters that authorized the
	// principal's shopper profile.
	ShopperIDs   []uuid.UUID
	RequesterIDs []uuid.UUID
}

// Target carries the resolved resources an action operates on. Only the
// fields relevant to the action need to be set. ItemOwnerUserID and
// ItemShopperUserID identify the users behind the requested item's
// requester and assigned shopper.
type Target struct {
	RequestedItem     *models.RequestedItem
	ItemOwnerUserID   uuid.UUID
	ItemShopperUserID *uuid.UUID
	Requester         *models.Requester
	Shopper           *models.Shopper
	Comment           *models.Comment
}

// Predicate is a side-effect-free permission check.
type Predicate func(p Principal, t Target) bool

// UserIsRequester holds when the acting user has a requester profile.
func UserIsRequester(p Principal, _ Target) bool {
	return p.Requester != nil
}

// UserIsShopper holds when the acting user has a shopper profile.
func UserIsShopper(p Principal, _ Target) bool {
	return p.Shopper != nil
}

// RequesterOwnsRequestedItem holds when the acting user's requester
// profile owns the target item.
func RequesterOwnsRequestedItem(p Principal, t Target) bool {
	return p.Requester != nil && t.RequestedItem != nil &&
		t.RequestedItem.RequesterID == p.Requester.ID
}

// UserIsAuthorizedShopper holds when the acting user's shopper profile is
// in the shopper set of the requester that owns the target item.
func UserIsAuthorizedShopper(p Principal, t Target) bool {
	return p.Shopper != nil && t.RequestedItem != nil &&
		containsID(p.RequesterIDs, t.RequestedItem.RequesterID)
}

// ShopperIsAuthorizedForRequester holds when the target shopper is in the
// acting requester's shopper set.
func ShopperIsAuthorizedForRequester(p Principal, t Target) bool {
	return p.Requester != nil && t.Shopper != nil &&
		containsID(p.ShopperIDs, t.Shopper.ID)
}

// RequesterIsAuthorizedForShopper holds when the target requester has
// authorized the acting shopper.
func RequesterIsAuthorizedForShopper(p Principal, t Target) bool {
	return p.Shopper != nil && t.Requester != nil &&
		containsID(p.RequesterIDs, t.Requester.ID)
}

// UserIsParticipantOnRequestedItem holds when the acting user is the item
// owner's user or the assigned shopper's user.
func UserIsParticipantOnRequestedItem(p Principal, t Target) bool {
	if t.RequestedItem == nil {
		return false
	}
	if t.ItemOwnerUserID == p.UserID {
		return true
	}
	return t.ItemShopperUserID != nil && *t.ItemShopperUserID == p.UserID
}

// CommentBelongsToUser holds when the acting user authored the comment.
func CommentBelongsToUser(p Principal, t Target) bool {
	return t.Comment != nil && t.Comment.AuthorUserID == p.UserID
}

// Action names a gated operation.
type Action int

const (
	ActionListRequestedItems Action = iota
	ActionCreateRequestedItem
	ActionViewRequestedItem
	ActionUpdateRequestedItem
	ActionDeleteRequestedItem
	ActionClaimRequestedItem
	ActionListShoppers
	ActionViewShopper
	ActionRemoveShopper
	ActionListRequesters
	ActionViewRequester
	ActionViewRequesterItems
	ActionListComments
	ActionCreateComment
	ActionDeleteComment
)

// rules maps each action to the predicates that must all hold. An action
// missing from the table is denied outright.
var rules = map[Action][]Predicate{
	ActionListRequestedItems:  {UserIsRequester},
	ActionCreateRequestedItem: {UserIsRequester},
	ActionViewRequestedItem:   {RequesterOwnsRequestedItem},
	ActionUpdateRequestedItem: {RequesterOwnsRequestedItem},
	ActionDeleteRequestedItem: {RequesterOwnsRequestedItem},
	ActionClaimRequestedItem:  {UserIsShopper, UserIsAuthorizedShopper},
	ActionListShoppers:        {UserIsRequester},
	ActionViewShopper:         {UserIsRequester, ShopperIsAuthorizedForRequester},
	ActionRemoveShopper:       {UserIsRequester, ShopperIsAuthorizedForRequester},
	ActionListRequesters:      {UserIsShopper},
	ActionViewRequester:       {UserIsShopper, RequesterIsAuthorizedForShopper},
	ActionViewRequesterItems:  {UserIsShopper, RequesterIsAuthorizedForShopper},
	ActionListComments:        {UserIsParticipantOnRequestedItem},
	ActionCreateComment:       {UserIsParticipantOnRequestedItem},
	ActionDeleteComment:       {CommentBelongsToUser},
}

// Allowed reports whether the action is permitted. Every predicate is
// evaluated; predicates are pure, so ordering cannot change the outcome.
func Allowed(action Action, p Principal, t Target) bool {
	preds, ok := rules[action]
	if !ok {
		return false
	}
	allowed := true
	for _, pred := range preds {
		if !pred(p, t) {
			allowed = false
		}
	}
	return allowed
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
