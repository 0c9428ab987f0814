package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment belongs to one requested item. Listings are newest first.
type Comment struct {
	ID              uuid.UUID `json:"id"`
	RequestedItemID uuid.UUID `json:"requested_item_id"`
	AuthorUserID    uuid.UUID `json:"author_user_id"`
	AuthorName      string    `json:"author_name,omitempty"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
