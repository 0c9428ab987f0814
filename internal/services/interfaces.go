package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/colmward/hamper/internal/models"
)

// UserServiceInterface defines the contract for user operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetProfiles(ctx context.Context, userID uuid.UUID) (*models.Requester, *models.Shopper, error)
}

// AuthServiceInterface defines the contract for authentication operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
}

// RequestedItemServiceInterface defines the contract for requested item
// operations used by handlers.
type RequestedItemServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.RequestedItem, error)
	ListForRequester(ctx context.Context, userID, requesterID uuid.UUID) ([]models.RequestedItem, error)
	Create(ctx context.Context, userID uuid.UUID, params models.CreateRequestedItemParams) (*models.RequestedItem, error)
	Get(ctx context.Context, userID, itemID uuid.UUID) (*models.RequestedItem, error)
	Update(ctx context.Context, userID, itemID uuid.UUID, params models.UpdateRequestedItemParams) (*models.RequestedItem, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	Claim(ctx context.Context, userID, itemID uuid.UUID) (*models.RequestedItem, error)
}

// RelationServiceInterface defines the contract for requester-shopper
// relationship and invite operations.
type RelationServiceInterface interface {
	ListShoppers(ctx context.Context, userID uuid.UUID) ([]models.ShopperSummary, error)
	GetShopper(ctx context.Context, userID, shopperID uuid.UUID) (*models.ShopperSummary, error)
	RemoveShopper(ctx context.Context, userID, shopperID uuid.UUID) error
	ListRequesters(ctx context.Context, userID uuid.UUID) ([]models.RequesterSummary, error)
	GetRequester(ctx context.Context, userID, requesterID uuid.UUID) (*models.RequesterSummary, error)
	GenerateInviteLink(ctx context.Context, userID uuid.UUID) (string, error)
	AcceptInvite(ctx context.Context, userID, requesterID uuid.UUID, token string) (*models.RequesterSummary, error)
}

// CommentServiceInterface defines the contract for comment operations.
type CommentServiceInterface interface {
	ListForItem(ctx context.Context, userID, requestedItemID uuid.UUID) ([]models.Comment, error)
	Create(ctx context.Context, userID, requestedItemID uuid.UUID, body string) (*models.Comment, error)
	Delete(ctx context.Context, userID, commentID uuid.UUID) error
}

// EmailServiceInterface defines the contract for email delivery.
type EmailServiceInterface interface {
	SendShopperInvite(ctx context.Context, to, requesterName, inviteURL string) error
}
