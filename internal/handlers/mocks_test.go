package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/colmward/hamper/internal/models"
)

var errNotStubbed = errors.New("not stubbed")

type mockUserService struct {
	CreateFunc      func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc  func(ctx context.Context, email string) (*models.User, error)
	GetProfilesFunc func(ctx context.Context, userID uuid.UUID) (*models.Requester, *models.Shopper, error)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc == nil {
		return nil, errNotStubbed
	}
	return m.CreateFunc(ctx, params)
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc == nil {
		return nil, errNotStubbed
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc == nil {
		return nil, errNotStubbed
	}
	return m.GetByEmailFunc(ctx, email)
}

func (m *mockUserService) GetProfiles(ctx context.Context, userID uuid.UUID) (*models.Requester, *models.Shopper, error) {
	if m.GetProfilesFunc == nil {
		return nil, nil, errNotStubbed
	}
	return m.GetProfilesFunc(ctx, userID)
}

type mockAuthService struct {
	HashPasswordFunc    func(password string) (string, error)
	VerifyPasswordFunc  func(hash, password string) bool
	CreateSessionFunc   func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc   func(ctx context.Context, token string) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc == nil {
		return "hashed:" + password, nil
	}
	return m.HashPasswordFunc(password)
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc == nil {
		return hash == "hashed:"+password
	}
	return m.VerifyPasswordFunc(hash, password)
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.CreateSessionFunc == nil {
		return "test-session-token", nil
	}
	return m.CreateSessionFunc(ctx, userID)
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if m.ValidateSessionFunc == nil {
		return nil, errNotStubbed
	}
	return m.ValidateSessionFunc(ctx, token)
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc == nil {
		return nil
	}
	return m.DeleteSessionFunc(ctx, token)
}

type mockRequestedItemService struct {
	ListFunc             func(ctx context.Context, userID uuid.UUID) ([]models.RequestedItem, error)
	ListForRequesterFunc func(ctx context.Context, userID, requesterID uuid.UUID) ([]models.RequestedItem, error)
	CreateFunc           func(ctx context.Context, userID uuid.UUID, params models.CreateRequestedItemParams) (*models.RequestedItem, error)
	GetFunc              func(ctx context.Context, userID, itemID uuid.UUID) (*models.RequestedItem, error)
	UpdateFunc           func(ctx context.Context, userID, itemID uuid.UUID, params models.UpdateRequestedItemParams) (*models.RequestedItem, error)
	DeleteFunc           func(ctx context.Context, userID, itemID uuid.UUID) error
	ClaimFunc            func(ctx context.Context, userID, itemID uuid.UUID) (*models.RequestedItem, error)
}

func (m *mockRequestedItemService) List(ctx context.Context, userID uuid.UUID) ([]models.RequestedItem, error) {
	if m.ListFunc == nil {
		return nil, errNotStubbed
	}
	return m.ListFunc(ctx, userID)
}

func (m *mockRequestedItemService) ListForRequester(ctx context.Context, userID, requesterID uuid.UUID) ([]models.RequestedItem, error) {
	if m.ListForRequesterFunc == nil {
		return nil, errNotStubbed
	}
	return m.ListForRequesterFunc(ctx, userID, requesterID)
}

func (m *mockRequestedItemService) Create(ctx context.Context, userID uuid.UUID, params models.CreateRequestedItemParams) (*models.RequestedItem, error) {
	if m.CreateFunc == nil {
		return nil, errNotStubbed
	}
	return m.CreateFunc(ctx, userID, params)
}

func (m *mockRequestedItemService) Get(ctx context.Context, userID, itemID uuid.UUID) (*models.RequestedItem, error) {
	if m.GetFunc == nil {
		return nil, errNotStubbed
	}
	return m.GetFunc(ctx, userID, itemID)
}

func (m *mockRequestedItemService) Update(ctx context.Context, userID, itemID uuid.UUID, params models.UpdateRequestedItemParams) (*models.RequestedItem, error) {
	if m.UpdateFunc == nil {
		return nil, errNotStubbed
	}
	return m.UpdateFunc(ctx, userID, itemID, params)
}

func (m *mockRequestedItemService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	if m.DeleteFunc == nil {
		return errNotStubbed
	}
	return m.DeleteFunc(ctx, userID, itemID)
}

func (m *mockRequestedItemService) Claim(ctx context.Context, userID, itemID uuid.UUID) (*models.RequestedItem, error) {
	if m.ClaimFunc == nil {
		return nil, errNotStubbed
	}
	return m.ClaimFunc(ctx, userID, itemID)
}

type mockRelationService struct {
	ListShoppersFunc       func(ctx context.Context, userID uuid.UUID) ([]models.ShopperSummary, error)
	GetShopperFunc         func(ctx context.Context, userID, shopperID uuid.UUID) (*models.ShopperSummary, error)
	RemoveShopperFunc      func(ctx context.Context, userID, shopperID uuid.UUID) error
	ListRequestersFunc     func(ctx context.Context, userID uuid.UUID) ([]models.RequesterSummary, error)
	GetRequesterFunc       func(ctx context.Context, userID, requesterID uuid.UUID) (*models.RequesterSummary, error)
	GenerateInviteLinkFunc func(ctx context.Context, userID uuid.UUID) (string, error)
	AcceptInviteFunc       func(ctx context.Context, userID, requesterID uuid.UUID, token string) (*models.RequesterSummary, error)
}

func (m *mockRelationService) ListShoppers(ctx context.Context, userID uuid.UUID) ([]models.ShopperSummary, error) {
	if m.ListShoppersFunc == nil {
		return nil, errNotStubbed
	}
	return m.ListShoppersFunc(ctx, userID)
}

func (m *mockRelationService) GetShopper(ctx context.Context, userID, shopperID uuid.UUID) (*models.ShopperSummary, error) {
	if m.GetShopperFunc == nil {
		return nil, errNotStubbed
	}
	return m.GetShopperFunc(ctx, userID, shopperID)
}

func (m *mockRelationService) RemoveShopper(ctx context.Context, userID, shopperID uuid.UUID) error {
	if m.RemoveShopperFunc == nil {
		return errNotStubbed
	}
	return m.RemoveShopperFunc(ctx, userID, shopperID)
}

func (m *mockRelationService) ListRequesters(ctx context.Context, userID uuid.UUID) ([]models.RequesterSummary, error) {
	if m.ListRequestersFunc == nil {
		return nil, errNotStubbed
	}
	return m.ListRequestersFunc(ctx, userID)
}

func (m *mockRelationService) GetRequester(ctx context.Context, userID, requesterID uuid.UUID) (*models.RequesterSummary, error) {
	if m.GetRequesterFunc == nil {
		return nil, errNotStubbed
	}
	return m.GetRequesterFunc(ctx, userID, requesterID)
}

func (m *mockRelationService) GenerateInviteLink(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateInviteLinkFunc == nil {
		return "", errNotStubbed
	}
	return m.GenerateInviteLinkFunc(ctx, userID)
}

func (m *mockRelationService) AcceptInvite(ctx context.Context, userID, requesterID uuid.UUID, token string) (*models.RequesterSummary, error) {
	if m.AcceptInviteFunc == nil {
		return nil, errNotStubbed
	}
	return m.AcceptInviteFunc(ctx, userID, requesterID, token)
}

type mockCommentService struct {
	ListForItemFunc func(ctx context.Context, userID, requestedItemID uuid.UUID) ([]models.Comment, error)
	CreateFunc      func(ctx context.Context, userID, requestedItemID uuid.UUID, body string) (*models.Comment, error)
	DeleteFunc      func(ctx context.Context, userID, commentID uuid.UUID) error
}

func (m *mockCommentService) ListForItem(ctx context.Context, userID, requestedItemID uuid.UUID) ([]models.Comment, error) {
	if m.ListForItemFunc == nil {
		return nil, errNotStubbed
	}
	return m.ListForItemFunc(ctx, userID, requestedItemID)
}

func (m *mockCommentService) Create(ctx context.Context, userID, requestedItemID uuid.UUID, body string) (*models.Comment, error) {
	if m.CreateFunc == nil {
		return nil, errNotStubbed
	}
	return m.CreateFunc(ctx, userID, requestedItemID, body)
}

func (m *mockCommentService) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	if m.DeleteFunc == nil {
		return errNotStubbed
	}
	return m.DeleteFunc(ctx, userID, commentID)
}

type mockEmailService struct {
	SendShopperInviteFunc func(ctx context.Context, to, requesterName, inviteURL string) error
}

func (m *mockEmailService) SendShopperInvite(ctx context.Context, to, requesterName, inviteURL string) error {
	if m.SendShopperInviteFunc == nil {
		return nil
	}
	return m.SendShopperInviteFunc(ctx, to, requesterName, inviteURL)
}
