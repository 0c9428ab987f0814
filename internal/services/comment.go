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
	ErrCommentNotFound     = errors.New("comment not found")
	ErrCommentBodyRequired = errors.New("comment body is required")
)

type CommentService struct {
	db    DB
	items *RequestedItemService
}

func NewCommentService(db DB, items *RequestedItemService) *CommentService {
	return &CommentService{db: db, items: items}
}

// ListForItem returns an item's comments, newest first. Only participants
// on the item (its requester or assigned shopper) may read them.
func (s *CommentService) ListForItem(ctx context.Context, userID, requestedItemID uuid.UUID) ([]models.Comment, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	_, target, err := s.items.loadItem(ctx, requestedItemID)
	if err != nil {
		return nil, err
	}

	if !authz.Allowed(authz.ActionListComments, principal, target) {
		return nil, ErrForbidden
	}

	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.requested_item_id, c.author_user_id, u.display_name, c.body, c.created_at, c.updated_at
		 FROM comments c
		 JOIN users u ON c.author_user_id = u.id
		 WHERE c.requested_item_id = $1
		 ORDER BY c.created_at DESC`,
		requestedItemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.RequestedItemID, &c.AuthorUserID, &c.AuthorName, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Create adds a comment to an item the acting user participates on.
func (s *CommentService) Create(ctx context.Context, userID, requestedItemID uuid.UUID, body string) (*models.Comment, error) {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	_, target, err := s.items.loadItem(ctx, requestedItemID)
	if err != nil {
		return nil, err
	}

	if !authz.Allowed(authz.ActionCreateComment, principal, target) {
		return nil, ErrForbidden
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrCommentBodyRequired
	}

	comment := &models.Comment{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO comments (requested_item_id, author_user_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, requested_item_id, author_user_id, body, created_at, updated_at`,
		requestedItemID, userID, body,
	).Scan(&comment.ID, &comment.RequestedItemID, &comment.AuthorUserID, &comment.Body, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	return comment, nil
}

// Delete removes a comment. Author only; the item's requester has no say.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	principal, err := loadPrincipal(ctx, s.db, userID)
	if err != nil {
		return err
	}

	comment := &models.Comment{}
	err = s.db.QueryRow(ctx,
		`SELECT id, requested_item_id, author_user_id, body, created_at, updated_at
		 FROM comments WHERE id = $1`,
		commentID,
	).Scan(&comment.ID, &comment.RequestedItemID, &comment.AuthorUserID, &comment.Body, &comment.CreatedAt, &comment.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("loading comment: %w", err)
	}

	if !authz.Allowed(authz.ActionDeleteComment, principal, authz.Target{Comment: comment}) {
		return ErrForbidden
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return nil
}
