package kanban

import (
	"context"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
)

// CommentService handles card comment operations
type CommentService struct {
	commentRepo    kanban.CommentRepository
	cardRepo       kanban.CardRepository
	eventPublisher shared.EventPublisher
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo kanban.CommentRepository, cardRepo kanban.CardRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		cardRepo:    cardRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CommentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CommentService) publishDomainEvents(ctx context.Context, comment *kanban.Comment) {
	if s.eventPublisher == nil {
		return
	}
	events := comment.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	comment.ClearDomainEvents()
}

// Create adds a comment to a card
func (s *CommentService) Create(ctx context.Context, tenantID, cardID uuid.UUID, req CreateCommentRequest) (*CommentResponse, error) {
	if _, err := s.cardRepo.FindByIDForTenant(ctx, tenantID, cardID); err != nil {
		return nil, err
	}

	comment, err := kanban.NewComment(tenantID, cardID, req.Author, req.Body)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, comment)
	return ToCommentResponse(comment), nil
}

// ListByCard returns a card's comments, paginated, oldest first
func (s *CommentService) ListByCard(ctx context.Context, tenantID, cardID uuid.UUID, filter shared.Filter) (*PaginatedResponse[*CommentResponse], error) {
	if _, err := s.cardRepo.FindByIDForTenant(ctx, tenantID, cardID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.ListByCard(ctx, tenantID, cardID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]*CommentResponse, len(comments))
	for i := range comments {
		items[i] = ToCommentResponse(&comments[i])
	}
	return NewPaginatedResponse(items, total, filter.Page, filter.PageSize), nil
}

// Update edits a comment's body
func (s *CommentService) Update(ctx context.Context, tenantID, commentID uuid.UUID, req UpdateCommentRequest) (*CommentResponse, error) {
	comment, err := s.commentRepo.FindByIDForTenant(ctx, tenantID, commentID)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(comment.Version, req.ExpectedVersion); err != nil {
		return nil, err
	}
	if err := comment.Edit(req.Body); err != nil {
		return nil, err
	}
	if err := s.commentRepo.SaveWithLock(ctx, comment); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, comment)
	return ToCommentResponse(comment), nil
}

// Delete soft-deletes a comment
func (s *CommentService) Delete(ctx context.Context, tenantID, commentID uuid.UUID, expectedVersion *int) error {
	comment, err := s.commentRepo.FindByIDForTenant(ctx, tenantID, commentID)
	if err != nil {
		return err
	}
	if err := checkVersion(comment.Version, expectedVersion); err != nil {
		return err
	}
	if err := comment.Delete(); err != nil {
		return err
	}
	if err := s.commentRepo.SaveWithLock(ctx, comment); err != nil {
		return err
	}

	s.publishDomainEvents(ctx, comment)
	return nil
}
