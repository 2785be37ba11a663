package kanban

import (
	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/shared"
)

// MaxCommentLength limits comment bodies (16KB)
const MaxCommentLength = 16 * 1024

// Comment is a note attached to a card by an agent or human
type Comment struct {
	shared.TenantAggregateRoot
	CardID uuid.UUID `gorm:"type:uuid;not null;index"`
	Author string    `gorm:"type:varchar(128);not null"`
	Body   string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (Comment) TableName() string {
	return "comments"
}

// NewComment creates a comment on a card
func NewComment(tenantID, cardID uuid.UUID, author, body string) (*Comment, error) {
	if author == "" {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Comment author cannot be empty")
	}
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Comment body cannot be empty")
	}
	if len(body) > MaxCommentLength {
		return nil, shared.NewDomainError("INVALID_BODY", "Comment body cannot exceed 16KB")
	}
	comment := &Comment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CardID:              cardID,
		Author:              author,
		Body:                body,
	}
	comment.AddDomainEvent(&CommentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCommentAdded, "Comment", comment.ID, tenantID),
		CardID:          cardID,
	})
	return comment, nil
}

// Edit replaces the comment body
func (c *Comment) Edit(body string) error {
	if body == "" {
		return shared.NewDomainError("INVALID_BODY", "Comment body cannot be empty")
	}
	if len(body) > MaxCommentLength {
		return shared.NewDomainError("INVALID_BODY", "Comment body cannot exceed 16KB")
	}
	c.Body = body
	c.Touch()
	c.IncrementVersion()
	return nil
}

// Delete soft-deletes the comment
func (c *Comment) Delete() error {
	if c.IsDeleted() {
		return shared.ErrNotFound
	}
	c.SoftDelete()
	c.AddDomainEvent(&CommentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCommentDeleted, "Comment", c.ID, c.TenantID),
		CardID:          c.CardID,
	})
	return nil
}

// CommentEvent is the event shape for comment lifecycle changes
type CommentEvent struct {
	shared.BaseDomainEvent
	CardID uuid.UUID `json:"card_id"`
}
