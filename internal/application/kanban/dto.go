package kanban

import (
	"time"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
)

// TargetRequest describes where an item should be placed relative to its siblings.
// Exactly one interpretation applies depending on Kind:
//   - "end", "start": Ref and Position are ignored
//   - "after", "before": Ref is the sibling the item is placed relative to
//   - "absolute": Position is the exact slot to occupy
type TargetRequest struct {
	Kind     string     `json:"kind" binding:"required,oneof=end start after before absolute"`
	Ref      *uuid.UUID `json:"ref,omitempty"`
	Position *int       `json:"position,omitempty"`
}

// ToDomain converts the request into a domain placement target.
func (t TargetRequest) ToDomain() (kanban.Target, error) {
	target := kanban.Target{Kind: kanban.TargetKind(t.Kind)}
	if t.Ref != nil {
		target.Ref = *t.Ref
	}
	if t.Position != nil {
		target.Position = *t.Position
	}
	if err := target.Validate(); err != nil {
		return kanban.Target{}, err
	}
	return target, nil
}

// CreateWorkspaceRequest represents a request to create a workspace
type CreateWorkspaceRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=128"`
	Description string `json:"description" binding:"max=2048"`
}

// UpdateWorkspaceRequest represents a request to update a workspace
type UpdateWorkspaceRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=128"`
	Description     string `json:"description" binding:"max=2048"`
	ExpectedVersion *int   `json:"expected_version"`
}

// WorkspaceResponse represents a workspace in API responses
type WorkspaceResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToWorkspaceResponse converts a workspace entity to a response DTO
func ToWorkspaceResponse(w *kanban.Workspace) *WorkspaceResponse {
	return &WorkspaceResponse{
		ID:          w.ID,
		TenantID:    w.TenantID,
		Name:        w.Name,
		Description: w.Description,
		Version:     w.Version,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

// CreateBoardRequest represents a request to create a board
type CreateBoardRequest struct {
	WorkspaceID uuid.UUID `json:"workspace_id" binding:"required"`
	Name        string    `json:"name" binding:"required,min=1,max=128"`
	Description string    `json:"description" binding:"max=2048"`
}

// UpdateBoardRequest represents a request to update a board
type UpdateBoardRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=128"`
	Description     string `json:"description" binding:"max=2048"`
	ExpectedVersion *int   `json:"expected_version"`
}

// BoardResponse represents a board in API responses
type BoardResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BoardDetailResponse represents a board with its ordered columns
type BoardDetailResponse struct {
	BoardResponse
	Columns []*ColumnResponse `json:"columns"`
}

// ToBoardResponse converts a board entity to a response DTO
func ToBoardResponse(b *kanban.Board) *BoardResponse {
	return &BoardResponse{
		ID:          b.ID,
		TenantID:    b.TenantID,
		WorkspaceID: b.WorkspaceID,
		Name:        b.Name,
		Description: b.Description,
		Version:     b.Version,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// CreateColumnRequest represents a request to create a column
type CreateColumnRequest struct {
	BoardID  uuid.UUID `json:"board_id" binding:"required"`
	Name     string    `json:"name" binding:"required,min=1,max=128"`
	WIPLimit *int      `json:"wip_limit" binding:"omitempty,min=1"`
}

// UpdateColumnRequest represents a request to update a column
type UpdateColumnRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=128"`
	WIPLimit        *int   `json:"wip_limit" binding:"omitempty,min=1"`
	ClearWIPLimit   bool   `json:"clear_wip_limit"`
	ExpectedVersion *int   `json:"expected_version"`
}

// ReorderColumnRequest represents a request to reposition a column within its board
type ReorderColumnRequest struct {
	Target          TargetRequest `json:"target" binding:"required"`
	Displace        bool          `json:"displace"`
	ExpectedVersion *int          `json:"expected_version"`
}

// ColumnResponse represents a column in API responses
type ColumnResponse struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	BoardID   uuid.UUID `json:"board_id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	WIPLimit  *int      `json:"wip_limit,omitempty"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToColumnResponse converts a column entity to a response DTO
func ToColumnResponse(c *kanban.Column) *ColumnResponse {
	return &ColumnResponse{
		ID:        c.ID,
		TenantID:  c.TenantID,
		BoardID:   c.BoardID,
		Name:      c.Name,
		Position:  c.Position,
		WIPLimit:  c.WIPLimit,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToColumnResponses converts a slice of column entities
func ToColumnResponses(cols []*kanban.Column) []*ColumnResponse {
	out := make([]*ColumnResponse, len(cols))
	for i, c := range cols {
		out[i] = ToColumnResponse(c)
	}
	return out
}

// CreateCardRequest represents a request to create a card
type CreateCardRequest struct {
	ColumnID    uuid.UUID      `json:"column_id" binding:"required"`
	Title       string         `json:"title" binding:"required,min=1,max=256"`
	Description string         `json:"description"`
	Priority    *int           `json:"priority" binding:"omitempty,min=0,max=4"`
	Labels      []string       `json:"labels"`
	Assignees   []string       `json:"assignees"`
	DueAt       *time.Time     `json:"due_at"`
	Target      *TargetRequest `json:"target"` // defaults to end of column
}

// UpdateCardRequest represents a request to update a card's content fields
type UpdateCardRequest struct {
	Title           *string    `json:"title" binding:"omitempty,min=1,max=256"`
	Description     *string    `json:"description"`
	Priority        *int       `json:"priority" binding:"omitempty,min=0,max=4"`
	Labels          []string   `json:"labels"`
	Assignees       []string   `json:"assignees"`
	DueAt           *time.Time `json:"due_at"`
	ClearDueAt      bool       `json:"clear_due_at"`
	ExpectedVersion *int       `json:"expected_version"`
}

// ReorderCardRequest represents a request to reposition a card within its column
type ReorderCardRequest struct {
	Target          TargetRequest `json:"target" binding:"required"`
	Displace        bool          `json:"displace"`
	ExpectedVersion *int          `json:"expected_version"`
}

// MoveCardRequest represents a request to move a card to another column
type MoveCardRequest struct {
	TargetColumnID  uuid.UUID     `json:"target_column_id" binding:"required"`
	Target          TargetRequest `json:"target" binding:"required"`
	Displace        bool          `json:"displace"`
	ExpectedVersion *int          `json:"expected_version"`
}

// CardListFilter represents filter options for card listing
type CardListFilter struct {
	Search    string     `form:"search"`
	ColumnID  *uuid.UUID `form:"column_id"`
	Priority  *int       `form:"priority" binding:"omitempty,min=0,max=4"`
	Label     string     `form:"label"`
	Assignee  string     `form:"assignee"`
	DueBefore *time.Time `form:"due_before"`
	Page      int        `form:"page" binding:"min=1"`
	PageSize  int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDomain converts the filter into a repository card filter
func (f CardListFilter) ToDomain() kanban.CardFilter {
	base := shared.DefaultFilter()
	if f.Page > 0 {
		base.Page = f.Page
	}
	if f.PageSize > 0 {
		base.PageSize = f.PageSize
	}
	base.Search = f.Search
	base.OrderBy = f.OrderBy
	base.OrderDir = f.OrderDir

	cf := kanban.CardFilter{
		Filter:    base,
		ColumnID:  f.ColumnID,
		Label:     f.Label,
		Assignee:  f.Assignee,
		DueBefore: f.DueBefore,
	}
	if f.Priority != nil {
		p := kanban.Priority(*f.Priority)
		cf.Priority = &p
	}
	return cf
}

// CardResponse represents a card in API responses
type CardResponse struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	BoardID     uuid.UUID  `json:"board_id"`
	ColumnID    uuid.UUID  `json:"column_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	Labels      []string   `json:"labels"`
	Assignees   []string   `json:"assignees"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Position    int        `json:"position"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToCardResponse converts a card entity to a response DTO
func ToCardResponse(c *kanban.Card) *CardResponse {
	return &CardResponse{
		ID:          c.ID,
		TenantID:    c.TenantID,
		BoardID:     c.BoardID,
		ColumnID:    c.ColumnID,
		Title:       c.Title,
		Description: c.Description,
		Priority:    int(c.Priority),
		Labels:      c.Labels,
		Assignees:   c.Assignees,
		DueAt:       c.DueAt,
		Position:    c.Position,
		Version:     c.Version,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCardResponses converts a slice of card entities
func ToCardResponses(cards []*kanban.Card) []*CardResponse {
	out := make([]*CardResponse, len(cards))
	for i, c := range cards {
		out[i] = ToCardResponse(c)
	}
	return out
}

// CreateCommentRequest represents a request to add a comment to a card
type CreateCommentRequest struct {
	Author string `json:"author" binding:"required,min=1,max=128"`
	Body   string `json:"body" binding:"required,min=1"`
}

// UpdateCommentRequest represents a request to edit a comment
type UpdateCommentRequest struct {
	Body            string `json:"body" binding:"required,min=1"`
	ExpectedVersion *int   `json:"expected_version"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	CardID    uuid.UUID `json:"card_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCommentResponse converts a comment entity to a response DTO
func ToCommentResponse(c *kanban.Comment) *CommentResponse {
	return &CommentResponse{
		ID:        c.ID,
		CardID:    c.CardID,
		Author:    c.Author,
		Body:      c.Body,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCommentResponses converts a slice of comment entities
func ToCommentResponses(comments []*kanban.Comment) []*CommentResponse {
	out := make([]*CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = ToCommentResponse(c)
	}
	return out
}

// PaginatedResponse is a generic paginated payload for list endpoints
type PaginatedResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginatedResponse builds a paginated payload from items and paging info
func NewPaginatedResponse[T any](items []T, total int64, page, pageSize int) *PaginatedResponse[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PaginatedResponse[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
