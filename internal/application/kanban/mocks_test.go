package kanban

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]shared.DomainEvent, 0),
	}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEvents() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, len(m.events))
	copy(result, m.events)
	return result
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

func (m *MockEventPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make([]shared.DomainEvent, 0)
}

// contendedTxScope wraps a scope and reports a commit-time position
// collision for the first n executions, the way a deferred sibling
// constraint surfaces when another writer lands on the same slot first.
type contendedTxScope struct {
	inner      TransactionScope
	collisions int
	executions int
}

func (s *contendedTxScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.executions++
	err := s.inner.Execute(ctx, fn)
	if err == nil && s.executions <= s.collisions {
		return shared.ErrConcurrentPlacement
	}
	return err
}

// MockWorkspaceRepository is a mock implementation of WorkspaceRepository
type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Workspace, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kanban.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]kanban.Workspace, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]kanban.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWorkspaceRepository) Create(ctx context.Context, ws *kanban.Workspace) error {
	args := m.Called(ctx, ws)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) SaveWithLock(ctx context.Context, ws *kanban.Workspace) error {
	args := m.Called(ctx, ws)
	return args.Error(0)
}

// MockBoardRepository is a mock implementation of BoardRepository
type MockBoardRepository struct {
	mock.Mock
}

func (m *MockBoardRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Board, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kanban.Board), args.Error(1)
}

func (m *MockBoardRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]kanban.Board, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]kanban.Board), args.Error(1)
}

func (m *MockBoardRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBoardRepository) Create(ctx context.Context, board *kanban.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

func (m *MockBoardRepository) SaveWithLock(ctx context.Context, board *kanban.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

// MockColumnRepository is a mock implementation of ColumnRepository
type MockColumnRepository struct {
	mock.Mock
}

func (m *MockColumnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Column, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kanban.Column), args.Error(1)
}

func (m *MockColumnRepository) ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID) ([]kanban.Column, error) {
	args := m.Called(ctx, tenantID, boardID)
	return args.Get(0).([]kanban.Column), args.Error(1)
}

func (m *MockColumnRepository) Create(ctx context.Context, column *kanban.Column) error {
	args := m.Called(ctx, column)
	return args.Error(0)
}

func (m *MockColumnRepository) SaveWithLock(ctx context.Context, column *kanban.Column) error {
	args := m.Called(ctx, column)
	return args.Error(0)
}

func (m *MockColumnRepository) UpdatePositions(ctx context.Context, tenantID, boardID uuid.UUID, assignments []kanban.PositionAssignment) error {
	args := m.Called(ctx, tenantID, boardID, assignments)
	return args.Error(0)
}

// MockCardRepository is a mock implementation of CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Card, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kanban.Card), args.Error(1)
}

func (m *MockCardRepository) ListByColumn(ctx context.Context, tenantID, columnID uuid.UUID) ([]kanban.Card, error) {
	args := m.Called(ctx, tenantID, columnID)
	return args.Get(0).([]kanban.Card), args.Error(1)
}

func (m *MockCardRepository) ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID, filter kanban.CardFilter) ([]kanban.Card, int64, error) {
	args := m.Called(ctx, tenantID, boardID, filter)
	return args.Get(0).([]kanban.Card), args.Get(1).(int64), args.Error(2)
}

func (m *MockCardRepository) CountActiveByColumn(ctx context.Context, tenantID, columnID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, columnID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) Create(ctx context.Context, card *kanban.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) SaveWithLock(ctx context.Context, card *kanban.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) UpdatePositions(ctx context.Context, tenantID, columnID uuid.UUID, assignments []kanban.PositionAssignment) error {
	args := m.Called(ctx, tenantID, columnID, assignments)
	return args.Error(0)
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Comment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kanban.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByCard(ctx context.Context, tenantID, cardID uuid.UUID, filter shared.Filter) ([]kanban.Comment, int64, error) {
	args := m.Called(ctx, tenantID, cardID, filter)
	return args.Get(0).([]kanban.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *kanban.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) SaveWithLock(ctx context.Context, comment *kanban.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

// MockAttachmentRepository is a mock implementation of AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*kanban.Attachment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kanban.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) ListByCard(ctx context.Context, tenantID, cardID uuid.UUID) ([]kanban.Attachment, error) {
	args := m.Called(ctx, tenantID, cardID)
	return args.Get(0).([]kanban.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *kanban.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockAttachmentRepository) SaveWithLock(ctx context.Context, attachment *kanban.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, record *kanban.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]kanban.AuditRecord, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]kanban.AuditRecord), args.Get(1).(int64), args.Error(2)
}

// MockObjectStorage is a mock implementation of ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Get(0).(bool), args.Error(1)
}

// MockBoardCache is a mock implementation of BoardCache
type MockBoardCache struct {
	mu          sync.Mutex
	boards      map[uuid.UUID]*BoardDetailResponse
	invalidated []uuid.UUID
}

func NewMockBoardCache() *MockBoardCache {
	return &MockBoardCache{boards: make(map[uuid.UUID]*BoardDetailResponse)}
}

func (m *MockBoardCache) GetBoard(ctx context.Context, tenantID, boardID uuid.UUID) (*BoardDetailResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	detail, ok := m.boards[boardID]
	return detail, ok
}

func (m *MockBoardCache) SetBoard(ctx context.Context, tenantID uuid.UUID, board *BoardDetailResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards[board.ID] = board
}

func (m *MockBoardCache) InvalidateBoard(ctx context.Context, tenantID, boardID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.boards, boardID)
	m.invalidated = append(m.invalidated, boardID)
}

func (m *MockBoardCache) Invalidated() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]uuid.UUID, len(m.invalidated))
	copy(result, m.invalidated)
	return result
}
