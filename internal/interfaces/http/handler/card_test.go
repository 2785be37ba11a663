package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	kanbanapp "github.com/kanban/backend/internal/application/kanban"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"github.com/kanban/backend/internal/interfaces/http/dto"
	"github.com/kanban/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testTenantID is the tenant every handler test request runs under
var testTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// MockCardRepository implements kanban.CardRepository for testing
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

// MockColumnRepository implements kanban.ColumnRepository for testing
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

// Test setup helpers

// setupTestRouter returns a router whose requests run under testTenantID,
// standing in for the tenant middleware.
func setupTestRouter() *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.TenantIDKey, testTenantID.String())
		c.Next()
	})
	return router
}

func setupCardHandler(cardRepo *MockCardRepository, columnRepo *MockColumnRepository) *CardHandler {
	txScope := kanbanapp.NewNoOpTransactionScope(nil, columnRepo, cardRepo)
	cardService := kanbanapp.NewCardService(cardRepo, columnRepo, txScope)
	return NewCardHandler(cardService)
}

func createTestColumn(boardID uuid.UUID, wipLimit *int) *kanban.Column {
	column, _ := kanban.NewColumn(testTenantID, boardID, "In Progress", 1024)
	_ = column.SetWIPLimit(wipLimit)
	column.ClearDomainEvents()
	return column
}

func createTestCard(boardID, columnID uuid.UUID, position int) *kanban.Card {
	card, _ := kanban.NewCard(testTenantID, boardID, columnID, "Test Card", position)
	card.ClearDomainEvents()
	return card
}

// Tests

func TestCardHandler_Create_Success(t *testing.T) {
	cardRepo := new(MockCardRepository)
	columnRepo := new(MockColumnRepository)
	handler := setupCardHandler(cardRepo, columnRepo)

	boardID := uuid.New()
	column := createTestColumn(boardID, nil)

	columnRepo.On("FindByIDForTenant", mock.Anything, testTenantID, column.ID).Return(column, nil)
	cardRepo.On("CountActiveByColumn", mock.Anything, testTenantID, column.ID).Return(int64(0), nil)
	cardRepo.On("ListByColumn", mock.Anything, testTenantID, column.ID).Return([]kanban.Card{}, nil)
	cardRepo.On("Create", mock.Anything, mock.AnythingOfType("*kanban.Card")).Return(nil)

	router := setupTestRouter()
	router.POST("/cards", handler.Create)

	reqBody := kanbanapp.CreateCardRequest{
		ColumnID: column.ID,
		Title:    "Write release notes",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Write release notes", data["title"])
	assert.Equal(t, column.ID.String(), data["column_id"])
	cardRepo.AssertExpectations(t)
}

func TestCardHandler_Create_WIPLimitReached(t *testing.T) {
	cardRepo := new(MockCardRepository)
	columnRepo := new(MockColumnRepository)
	handler := setupCardHandler(cardRepo, columnRepo)

	boardID := uuid.New()
	limit := 2
	column := createTestColumn(boardID, &limit)

	columnRepo.On("FindByIDForTenant", mock.Anything, testTenantID, column.ID).Return(column, nil)
	cardRepo.On("CountActiveByColumn", mock.Anything, testTenantID, column.ID).Return(int64(2), nil)

	router := setupTestRouter()
	router.POST("/cards", handler.Create)

	reqBody := kanbanapp.CreateCardRequest{
		ColumnID: column.ID,
		Title:    "One card too many",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeWIPLimitReached, resp.Error.Code)
}

func TestCardHandler_Create_InvalidBody(t *testing.T) {
	cardRepo := new(MockCardRepository)
	columnRepo := new(MockColumnRepository)
	handler := setupCardHandler(cardRepo, columnRepo)

	router := setupTestRouter()
	router.POST("/cards", handler.Create)

	// Missing required title
	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewBufferString(`{"column_id":"`+uuid.NewString()+`"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCardHandler_GetByID_NotFound(t *testing.T) {
	cardRepo := new(MockCardRepository)
	columnRepo := new(MockColumnRepository)
	handler := setupCardHandler(cardRepo, columnRepo)

	cardID := uuid.New()
	cardRepo.On("FindByIDForTenant", mock.Anything, testTenantID, cardID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.GET("/cards/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/cards/"+cardID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestCardHandler_Reorder_VersionConflict(t *testing.T) {
	cardRepo := new(MockCardRepository)
	columnRepo := new(MockColumnRepository)
	handler := setupCardHandler(cardRepo, columnRepo)

	boardID := uuid.New()
	columnID := uuid.New()
	card := createTestCard(boardID, columnID, 1024)

	cardRepo.On("FindByIDForTenant", mock.Anything, testTenantID, card.ID).Return(card, nil)

	router := setupTestRouter()
	router.POST("/cards/:id/reorder", handler.Reorder)

	stale := card.Version + 5
	reqBody := kanbanapp.ReorderCardRequest{
		Target:          kanbanapp.TargetRequest{Kind: "end"},
		ExpectedVersion: &stale,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/cards/"+card.ID.String()+"/reorder", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, dto.ErrCodeVersionConflict, resp.Error.Code)
	cardRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestCardHandler_Move_Success(t *testing.T) {
	cardRepo := new(MockCardRepository)
	columnRepo := new(MockColumnRepository)
	handler := setupCardHandler(cardRepo, columnRepo)

	boardID := uuid.New()
	sourceColumnID := uuid.New()
	card := createTestCard(boardID, sourceColumnID, 1024)
	targetColumn := createTestColumn(boardID, nil)

	cardRepo.On("FindByIDForTenant", mock.Anything, testTenantID, card.ID).Return(card, nil)
	columnRepo.On("FindByIDForTenant", mock.Anything, testTenantID, targetColumn.ID).Return(targetColumn, nil)
	cardRepo.On("CountActiveByColumn", mock.Anything, testTenantID, targetColumn.ID).Return(int64(0), nil)
	cardRepo.On("ListByColumn", mock.Anything, testTenantID, targetColumn.ID).Return([]kanban.Card{}, nil)
	cardRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*kanban.Card")).Return(nil)

	router := setupTestRouter()
	router.POST("/cards/:id/move", handler.Move)

	reqBody := kanbanapp.MoveCardRequest{
		TargetColumnID: targetColumn.ID,
		Target:         kanbanapp.TargetRequest{Kind: "end"},
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/cards/"+card.ID.String()+"/move", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, targetColumn.ID.String(), data["column_id"])
	cardRepo.AssertExpectations(t)
}

func TestCardHandler_Move_CrossBoardTarget(t *testing.T) {
	cardRepo := new(MockCardRepository)
	columnRepo := new(MockColumnRepository)
	handler := setupCardHandler(cardRepo, columnRepo)

	card := createTestCard(uuid.New(), uuid.New(), 1024)
	foreignColumn := createTestColumn(uuid.New(), nil) // different board

	cardRepo.On("FindByIDForTenant", mock.Anything, testTenantID, card.ID).Return(card, nil)
	columnRepo.On("FindByIDForTenant", mock.Anything, testTenantID, foreignColumn.ID).Return(foreignColumn, nil)

	router := setupTestRouter()
	router.POST("/cards/:id/move", handler.Move)

	reqBody := kanbanapp.MoveCardRequest{
		TargetColumnID: foreignColumn.ID,
		Target:         kanbanapp.TargetRequest{Kind: "end"},
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/cards/"+card.ID.String()+"/move", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, dto.ErrCodeInvalidTarget, resp.Error.Code)
	cardRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestCardHandler_Delete_Success(t *testing.T) {
	cardRepo := new(MockCardRepository)
	columnRepo := new(MockColumnRepository)
	handler := setupCardHandler(cardRepo, columnRepo)

	card := createTestCard(uuid.New(), uuid.New(), 1024)

	cardRepo.On("FindByIDForTenant", mock.Anything, testTenantID, card.ID).Return(card, nil)
	cardRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*kanban.Card")).Return(nil)

	router := setupTestRouter()
	router.DELETE("/cards/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/cards/"+card.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	cardRepo.AssertExpectations(t)
}

func TestCardHandler_Delete_StaleExpectedVersion(t *testing.T) {
	cardRepo := new(MockCardRepository)
	columnRepo := new(MockColumnRepository)
	handler := setupCardHandler(cardRepo, columnRepo)

	card := createTestCard(uuid.New(), uuid.New(), 1024)

	cardRepo.On("FindByIDForTenant", mock.Anything, testTenantID, card.ID).Return(card, nil)

	router := setupTestRouter()
	router.DELETE("/cards/:id", handler.Delete)

	stale := card.Version + 1
	req := httptest.NewRequest(http.MethodDelete,
		"/cards/"+card.ID.String()+"?expected_version="+strconv.Itoa(stale), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, dto.ErrCodeVersionConflict, resp.Error.Code)
	cardRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestCardHandler_Delete_InvalidExpectedVersion(t *testing.T) {
	cardRepo := new(MockCardRepository)
	columnRepo := new(MockColumnRepository)
	handler := setupCardHandler(cardRepo, columnRepo)

	router := setupTestRouter()
	router.DELETE("/cards/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/cards/"+uuid.NewString()+"?expected_version=abc", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	cardRepo.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
}
