package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	kanbanapp "github.com/kanban/backend/internal/application/kanban"
	"github.com/kanban/backend/internal/domain/kanban"
	"github.com/kanban/backend/internal/domain/shared"
	"github.com/kanban/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupWorkspaceHandler(workspaceRepo *MockWorkspaceRepository) *WorkspaceHandler {
	workspaceService := kanbanapp.NewWorkspaceService(workspaceRepo)
	return NewWorkspaceHandler(workspaceService)
}

func TestWorkspaceHandler_Create_Success(t *testing.T) {
	workspaceRepo := new(MockWorkspaceRepository)
	handler := setupWorkspaceHandler(workspaceRepo)

	workspaceRepo.On("Create", mock.Anything, mock.AnythingOfType("*kanban.Workspace")).Return(nil)

	router := setupTestRouter()
	router.POST("/workspaces", handler.Create)

	reqBody := kanbanapp.CreateWorkspaceRequest{
		Name:        "Engineering",
		Description: "Product engineering teams",
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/workspaces", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Engineering", data["name"])
	assert.Equal(t, testTenantID.String(), data["tenant_id"])
	workspaceRepo.AssertExpectations(t)
}

func TestWorkspaceHandler_Create_EmptyName(t *testing.T) {
	workspaceRepo := new(MockWorkspaceRepository)
	handler := setupWorkspaceHandler(workspaceRepo)

	router := setupTestRouter()
	router.POST("/workspaces", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/workspaces", bytes.NewBufferString(`{"name":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	workspaceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWorkspaceHandler_List(t *testing.T) {
	workspaceRepo := new(MockWorkspaceRepository)
	handler := setupWorkspaceHandler(workspaceRepo)

	ws := createTestWorkspace()
	workspaceRepo.On("FindAllForTenant", mock.Anything, testTenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 10
	})).Return([]kanban.Workspace{*ws}, nil)
	workspaceRepo.On("CountForTenant", mock.Anything, testTenantID).Return(int64(11), nil)

	router := setupTestRouter()
	router.GET("/workspaces", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/workspaces?page=2&page_size=10", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(11), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	workspaceRepo.AssertExpectations(t)
}

func TestWorkspaceHandler_Update_VersionConflict(t *testing.T) {
	workspaceRepo := new(MockWorkspaceRepository)
	handler := setupWorkspaceHandler(workspaceRepo)

	ws := createTestWorkspace()
	workspaceRepo.On("FindByIDForTenant", mock.Anything, testTenantID, ws.ID).Return(ws, nil)

	router := setupTestRouter()
	router.PUT("/workspaces/:id", handler.Update)

	stale := ws.Version + 2
	reqBody := kanbanapp.UpdateWorkspaceRequest{
		Name:            "Platform",
		ExpectedVersion: &stale,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPut, "/workspaces/"+ws.ID.String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, dto.ErrCodeVersionConflict, resp.Error.Code)
	workspaceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestWorkspaceHandler_Delete_Success(t *testing.T) {
	workspaceRepo := new(MockWorkspaceRepository)
	handler := setupWorkspaceHandler(workspaceRepo)

	ws := createTestWorkspace()
	workspaceRepo.On("FindByIDForTenant", mock.Anything, testTenantID, ws.ID).Return(ws, nil)
	workspaceRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*kanban.Workspace")).Return(nil)

	router := setupTestRouter()
	router.DELETE("/workspaces/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/workspaces/"+ws.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	workspaceRepo.AssertExpectations(t)
}
