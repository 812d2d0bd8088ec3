package rbac

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestRouterRoleLifecycle(t *testing.T) {
	f := newFixture(t)
	router := Router(f.svc)

	rec, envelope := doJSON(t, router, http.MethodPost, "/roles/", RoleRequest{Name: "Member"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Role created successfully.", envelope["message"])

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	roleID, _ := data["role_id"].(string)
	require.NotEmpty(t, roleID)

	rec, _ = doJSON(t, router, http.MethodPost, "/roles/", RoleRequest{Name: "Member"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, envelope = doJSON(t, router, http.MethodGet, "/roles/"+roleID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodPut, "/roles/"+roleID, RoleRequest{Name: "Senior Member"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodDelete, "/roles/"+roleID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/roles/"+roleID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterGuardedDeletion(t *testing.T) {
	f := newFixture(t)
	router := Router(f.svc)
	ctx := context.Background()

	role, err := f.svc.CreateRole(ctx, RoleRequest{Name: "Member"})
	require.NoError(t, err)
	permission, err := f.svc.CreatePermission(ctx, PermissionRequest{Name: "profile:read"})
	require.NoError(t, err)

	rec, _ := doJSON(t, router, http.MethodPost, "/permissions/"+permission.ID.String()+"/roles",
		AssignRolesRequest{RoleIDs: []uuid.UUID{role.ID}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, envelope := doJSON(t, router, http.MethodDelete, "/roles/"+role.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ErrRoleAssignedToPermission.Error(), envelope["message"])

	rec, _ = doJSON(t, router, http.MethodDelete, "/permissions/"+permission.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouterValidation(t *testing.T) {
	f := newFixture(t)
	router := Router(f.svc)

	rec, envelope := doJSON(t, router, http.MethodPost, "/roles/", map[string]any{"name": ""})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Validation error.", envelope["message"])

	rec, _ = doJSON(t, router, http.MethodGet, "/roles/not-a-uuid", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
