package rbac

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hireloop/identity/pkg/apiresponse"
	"github.com/hireloop/identity/pkg/binder"
	"github.com/hireloop/identity/pkg/validator"
)

// Router mounts role and permission management under /roles and
// /permissions.
func Router(svc *Service) http.Handler {
	r := chi.NewRouter()
	r.Mount("/roles", RolesRouter(svc))
	r.Mount("/permissions", PermissionsRouter(svc))
	return r
}

// RolesRouter serves role CRUD, wrapped in the given middlewares.
func RolesRouter(svc *Service, middlewares ...func(http.Handler) http.Handler) http.Handler {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(middlewares...)
	r.Post("/", h.createRole)
	r.Get("/", h.listRoles)
	r.Get("/{id}", h.getRole)
	r.Put("/{id}", h.updateRole)
	r.Delete("/{id}", h.deleteRole)
	return r
}

// PermissionsRouter serves permission CRUD and bulk role assignment.
func PermissionsRouter(svc *Service, middlewares ...func(http.Handler) http.Handler) http.Handler {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(middlewares...)
	r.Post("/", h.createPermission)
	r.Get("/", h.listPermissions)
	r.Get("/{id}", h.getPermission)
	r.Put("/{id}", h.updatePermission)
	r.Delete("/{id}", h.deletePermission)
	r.Post("/{id}/roles", h.assignRoles)
	r.Delete("/{id}/roles", h.unassignRoles)
	return r
}

type handlers struct {
	svc *Service
}

func (h *handlers) createRole(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[RoleRequest](w, r)
	if !ok {
		return
	}
	role, err := h.svc.CreateRole(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.Created(w, "Role created successfully.", role)
}

func (h *handlers) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.ListRoles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Roles fetched successfully.", roles)
}

func (h *handlers) getRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	role, err := h.svc.GetRole(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Role fetched successfully.", role)
}

func (h *handlers) updateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[RoleRequest](w, r)
	if !ok {
		return
	}
	role, err := h.svc.UpdateRole(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Role updated successfully.", role)
}

func (h *handlers) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteRole(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Role deleted successfully.", nil)
}

func (h *handlers) createPermission(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[PermissionRequest](w, r)
	if !ok {
		return
	}
	permission, err := h.svc.CreatePermission(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.Created(w, "Permission created successfully.", permission)
}

func (h *handlers) listPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.svc.ListPermissions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Permissions fetched successfully.", permissions)
}

func (h *handlers) getPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	permission, err := h.svc.GetPermission(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Permission fetched successfully.", permission)
}

func (h *handlers) updatePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[PermissionRequest](w, r)
	if !ok {
		return
	}
	permission, err := h.svc.UpdatePermission(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Permission updated successfully.", permission)
}

func (h *handlers) deletePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePermission(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Permission deleted successfully.", nil)
}

func (h *handlers) assignRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[AssignRolesRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.AssignRoles(r.Context(), id, req.RoleIDs); err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Roles assigned successfully.", nil)
}

func (h *handlers) unassignRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeBody[AssignRolesRequest](w, r)
	if !ok {
		return
	}
	if err := h.svc.UnassignRoles(r.Context(), id, req.RoleIDs); err != nil {
		writeError(w, err)
		return
	}
	apiresponse.OK(w, "Roles unassigned successfully.", nil)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apiresponse.Error(w, http.StatusUnprocessableEntity, "Validation error.", map[string]any{
			"errors": validator.ValidationErrors{{
				Field:   "id",
				Message: "value is not a valid uuid",
				Type:    "value_error.uuid",
			}},
		})
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody[T interface{ Validate() error }](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T

	if err := binder.JSON(r, &req); err != nil {
		apiresponse.Error(w, http.StatusUnprocessableEntity, "Validation error.", map[string]any{
			"errors": validator.ValidationErrors{{
				Field:   "body",
				Message: err.Error(),
				Type:    "value_error.jsondecode",
			}},
		})
		return req, false
	}

	if err := req.Validate(); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			apiresponse.Error(w, http.StatusUnprocessableEntity, "Validation error.", map[string]any{
				"errors": verrs,
			})
		} else {
			apiresponse.Error(w, http.StatusUnprocessableEntity, "Validation error.", nil)
		}
		return req, false
	}

	return req, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRoleAlreadyExists),
		errors.Is(err, ErrPermissionAlreadyExists),
		errors.Is(err, ErrRoleAssignedToUser),
		errors.Is(err, ErrRoleAssignedToPermission),
		errors.Is(err, ErrPermissionAssignedToRole):
		apiresponse.Error(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ErrRoleNotFound), errors.Is(err, ErrPermissionNotFound):
		apiresponse.Error(w, http.StatusNotFound, err.Error(), nil)
	default:
		apiresponse.Error(w, http.StatusInternalServerError,
			"Something went wrong. Please try again later.", nil)
	}
}
