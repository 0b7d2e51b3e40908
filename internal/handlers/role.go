package handlers

import (
	"errors"
	"net/http"
	"strings"

	"sikseb/internal/catalog"
	"sikseb/internal/mockapi"
	"sikseb/internal/models"
	"sikseb/pkg/logger"
	"sikseb/pkg/pagination"
	"sikseb/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type RoleHandler struct {
	store    *mockapi.Store
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewRoleHandler(store *mockapi.Store) *RoleHandler {
	v := validator.New()
	_ = v.RegisterValidation("permission", func(fl validator.FieldLevel) bool {
		return catalog.IsKnown(catalog.PermissionCode(fl.Field().String()))
	})
	return &RoleHandler{
		store:    store,
		validate: v,
		log:      logger.GetLogger().WithField("component", "mockapi.roles"),
	}
}

// ========== CRUD ==========

// List GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	roles := h.store.Roles()

	start, end := params.Window(len(roles))
	response.List(c, roles[start:end], pagination.NewMeta(params.Page, params.PerPage, len(roles)))
}

// GetByID GET /api/roles/:id
func (h *RoleHandler) GetByID(c *gin.Context) {
	role, err := h.store.Role(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Entity(c, http.StatusOK, role, "")
}

// Create POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req models.CreateRoleData
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Format request tidak valid")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Status == "" {
		req.Status = models.RoleStatusActive
	}
	if fields := h.check(req); fields != nil {
		response.ValidationFailed(c, "Data role tidak valid", fields)
		return
	}

	role, err := h.store.CreateRole(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.WithField("name", role.Name).Info("role created")
	response.Entity(c, http.StatusCreated, role, "Role berhasil dibuat")
}

// Update PUT /api/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	var req models.UpdateRoleData
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Format request tidak valid")
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
		if name == "" {
			response.ValidationFailed(c, "Nama role harus diisi", map[string]string{"name": "required"})
			return
		}
	}
	if fields := h.check(req); fields != nil {
		response.ValidationFailed(c, "Data role tidak valid", fields)
		return
	}

	role, err := h.store.UpdateRole(c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Entity(c, http.StatusOK, role, "Role berhasil diperbarui")
}

// Delete DELETE /api/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteRole(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, "Role berhasil dihapus")
}

// ========== permissions & users ==========

// UpdatePermissions PATCH /api/roles/:id/permissions
func (h *RoleHandler) UpdatePermissions(c *gin.Context) {
	var req models.UpdatePermissionsData
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Format request tidak valid")
		return
	}
	if len(req.Permissions) == 0 {
		response.ValidationFailed(c, "Pilih minimal satu permission", map[string]string{"permissions": "min"})
		return
	}
	if err := h.validate.Var(req.Permissions, "dive,permission"); err != nil {
		response.ValidationFailed(c, "Permission tidak dikenal", map[string]string{"permissions": "permission"})
		return
	}

	role, err := h.store.SetPermissions(c.Param("id"), req.Permissions)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Entity(c, http.StatusOK, role, "Permission role berhasil diperbarui")
}

// Users GET /api/roles/:id/users
func (h *RoleHandler) Users(c *gin.Context) {
	users, err := h.store.RoleUsers(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.List(c, users, pagination.NewMeta(1, max(len(users), 1), len(users)))
}

// ========== helpers ==========

// check returns field -> failed tag, or nil when valid.
func (h *RoleHandler) check(req any) map[string]string {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.StructField())] = fe.Tag()
	}
	return fields
}

func (h *RoleHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mockapi.ErrRoleNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, mockapi.ErrDuplicateRoleName):
		response.ValidationFailed(c, err.Error(), map[string]string{"name": "unique"})
	case errors.Is(err, mockapi.ErrSystemRole):
		response.Forbidden(c, err.Error())
	default:
		h.log.WithError(err).Error("role request failed")
		response.ServerError(c, "Terjadi kesalahan pada server")
	}
}
