package services

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"sikseb/internal/catalog"
	"sikseb/internal/models"
	"sikseb/pkg/logger"
	"sikseb/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// API is the subset of apiclient.Client used by the services.
type API interface {
	Get(ctx context.Context, endpoint string, out any) error
	Post(ctx context.Context, endpoint string, body, out any) error
	Put(ctx context.Context, endpoint string, body, out any) error
	Patch(ctx context.Context, endpoint string, body, out any) error
	Delete(ctx context.Context, endpoint string, out any) error
}

// maxListPages bounds pagination against a backend that never reports a last page.
const maxListPages = 100

// RoleService owns the in-memory role collection. Every failed call leaves
// the collection exactly as it was; successful mutations apply the server's
// copy of the role without a follow-up refresh.
type RoleService struct {
	api      API
	validate *validator.Validate
	log      logrus.FieldLogger

	mu      sync.RWMutex
	roles   []models.Role
	loaded  bool
	lastErr error
}

func NewRoleService(api API) *RoleService {
	return &RoleService{
		api:      api,
		validate: newValidator(),
		log:      logger.GetLogger().WithField("component", "roles"),
	}
}

func (s *RoleService) SetLogger(l logrus.FieldLogger) {
	s.log = l
}

// ========== queries ==========

// Roles returns a deep copy of the collection in its current order.
func (s *RoleService) Roles() []models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Role, len(s.roles))
	for i, r := range s.roles {
		out[i] = r.Clone()
	}
	return out
}

// Find resolves id against the current collection.
func (s *RoleService) Find(id string) (models.Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.roles[i].Clone(), true
	}
	return models.Role{}, false
}

func (s *RoleService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LastError is the message of the most recent failed call, or "".
func (s *RoleService) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastErr == nil {
		return ""
	}
	return s.lastErr.Error()
}

// ========== backend calls ==========

// List fetches every page of GET /api/roles and replaces the collection.
func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	s.clearErr()

	var all []models.Role
	for page := 1; page <= maxListPages; page++ {
		var env response.ListEnvelope[models.Role]
		endpoint := "/api/roles"
		if page > 1 {
			endpoint += "?page=" + strconv.Itoa(page)
		}
		if err := s.api.Get(ctx, endpoint, &env); err != nil {
			return nil, s.fail("list", err)
		}
		all = append(all, env.Data...)
		if !env.Meta.HasNext() {
			break
		}
	}

	s.mu.Lock()
	s.roles = all
	s.loaded = true
	s.mu.Unlock()

	s.log.WithField("count", len(all)).Debug("roles loaded")
	return s.Roles(), nil
}

// Get fetches one role and refreshes its entry in place when present.
func (s *RoleService) Get(ctx context.Context, id string) (models.Role, error) {
	s.clearErr()

	var env response.EntityEnvelope[models.Role]
	if err := s.api.Get(ctx, roleEndpoint(id), &env); err != nil {
		return models.Role{}, s.fail("get", err)
	}

	s.replace(id, env.Data)
	return env.Data.Clone(), nil
}

// Create validates locally, then POSTs and appends the created role.
// Invalid input never reaches the backend.
func (s *RoleService) Create(ctx context.Context, data models.CreateRoleData) (models.Role, error) {
	s.clearErr()

	data = NormalizeCreate(data)
	if err := s.validateCreate(data); err != nil {
		return models.Role{}, s.fail("create", err)
	}

	var env response.EntityEnvelope[models.Role]
	if err := s.api.Post(ctx, "/api/roles", data, &env); err != nil {
		return models.Role{}, s.fail("create", err)
	}

	s.mu.Lock()
	s.roles = append(s.roles, env.Data.Clone())
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"id": env.Data.ID, "name": env.Data.Name}).Info("role created")
	return env.Data.Clone(), nil
}

// Update sends only the fields present in data and replaces the matching entry in place.
func (s *RoleService) Update(ctx context.Context, id string, data models.UpdateRoleData) (models.Role, error) {
	s.clearErr()

	data = NormalizeUpdate(data)
	if err := s.validateUpdate(data); err != nil {
		return models.Role{}, s.fail("update", err)
	}

	var env response.EntityEnvelope[models.Role]
	if err := s.api.Put(ctx, roleEndpoint(id), data, &env); err != nil {
		return models.Role{}, s.fail("update", err)
	}

	s.replace(id, env.Data)
	s.log.WithField("id", id).Info("role updated")
	return env.Data.Clone(), nil
}

// Delete removes the role on the backend and then from the collection.
// System roles are not refused here; the console hides the action for them.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	s.clearErr()

	var env response.MessageEnvelope
	if err := s.api.Delete(ctx, roleEndpoint(id), &env); err != nil {
		return s.fail("delete", err)
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		next := make([]models.Role, 0, len(s.roles)-1)
		next = append(next, s.roles[:i]...)
		next = append(next, s.roles[i+1:]...)
		s.roles = next
	}
	s.mu.Unlock()

	s.log.WithField("id", id).Info("role deleted")
	return nil
}

// UpdatePermissions replaces the role's permission set via PATCH.
func (s *RoleService) UpdatePermissions(ctx context.Context, id string, perms []catalog.PermissionCode) (models.Role, error) {
	s.clearErr()

	perms = catalog.Normalize(perms)
	if err := s.validatePermissions(perms); err != nil {
		return models.Role{}, s.fail("update permissions", err)
	}

	var env response.EntityEnvelope[models.Role]
	body := models.UpdatePermissionsData{Permissions: perms}
	if err := s.api.Patch(ctx, roleEndpoint(id)+"/permissions", body, &env); err != nil {
		return models.Role{}, s.fail("update permissions", err)
	}

	s.replace(id, env.Data)
	s.log.WithFields(logrus.Fields{"id": id, "permissions": len(perms)}).Info("role permissions updated")
	return env.Data.Clone(), nil
}

// ========== helpers ==========

func roleEndpoint(id string) string {
	return "/api/roles/" + url.PathEscape(id)
}

// caller holds s.mu
func (s *RoleService) indexOf(id string) int {
	for i := range s.roles {
		if s.roles[i].ID == id {
			return i
		}
	}
	return -1
}

// replace swaps the entry matching id, keeping its position. A missing id is a no-op.
func (s *RoleService) replace(id string, role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	next := make([]models.Role, len(s.roles))
	copy(next, s.roles)
	next[i] = role.Clone()
	s.roles = next
}

func (s *RoleService) clearErr() {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *RoleService) fail(op string, err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.log.WithError(err).WithField("op", op).Warn("role operation failed")
	return err
}
