package services

import (
	"context"
	"sync"

	"sikseb/internal/models"
	"sikseb/pkg/logger"
	"sikseb/pkg/response"

	"github.com/sirupsen/logrus"
)

// RoleUsersService fetches the users holding one role on demand. Each fetch
// replaces the previous result; nothing is cached across roles.
type RoleUsersService struct {
	api API
	log logrus.FieldLogger

	mu      sync.RWMutex
	roleID  string
	users   []models.RoleUser
	lastErr error
}

func NewRoleUsersService(api API) *RoleUsersService {
	return &RoleUsersService{
		api: api,
		log: logger.GetLogger().WithField("component", "role_users"),
	}
}

// FetchUsers loads GET /api/roles/{id}/users. On failure the previous set is
// dropped so users of another role are never shown under this one.
func (s *RoleUsersService) FetchUsers(ctx context.Context, roleID string) ([]models.RoleUser, error) {
	var env response.ListEnvelope[models.RoleUser]
	err := s.api.Get(ctx, roleEndpoint(roleID)+"/users", &env)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.roleID = roleID
	if err != nil {
		s.users = nil
		s.lastErr = err
		s.log.WithError(err).WithField("role_id", roleID).Warn("cannot fetch role users")
		return nil, err
	}
	s.users = append([]models.RoleUser(nil), env.Data...)
	s.lastErr = nil
	return append([]models.RoleUser(nil), s.users...), nil
}

// Users returns the last fetched set and the role it belongs to.
func (s *RoleUsersService) Users() (string, []models.RoleUser) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roleID, append([]models.RoleUser(nil), s.users...)
}

func (s *RoleUsersService) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastErr == nil {
		return ""
	}
	return s.lastErr.Error()
}

// Reset forgets the fetched set, e.g. when the detail view closes.
func (s *RoleUsersService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roleID = ""
	s.users = nil
	s.lastErr = nil
}
