// Package mockapi is the in-memory data behind the development stub backend.
// The HTTP surface lives in internal/router and internal/handlers.
package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"sikseb/internal/catalog"
	"sikseb/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrRoleNotFound       = errors.New("Role tidak ditemukan")
	ErrDuplicateRoleName  = errors.New("Nama role sudah digunakan")
	ErrSystemRole         = errors.New("System role tidak dapat dihapus")
	ErrInvalidCredentials = errors.New("Email atau password salah")
	ErrUserInactive       = errors.New("Akun tidak aktif")
)

type roleRecord struct {
	id          string
	name        string
	status      string
	createdAt   time.Time
	system      bool
	permissions []catalog.PermissionCode
}

type userRecord struct {
	user         models.User
	passwordHash []byte
}

// Store holds roles and users. All methods are safe for concurrent use and
// return copies.
type Store struct {
	mu    sync.RWMutex
	roles []*roleRecord
	users []*userRecord
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// ========== auth ==========

// AddUser registers a user holding the named roles.
func (s *Store) AddUser(name, email, password string, roles ...string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	return s.addUserWithHash(name, email, hash, roles...), nil
}

func (s *Store) addUserWithHash(name, email string, hash []byte, roles ...string) models.User {
	now := s.now()
	u := models.User{
		ID:              models.FlexibleID(uuid.NewString()),
		Name:            name,
		Email:           strings.ToLower(email),
		Status:          models.UserStatusActive,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
		Roles:           append([]string(nil), roles...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u.Permissions = s.permissionsOfLocked(u.Roles)
	s.users = append(s.users, &userRecord{user: u, passwordHash: hash})
	return cloneUser(u)
}

// Authenticate checks the password against the stored bcrypt hash.
func (s *Store) Authenticate(email, password string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.users {
		if rec.user.Email != strings.ToLower(strings.TrimSpace(email)) {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
			return models.User{}, ErrInvalidCredentials
		}
		if rec.user.Status != models.UserStatusActive {
			return models.User{}, ErrUserInactive
		}
		u := rec.user
		u.Permissions = s.permissionsOfLocked(u.Roles)
		return cloneUser(u), nil
	}
	return models.User{}, ErrInvalidCredentials
}

func (s *Store) UserByID(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.users {
		if string(rec.user.ID) == id {
			u := rec.user
			u.Permissions = s.permissionsOfLocked(u.Roles)
			return cloneUser(u), true
		}
	}
	return models.User{}, false
}

// Users returns every user in registration order.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, rec := range s.users {
		u := rec.user
		u.Permissions = s.permissionsOfLocked(u.Roles)
		out = append(out, cloneUser(u))
	}
	return out
}

// ========== roles ==========

// Roles returns every role in creation order.
func (s *Store) Roles() []models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, s.toModelLocked(r))
	}
	return out
}

func (s *Store) Role(id string) (models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.findLocked(id)
	if r == nil {
		return models.Role{}, ErrRoleNotFound
	}
	return s.toModelLocked(r), nil
}

// RoleByName is a case-insensitive lookup.
func (s *Store) RoleByName(name string) (models.Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if strings.EqualFold(r.name, name) {
			return s.toModelLocked(r), true
		}
	}
	return models.Role{}, false
}

// CreateRole expects already validated data.
func (s *Store) CreateRole(data models.CreateRoleData) (models.Role, error) {
	return s.createRole(data.Name, data.Status, data.Permissions, false)
}

func (s *Store) createRole(name, status string, perms []catalog.PermissionCode, system bool) (models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTakenLocked(name, "") {
		return models.Role{}, ErrDuplicateRoleName
	}
	r := &roleRecord{
		id:          uuid.NewString(),
		name:        name,
		status:      status,
		createdAt:   s.now(),
		system:      system,
		permissions: catalog.Normalize(perms),
	}
	s.roles = append(s.roles, r)
	return s.toModelLocked(r), nil
}

// UpdateRole applies the fields present in data.
func (s *Store) UpdateRole(id string, data models.UpdateRoleData) (models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findLocked(id)
	if r == nil {
		return models.Role{}, ErrRoleNotFound
	}
	if data.Name != nil && s.nameTakenLocked(*data.Name, id) {
		return models.Role{}, ErrDuplicateRoleName
	}

	if data.Name != nil {
		s.renameHoldersLocked(r.name, *data.Name)
		r.name = *data.Name
	}
	if data.Status != nil {
		r.status = *data.Status
	}
	if data.Permissions != nil {
		r.permissions = catalog.Normalize(data.Permissions)
	}
	return s.toModelLocked(r), nil
}

func (s *Store) SetPermissions(id string, perms []catalog.PermissionCode) (models.Role, error) {
	return s.UpdateRole(id, models.UpdateRoleData{Permissions: nonNil(perms)})
}

// DeleteRole removes a custom role and takes it away from its holders.
func (s *Store) DeleteRole(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.roles {
		if r.id != id {
			continue
		}
		if r.system {
			return ErrSystemRole
		}
		s.roles = append(s.roles[:i:i], s.roles[i+1:]...)
		for _, u := range s.users {
			u.user.Roles = without(u.user.Roles, r.name)
		}
		return nil
	}
	return ErrRoleNotFound
}

// RoleUsers lists the holders of a role ordered by name.
func (s *Store) RoleUsers(id string) ([]models.RoleUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.findLocked(id)
	if r == nil {
		return nil, ErrRoleNotFound
	}
	out := []models.RoleUser{}
	for _, u := range s.users {
		if u.user.HasRole(r.name) {
			out = append(out, models.RoleUser{ID: string(u.user.ID), Name: u.user.Name, Email: u.user.Email})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ========== internals ==========

func (s *Store) findLocked(id string) *roleRecord {
	for _, r := range s.roles {
		if r.id == id {
			return r
		}
	}
	return nil
}

func (s *Store) nameTakenLocked(name, exceptID string) bool {
	for _, r := range s.roles {
		if r.id != exceptID && strings.EqualFold(r.name, name) {
			return true
		}
	}
	return false
}

func (s *Store) renameHoldersLocked(from, to string) {
	for _, u := range s.users {
		for i, name := range u.user.Roles {
			if name == from {
				u.user.Roles[i] = to
			}
		}
	}
}

func (s *Store) toModelLocked(r *roleRecord) models.Role {
	holders := 0
	for _, u := range s.users {
		if u.user.HasRole(r.name) {
			holders++
		}
	}
	return models.Role{
		ID:              r.id,
		Name:            r.name,
		Status:          r.status,
		UserCount:       holders,
		PermissionCount: len(r.permissions),
		CreatedAt:       r.createdAt,
		IsSystemRole:    r.system,
		Permissions:     append([]catalog.PermissionCode{}, r.permissions...),
	}
}

func (s *Store) permissionsOfLocked(roleNames []string) []string {
	var perms []catalog.PermissionCode
	for _, name := range roleNames {
		for _, r := range s.roles {
			if r.name == name {
				perms = append(perms, r.permissions...)
			}
		}
	}
	perms = catalog.Normalize(perms)
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

func cloneUser(u models.User) models.User {
	u.Roles = append([]string(nil), u.Roles...)
	u.Permissions = append([]string(nil), u.Permissions...)
	return u
}

func without(names []string, name string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func nonNil(p []catalog.PermissionCode) []catalog.PermissionCode {
	if p == nil {
		return []catalog.PermissionCode{}
	}
	return p
}
