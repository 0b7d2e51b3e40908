package models

import (
	"encoding/json"
	"time"

	"sikseb/internal/catalog"
)

// Role status values.
const (
	RoleStatusActive   = "Aktif"
	RoleStatusInactive = "Tidak Aktif"
)

// Role is a named bundle of permissions as returned by the backend.
// UserCount and PermissionCount are derived server-side and read-only here.
type Role struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Status          string                   `json:"status"`
	UserCount       int                      `json:"userCount"`
	PermissionCount int                      `json:"permissionCount"`
	CreatedAt       time.Time                `json:"createdAt"`
	IsSystemRole    bool                     `json:"isSystemRole"`
	Permissions     []catalog.PermissionCode `json:"permissions"`
}

// UnmarshalJSON takes numeric ids as well as string ids.
func (r *Role) UnmarshalJSON(b []byte) error {
	type plain Role
	aux := struct {
		*plain
		ID FlexibleID `json:"id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.ID = string(aux.ID)
	return nil
}

// Clone returns a deep copy so callers cannot alias the repository's slices.
func (r Role) Clone() Role {
	r.Permissions = append([]catalog.PermissionCode(nil), r.Permissions...)
	return r
}

// CreateRoleData is the body of POST /api/roles.
type CreateRoleData struct {
	Name        string                   `json:"name" validate:"required,min=3"`
	Status      string                   `json:"status" validate:"required,oneof='Aktif' 'Tidak Aktif'"`
	Permissions []catalog.PermissionCode `json:"permissions" validate:"required,min=1,dive,permission"`
}

// UpdateRoleData is the body of PUT /api/roles/{id}; nil fields are not sent.
type UpdateRoleData struct {
	Name        *string                  `json:"name,omitempty" validate:"omitempty,min=3"`
	Status      *string                  `json:"status,omitempty" validate:"omitempty,oneof='Aktif' 'Tidak Aktif'"`
	Permissions []catalog.PermissionCode `json:"permissions,omitempty" validate:"omitempty,min=1,dive,permission"`
}

// IsEmpty reports whether the update carries no field at all.
func (u UpdateRoleData) IsEmpty() bool {
	return u.Name == nil && u.Status == nil && u.Permissions == nil
}

// UpdatePermissionsData is the body of PATCH /api/roles/{id}/permissions.
type UpdatePermissionsData struct {
	Permissions []catalog.PermissionCode `json:"permissions"`
}

// RoleUser is a user currently holding a role.
type RoleUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *RoleUser) UnmarshalJSON(b []byte) error {
	type plain RoleUser
	aux := struct {
		*plain
		ID FlexibleID `json:"id"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	u.ID = string(aux.ID)
	return nil
}
