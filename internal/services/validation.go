package services

import (
	"errors"
	"fmt"
	"strings"

	"sikseb/internal/catalog"
	"sikseb/internal/models"
	apperrors "sikseb/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// newValidator registers the "permission" tag (a known PermissionCode).
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("permission", func(fl validator.FieldLevel) bool {
		return catalog.IsKnown(catalog.PermissionCode(fl.Field().String()))
	})
	return v
}

// NormalizeCreate trims the name and status, defaults the status to Aktif
// and collapses duplicate permissions.
func NormalizeCreate(data models.CreateRoleData) models.CreateRoleData {
	data.Name = strings.TrimSpace(data.Name)
	data.Status = strings.TrimSpace(data.Status)
	if data.Status == "" {
		data.Status = models.RoleStatusActive
	}
	data.Permissions = catalog.Normalize(data.Permissions)
	return data
}

// NormalizeUpdate applies the same rules to the fields that are present.
func NormalizeUpdate(data models.UpdateRoleData) models.UpdateRoleData {
	if data.Name != nil {
		name := strings.TrimSpace(*data.Name)
		data.Name = &name
	}
	if data.Status != nil {
		status := strings.TrimSpace(*data.Status)
		data.Status = &status
	}
	if data.Permissions != nil {
		data.Permissions = catalog.Normalize(data.Permissions)
	}
	return data
}

func (s *RoleService) validateCreate(data models.CreateRoleData) error {
	return translate(s.validate.Struct(data))
}

func (s *RoleService) validateUpdate(data models.UpdateRoleData) error {
	if data.IsEmpty() {
		return apperrors.Validation("", "Tidak ada perubahan untuk disimpan")
	}
	// omitempty skips zero values, so present-but-empty fields are checked here
	if data.Name != nil && *data.Name == "" {
		return apperrors.Validation("name", "Nama role harus diisi")
	}
	if data.Status != nil && *data.Status == "" {
		return apperrors.Validation("status", "Status role harus diisi")
	}
	if data.Permissions != nil && len(data.Permissions) == 0 {
		return apperrors.Validation("permissions", "Pilih minimal satu permission")
	}
	return translate(s.validate.Struct(data))
}

func (s *RoleService) validatePermissions(perms []catalog.PermissionCode) error {
	for _, p := range perms {
		if !catalog.IsKnown(p) {
			return apperrors.Validation("permissions", "Permission tidak dikenal: "+string(p))
		}
	}
	return nil
}

// translate maps the first validator failure to a ValidationError with a display message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Validation("", err.Error())
	}

	fe := verrs[0]
	switch fe.StructField() {
	case "Name":
		if fe.Tag() == "min" {
			return apperrors.Validation("name", "Nama role minimal 3 karakter")
		}
		return apperrors.Validation("name", "Nama role harus diisi")
	case "Status":
		if fe.Tag() == "oneof" {
			return apperrors.Validation("status", "Status role harus 'Aktif' atau 'Tidak Aktif'")
		}
		return apperrors.Validation("status", "Status role harus diisi")
	}

	if fe.Tag() == "permission" {
		return apperrors.Validation("permissions", "Permission tidak dikenal: "+fmt.Sprint(fe.Value()))
	}
	return apperrors.Validation("permissions", "Pilih minimal satu permission")
}
