package mockapi

import (
	"fmt"

	"sikseb/internal/catalog"
	"sikseb/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// SeedOptions configures the seeded admin account.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	// Employees is the number of extra users holding the Karyawan role.
	Employees int
}

var employeeNames = []string{
	"Budi Santoso", "Siti Rahayu", "Agus Pratama", "Dewi Lestari",
	"Rudi Hartono", "Putri Wulandari", "Eko Saputra", "Rina Marlina",
}

// Seed creates the system roles Owner, Admin and Karyawan, an admin user and
// opts.Employees employees. Employee passwords equal the admin password.
func Seed(s *Store, opts SeedOptions) error {
	for _, name := range catalog.SeedRoleNames() {
		if _, err := s.createRole(name, models.RoleStatusActive, catalog.SeedPermissions(name), true); err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	s.addUserWithHash("Administrator", opts.AdminEmail, hash, catalog.RoleAdmin)

	for i := 0; i < opts.Employees; i++ {
		name := employeeNames[i%len(employeeNames)]
		if i >= len(employeeNames) {
			name = fmt.Sprintf("%s %d", name, i/len(employeeNames)+1)
		}
		email := fmt.Sprintf("karyawan%d@example.com", i+1)
		s.addUserWithHash(name, email, hash, catalog.RoleEmployee)
	}
	return nil
}

// NewSeededStore is NewStore followed by Seed.
func NewSeededStore(opts SeedOptions) (*Store, error) {
	s := NewStore()
	if err := Seed(s, opts); err != nil {
		return nil, err
	}
	return s, nil
}
