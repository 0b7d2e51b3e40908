package catalog

// Seed role names as created by the backend seeder.
const (
	RoleOwner    = "Owner"
	RoleAdmin    = "Admin"
	RoleEmployee = "Karyawan"
)

var seedRolePermissions = map[string][]PermissionCode{
	RoleOwner: {
		ManageUsers,
		ManageSalary,
		ManageLeave,
		ManageAttendance,
		PrintReports,
	},
	RoleAdmin: {
		ManageUsers,
		ManageRoles,
		ManagePermissions,
		ManageEmployees,
		ManageAttendance,
		ManageSalary,
		ManageLeave,
		PrintReports,
	},
	RoleEmployee: {
		RecordAttendance,
		ViewSalary,
		RequestLeave,
	},
}

// SeedRoleNames lists the seeded roles in creation order.
func SeedRoleNames() []string {
	return []string{RoleOwner, RoleAdmin, RoleEmployee}
}

// SeedPermissions returns the seeder's permission set for a role name, or nil
// for any name the seeder does not know. Custom roles therefore get nothing,
// which is why the role console only uses it in legacy baseline mode.
func SeedPermissions(roleName string) []PermissionCode {
	perms, ok := seedRolePermissions[roleName]
	if !ok {
		return nil
	}
	return append([]PermissionCode(nil), perms...)
}
