// Package catalog holds the fixed permission codes and their UI grouping.
package catalog

// PermissionCode is an atomic capability token.
type PermissionCode string

const (
	ManageUsers       PermissionCode = "mengelola users"
	ManageRoles       PermissionCode = "mengelola roles"
	ManagePermissions PermissionCode = "mengelola permissions"
	ManageEmployees   PermissionCode = "mengelola karyawan"
	ManageAttendance  PermissionCode = "mengelola absensi"
	RecordAttendance  PermissionCode = "melakukan absensi"
	ManageSalary      PermissionCode = "mengelola gaji"
	ViewSalary        PermissionCode = "melihat gaji"
	ManageLeave       PermissionCode = "mengelola cuti"
	RequestLeave      PermissionCode = "melakukan cuti"
	PrintReports      PermissionCode = "mencetak laporan"
)

var allPermissions = []PermissionCode{
	ManageUsers,
	ManageRoles,
	ManagePermissions,
	ManageEmployees,
	ManageAttendance,
	RecordAttendance,
	ManageSalary,
	ViewSalary,
	ManageLeave,
	RequestLeave,
	PrintReports,
}

// Group is a named, ordered set of codes used for toggle-by-group controls.
type Group struct {
	Name        string           `json:"name"`
	Permissions []PermissionCode `json:"permissions"`
}

var groups = []Group{
	{Name: "User Management", Permissions: []PermissionCode{ManageUsers, ManageRoles, ManagePermissions}},
	{Name: "Employee Management", Permissions: []PermissionCode{ManageEmployees}},
	{Name: "Attendance Management", Permissions: []PermissionCode{ManageAttendance, RecordAttendance}},
	{Name: "Salary Management", Permissions: []PermissionCode{ManageSalary, ViewSalary}},
	{Name: "Leave Management", Permissions: []PermissionCode{ManageLeave, RequestLeave}},
	{Name: "Report Management", Permissions: []PermissionCode{PrintReports}},
}

// AllPermissions returns every code in display order.
func AllPermissions() []PermissionCode {
	out := make([]PermissionCode, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// Groups returns the grouping in display order.
func Groups() []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Name: g.Name, Permissions: append([]PermissionCode(nil), g.Permissions...)}
	}
	return out
}

// GroupByName looks a group up by its display name.
func GroupByName(name string) (Group, bool) {
	for _, g := range groups {
		if g.Name == name {
			return Group{Name: g.Name, Permissions: append([]PermissionCode(nil), g.Permissions...)}, true
		}
	}
	return Group{}, false
}

// IsKnown reports whether code belongs to the enumeration.
func IsKnown(code PermissionCode) bool {
	for _, p := range allPermissions {
		if p == code {
			return true
		}
	}
	return false
}

func contains(set []PermissionCode, code PermissionCode) bool {
	for _, p := range set {
		if p == code {
			return true
		}
	}
	return false
}

// IsGroupFullySelected is true iff every code of group is in selected.
// An empty group is never fully selected.
func IsGroupFullySelected(group []PermissionCode, selected []PermissionCode) bool {
	if len(group) == 0 {
		return false
	}
	for _, p := range group {
		if !contains(selected, p) {
			return false
		}
	}
	return true
}

// IsGroupPartiallySelected is true iff some but not all codes of group are selected.
func IsGroupPartiallySelected(group []PermissionCode, selected []PermissionCode) bool {
	hit := false
	for _, p := range group {
		if contains(selected, p) {
			hit = true
			break
		}
	}
	return hit && !IsGroupFullySelected(group, selected)
}

// Toggle adds code when absent and removes it when present. The result is a new slice.
func Toggle(selected []PermissionCode, code PermissionCode) []PermissionCode {
	if contains(selected, code) {
		out := make([]PermissionCode, 0, len(selected))
		for _, p := range selected {
			if p != code {
				out = append(out, p)
			}
		}
		return out
	}
	return append(append([]PermissionCode(nil), selected...), code)
}

// ToggleGroup removes the whole group when it is fully selected, otherwise
// appends its missing codes in group order.
func ToggleGroup(selected []PermissionCode, group []PermissionCode) []PermissionCode {
	if IsGroupFullySelected(group, selected) {
		out := make([]PermissionCode, 0, len(selected))
		for _, p := range selected {
			if !contains(group, p) {
				out = append(out, p)
			}
		}
		return out
	}
	out := append([]PermissionCode(nil), selected...)
	for _, p := range group {
		if !contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// Normalize drops duplicates, keeping the first occurrence.
func Normalize(codes []PermissionCode) []PermissionCode {
	out := make([]PermissionCode, 0, len(codes))
	for _, p := range codes {
		if !contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// SameSet compares two code lists ignoring order and duplicates.
func SameSet(a, b []PermissionCode) bool {
	a, b = Normalize(a), Normalize(b)
	if len(a) != len(b) {
		return false
	}
	for _, p := range a {
		if !contains(b, p) {
			return false
		}
	}
	return true
}
