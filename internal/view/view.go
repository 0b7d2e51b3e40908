// Package view renders the role console as plain text. Renderers take data
// and write it; they never call the backend or change state.
package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"sikseb/internal/catalog"
	"sikseb/internal/models"
)

// MaxDetailUsers is how many role holders the detail view lists by name.
const MaxDetailUsers = 5

const dateLayout = "02 Jan 2006"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// FilterRoles keeps roles whose name contains query, case-insensitively.
// An empty query keeps everything.
func FilterRoles(roles []models.Role, query string) []models.Role {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return roles
	}
	out := make([]models.Role, 0, len(roles))
	for _, r := range roles {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}

// Actions lists what the console offers for a role. Delete is never offered for system roles.
func Actions(r models.Role) []string {
	if r.IsSystemRole {
		return []string{"view", "edit"}
	}
	return []string{"view", "edit", "delete"}
}

// RenderList writes the role table.
func RenderList(w io.Writer, roles []models.Role, query, errMsg string) error {
	shown := FilterRoles(roles, query)

	fmt.Fprintf(w, "Manajemen Role (%d)\n", len(shown))
	if errMsg != "" {
		fmt.Fprintf(w, "! %s\n", errMsg)
	}
	if len(shown) == 0 {
		if query != "" {
			fmt.Fprintf(w, "Tidak ada role yang cocok dengan %q\n", query)
		} else {
			fmt.Fprintln(w, "Belum ada role")
		}
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAMA\tSTATUS\tUSERS\tPERMISSIONS\tDIBUAT\tAKSI")
	for _, r := range shown {
		name := r.Name
		if r.IsSystemRole {
			name += " (system)"
		}
		created := "-"
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Format(dateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, name, r.Status, r.UserCount, r.PermissionCount, created, strings.Join(Actions(r), ","))
	}
	return tw.Flush()
}

// GroupState labels a permission group's toggle for the given selection.
func GroupState(group []catalog.PermissionCode, selected []catalog.PermissionCode) string {
	switch {
	case catalog.IsGroupFullySelected(group, selected):
		return "Semua"
	case catalog.IsGroupPartiallySelected(group, selected):
		return "Sebagian"
	default:
		return "Pilih Semua"
	}
}

// Detail is what RenderDetail needs.
type Detail struct {
	Role  models.Role
	Draft []catalog.PermissionCode
	Dirty bool
	Users []models.RoleUser
	Error string
}

// RenderDetail writes a role with its holders and the permission checklist.
func RenderDetail(w io.Writer, d Detail) error {
	r := d.Role
	fmt.Fprintf(w, "Role: %s [%s]\n", r.Name, r.Status)
	if r.IsSystemRole {
		fmt.Fprintln(w, "System Role - Tidak dapat diubah")
	}
	if d.Error != "" {
		fmt.Fprintf(w, "! %s\n", d.Error)
	}

	fmt.Fprintf(w, "\nUsers (%d)\n", r.UserCount)
	fmt.Fprint(w, usersLine(d.Users))

	fmt.Fprintf(w, "\nPermissions (%d dipilih)\n", len(d.Draft))
	tw := newTable(w)
	for _, g := range catalog.Groups() {
		fmt.Fprintf(tw, "%s\t[%s]\n", g.Name, GroupState(g.Permissions, d.Draft))
		for _, p := range g.Permissions {
			mark := " "
			if contains(d.Draft, p) {
				mark = "x"
			}
			fmt.Fprintf(tw, "  [%s] %s\t\n", mark, p)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if d.Dirty {
		fmt.Fprintln(w, "\n* Ada perubahan yang belum disimpan")
	}
	return nil
}

// usersLine lists up to MaxDetailUsers holders, then "+N lainnya".
func usersLine(users []models.RoleUser) string {
	if len(users) == 0 {
		return "  Belum ada user dengan role ini\n"
	}
	var b strings.Builder
	n := len(users)
	if n > MaxDetailUsers {
		n = MaxDetailUsers
	}
	for _, u := range users[:n] {
		fmt.Fprintf(&b, "  - %s <%s>\n", u.Name, u.Email)
	}
	if rest := len(users) - n; rest > 0 {
		fmt.Fprintf(&b, "  +%d lainnya\n", rest)
	}
	return b.String()
}

// Form is the create/edit form contents.
type Form struct {
	Editing     bool
	Name        string
	Status      string
	Permissions []catalog.PermissionCode
	Error       string
}

// RenderForm writes the role form with per-group selection state.
func RenderForm(w io.Writer, f Form) error {
	title := "Tambah Role"
	if f.Editing {
		title = "Edit Role"
	}
	fmt.Fprintln(w, title)
	if f.Error != "" {
		fmt.Fprintf(w, "! %s\n", f.Error)
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "Nama\t%s\n", f.Name)
	fmt.Fprintf(tw, "Status\t%s\n", f.Status)
	for _, g := range catalog.Groups() {
		var picked []string
		for _, p := range g.Permissions {
			if contains(f.Permissions, p) {
				picked = append(picked, string(p))
			}
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\n", g.Name, GroupState(g.Permissions, f.Permissions), strings.Join(picked, ", "))
	}
	return tw.Flush()
}

// RenderDeleteModal writes the confirmation prompt for a role.
func RenderDeleteModal(w io.Writer, roleName string) {
	fmt.Fprintf(w, "Hapus role %q? Tindakan ini tidak dapat dibatalkan.\n", roleName)
}

// RenderAuthError writes an authentication failure with the retry hint.
func RenderAuthError(w io.Writer, msg string) {
	fmt.Fprintf(w, "! %s\n", msg)
	fmt.Fprintln(w, "  Coba lagi: roleadmin login")
}

func contains(set []catalog.PermissionCode, code catalog.PermissionCode) bool {
	for _, c := range set {
		if c == code {
			return true
		}
	}
	return false
}
