package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"sikseb/internal/apiclient"
	"sikseb/internal/catalog"
	"sikseb/internal/controller"
	"sikseb/internal/models"
	"sikseb/internal/services"
	"sikseb/internal/session"
	"sikseb/internal/view"
	apperrors "sikseb/pkg/errors"
	"sikseb/pkg/jwt"
)

// listFlag collects a repeatable flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// splitRoleArg separates a leading positional <role> from the flags after it.
func splitRoleArg(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

func splitCodes(s string) []catalog.PermissionCode {
	var out []catalog.PermissionCode
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, catalog.PermissionCode(p))
		}
	}
	return out
}

// resolve finds a role by id, then by name ignoring case.
func (a *app) resolve(arg string) (models.Role, error) {
	if r, ok := a.roles.Find(arg); ok {
		return r, nil
	}
	for _, r := range a.roles.Roles() {
		if strings.EqualFold(r.Name, arg) {
			return r, nil
		}
	}
	return models.Role{}, apperrors.Validation("", "Role tidak ditemukan: "+arg)
}

// authenticate auto-logs in when no token is stored.
func (a *app) authenticate(ctx context.Context) error {
	if a.session.IsAuthenticated(ctx) {
		return nil
	}
	_, err := a.session.AutoLogin(ctx)
	return err
}

// ========== session ==========

func (a *app) ping(ctx context.Context) error {
	res := a.client.Probe(ctx)
	if res.Status != apiclient.ProbeSuccess {
		return fmt.Errorf("[%s] %s", res.Status, res.Message)
	}
	fmt.Fprintf(a.out, "%s (%s)\n", res.Message, a.client.BaseURL())
	return nil
}

// catalogCheck compares the backend permission catalog with the built-in one.
func (a *app) catalogCheck(ctx context.Context) error {
	if err := a.authenticate(ctx); err != nil {
		return err
	}
	drift, err := a.perms.Drift(ctx)
	if err != nil {
		return err
	}
	if drift.Empty() {
		fmt.Fprintf(a.out, "Katalog permission sesuai (%d permission)\n", len(catalog.AllPermissions()))
		return nil
	}
	for _, p := range drift.BackendOnly {
		fmt.Fprintf(a.out, "+ %s (hanya di backend)\n", p)
	}
	for _, p := range drift.LocalOnly {
		fmt.Fprintf(a.out, "- %s (tidak ada di backend)\n", p)
	}
	return fmt.Errorf("katalog permission berbeda dengan backend")
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email; kosong berarti auto login")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		sess *sessionInfo
		err  error
	)
	if *email == "" {
		sess, err = a.wrapLogin(a.session.AutoLogin(ctx))
	} else {
		sess, err = a.wrapLogin(a.session.Login(ctx, models.LoginRequest{Email: *email, Password: *password}))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Login berhasil: %s <%s>\n", sess.name, sess.email)
	if sess.expires != "" {
		fmt.Fprintf(a.out, "Token berlaku sampai %s\n", sess.expires)
	}
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logout berhasil")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	token, ok := a.session.Token(ctx)
	if !ok {
		fmt.Fprintln(a.out, "Belum login")
		return nil
	}

	user, err := a.users.Me(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Nama\t%s\n", user.DisplayName())
	fmt.Fprintf(tw, "Email\t%s\n", user.Email)
	fmt.Fprintf(tw, "Role\t%s\n", strings.Join(user.Roles, ", "))
	fmt.Fprintf(tw, "Permission\t%d\n", len(user.Permissions))
	if claims, err := jwt.PeekClaims(token); err == nil && claims.ExpiresAt != nil {
		fmt.Fprintf(tw, "Token berlaku sampai\t%s\n", claims.ExpiresAt.Time.Local().Format(time.RFC1123))
	}
	return tw.Flush()
}

// ========== roles ==========

func (a *app) list(ctx context.Context, args []string) error {
	if err := a.console.Mount(ctx); err != nil {
		return err
	}
	defer a.console.Unmount()

	snap := a.console.Snapshot()
	return view.RenderList(a.out, snap.Roles, strings.Join(args, " "), snap.State.Error)
}

func (a *app) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return apperrors.Validation("", "Gunakan: roleadmin show <role>")
	}
	if err := a.console.Mount(ctx); err != nil {
		return err
	}
	defer a.console.Unmount()

	role, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	if err := a.console.View(ctx, role.ID); err != nil {
		fmt.Fprintf(a.errOut, "! %s\n", err)
	}
	return a.renderDetail()
}

func (a *app) usersOf(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return apperrors.Validation("", "Gunakan: roleadmin users-of <role>")
	}
	if err := a.console.Mount(ctx); err != nil {
		return err
	}
	defer a.console.Unmount()

	role, err := a.resolve(args[0])
	if err != nil {
		return err
	}
	if err := a.console.View(ctx, role.ID); err != nil {
		return err
	}

	snap := a.console.Snapshot()
	fmt.Fprintf(a.out, "User dengan role %s (%d)\n", role.Name, len(snap.Users))
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAMA\tEMAIL")
	for _, u := range snap.Users {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Name, u.Email)
	}
	return tw.Flush()
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := a.flags("create")
	name := fs.String("name", "", "nama role")
	status := fs.String("status", models.RoleStatusActive, "Aktif atau Tidak Aktif")
	perms := fs.String("perms", "", "permission dipisah koma")
	var groups listFlag
	fs.Var(&groups, "group", "pilih seluruh grup permission (boleh berulang)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	selected := splitCodes(*perms)
	for _, groupName := range groups {
		g, ok := catalog.GroupByName(groupName)
		if !ok {
			return apperrors.Validation("permissions", "Grup permission tidak dikenal: "+groupName)
		}
		if !catalog.IsGroupFullySelected(g.Permissions, selected) {
			selected = catalog.ToggleGroup(selected, g.Permissions)
		}
	}

	if err := a.console.Mount(ctx); err != nil {
		return err
	}
	defer a.console.Unmount()

	a.console.CreateNew()
	form := controller.FormData{Name: *name, Status: *status, Permissions: selected}
	if err := a.console.SaveForm(ctx, form); err != nil {
		_ = view.RenderForm(a.out, view.Form{Name: form.Name, Status: form.Status, Permissions: form.Permissions})
		return err
	}

	fmt.Fprintf(a.out, "Role %q berhasil dibuat\n", strings.TrimSpace(*name))
	return view.RenderList(a.out, a.console.Snapshot().Roles, strings.TrimSpace(*name), "")
}

func (a *app) update(ctx context.Context, args []string) error {
	ref, rest := splitRoleArg(args)
	if ref == "" {
		return apperrors.Validation("", "Gunakan: roleadmin update <role> [-name N] [-status S] [-perms a,b]")
	}

	fs := a.flags("update")
	name := fs.String("name", "", "nama baru")
	status := fs.String("status", "", "status baru")
	perms := fs.String("perms", "", "permission baru dipisah koma")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	if err := a.console.Mount(ctx); err != nil {
		return err
	}
	defer a.console.Unmount()

	role, err := a.resolve(ref)
	if err != nil {
		return err
	}

	form := controller.FormData{Name: role.Name, Status: role.Status, Permissions: role.Permissions}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			form.Name = *name
		case "status":
			form.Status = *status
		case "perms":
			form.Permissions = splitCodes(*perms)
		}
	})

	if err := a.console.Edit(role.ID); err != nil {
		return err
	}
	if err := a.console.SaveForm(ctx, form); err != nil {
		_ = view.RenderForm(a.out, view.Form{Editing: true, Name: form.Name, Status: form.Status, Permissions: form.Permissions})
		return err
	}

	fmt.Fprintf(a.out, "Role %q berhasil diperbarui\n", form.Name)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	ref, rest := splitRoleArg(args)
	if ref == "" {
		return apperrors.Validation("", "Gunakan: roleadmin delete <role> [-yes]")
	}
	fs := a.flags("delete")
	yes := fs.Bool("yes", false, "hapus tanpa konfirmasi")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	if err := a.console.Mount(ctx); err != nil {
		return err
	}
	defer a.console.Unmount()

	role, err := a.resolve(ref)
	if err != nil {
		return err
	}
	if err := a.console.RequestDelete(role.ID); err != nil {
		return err
	}
	view.RenderDeleteModal(a.out, a.console.Snapshot().State.Modal.RoleName)

	if !*yes && !a.confirm() {
		a.console.CancelDelete()
		fmt.Fprintln(a.out, "Dibatalkan")
		return nil
	}

	if err := a.console.ConfirmDelete(ctx); err != nil {
		if a.console.Snapshot().State.Modal.Open {
			fmt.Fprintln(a.errOut, "Role belum dihapus; silakan coba lagi.")
		}
		return err
	}
	fmt.Fprintf(a.out, "Role %q berhasil dihapus\n", role.Name)
	return nil
}

func (a *app) confirm() bool {
	fmt.Fprint(a.out, "Ketik 'ya' untuk melanjutkan: ")
	sc := bufio.NewScanner(a.in)
	if !sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "ya" || answer == "y"
}

// ========== permissions ==========

func (a *app) editPerms(ctx context.Context, args []string) error {
	ref, rest := splitRoleArg(args)
	if ref == "" {
		a.printCatalog()
		return nil
	}

	fs := a.flags("perms")
	var toggles, groups listFlag
	fs.Var(&toggles, "toggle", "ubah satu permission (boleh berulang)")
	fs.Var(&groups, "group", "ubah satu grup permission (boleh berulang)")
	set := fs.String("set", "", "ganti seluruh permission, dipisah koma")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	if err := a.console.Mount(ctx); err != nil {
		return err
	}
	defer a.console.Unmount()

	role, err := a.resolve(ref)
	if err != nil {
		return err
	}
	if err := a.console.View(ctx, role.ID); err != nil {
		fmt.Fprintf(a.errOut, "! %s\n", err)
	}

	for _, code := range toggles {
		if err := a.console.TogglePermission(catalog.PermissionCode(code)); err != nil {
			return err
		}
	}
	for _, name := range groups {
		if err := a.console.ToggleGroup(name); err != nil {
			return err
		}
	}
	if *set != "" {
		if err := a.setDraft(splitCodes(*set)); err != nil {
			return err
		}
	}

	if a.console.Snapshot().State.Dirty {
		if err := a.console.SavePermissions(ctx); err != nil {
			_ = a.renderDetail()
			return err
		}
		fmt.Fprintln(a.out, "Permission berhasil disimpan")
	}
	return a.renderDetail()
}

// setDraft toggles codes until the draft equals target.
func (a *app) setDraft(target []catalog.PermissionCode) error {
	draft := a.console.Snapshot().State.Draft
	for _, p := range draft {
		if !containsCode(target, p) {
			if err := a.console.TogglePermission(p); err != nil {
				return err
			}
		}
	}
	for _, p := range catalog.Normalize(target) {
		if !containsCode(draft, p) {
			if err := a.console.TogglePermission(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *app) printCatalog() {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, g := range catalog.Groups() {
		fmt.Fprintf(tw, "%s\t\n", g.Name)
		for _, p := range g.Permissions {
			fmt.Fprintf(tw, "  %s\t\n", p)
		}
	}
	_ = tw.Flush()
}

func (a *app) renderDetail() error {
	snap := a.console.Snapshot()
	if snap.Selected == nil {
		return apperrors.Validation("", "Role tidak lagi tersedia")
	}
	return view.RenderDetail(a.out, view.Detail{
		Role:  *snap.Selected,
		Draft: snap.State.Draft,
		Dirty: snap.State.Dirty,
		Users: snap.Users,
		Error: snap.State.Error,
	})
}

// ========== users ==========

func (a *app) listUsers(ctx context.Context, args []string) error {
	fs := a.flags("users")
	page := fs.Int("page", 1, "halaman")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.authenticate(ctx); err != nil {
		return err
	}

	users, meta, err := a.users.List(ctx, *page)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAMA\tEMAIL\tSTATUS\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.DisplayName(), u.Email, u.Status, strings.Join(u.Roles, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Halaman %d dari %d (total %d)\n", meta.CurrentPage, meta.LastPage, meta.Total)
	return nil
}

// ========== watch ==========

func (a *app) watch(ctx context.Context, args []string) error {
	fs := a.flags("watch")
	spec := fs.String("cron", a.cfg.Console.RefreshCron, "jadwal refresh (cron atau @every)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *spec == "" {
		*spec = "@every 30s"
	}

	if err := a.console.Mount(ctx); err != nil {
		return err
	}
	defer a.console.Unmount()
	if err := view.RenderList(a.out, a.console.Snapshot().Roles, "", ""); err != nil {
		return err
	}

	scheduler, err := services.NewRefreshScheduler(a.roles, *spec, a.cfg.API.Timeout, func(roles []models.Role, err error) {
		if apperrors.KindOf(err) == apperrors.KindAuthentication {
			if retryErr := a.console.RetryAuth(ctx); retryErr == nil {
				err = nil
				roles = a.roles.Roles()
			}
		}
		msg := ""
		if err != nil {
			msg = err.Error()
			roles = a.roles.Roles()
		}
		fmt.Fprintf(a.out, "\n[%s]\n", time.Now().Format("15:04:05"))
		_ = view.RenderList(a.out, roles, "", msg)
	})
	if err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	fmt.Fprintf(a.errOut, "Refresh berikutnya %s; Ctrl+C untuk berhenti\n", scheduler.NextRun().Format("15:04:05"))
	<-ctx.Done()
	return nil
}

// ========== helpers ==========

type sessionInfo struct {
	name    string
	email   string
	expires string
}

func (a *app) wrapLogin(sess *session.Session, err error) (*sessionInfo, error) {
	if err != nil {
		return nil, err
	}
	info := &sessionInfo{}
	if sess.User != nil {
		info.name = sess.User.DisplayName()
		info.email = sess.User.Email
	}
	if sess.ExpiresAt != nil {
		info.expires = sess.ExpiresAt.Local().Format(time.RFC1123)
	}
	return info, nil
}

func containsCode(set []catalog.PermissionCode, code catalog.PermissionCode) bool {
	for _, c := range set {
		if c == code {
			return true
		}
	}
	return false
}
