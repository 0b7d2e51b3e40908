package controller

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"sikseb/internal/catalog"
	"sikseb/internal/models"
	"sikseb/internal/session"
	apperrors "sikseb/pkg/errors"
	"sikseb/pkg/logger"
)

/* ========== fakes ========== */

type fakeSession struct {
	authed    bool
	autoErr   error
	autoCalls int
}

func (f *fakeSession) IsAuthenticated(context.Context) bool { return f.authed }

func (f *fakeSession) AutoLogin(context.Context) (*session.Session, error) {
	f.autoCalls++
	if f.autoErr != nil {
		return nil, f.autoErr
	}
	f.authed = true
	return &session.Session{Token: "token"}, nil
}

type fakeRoles struct {
	roles []models.Role

	listErr   error
	createErr error
	updateErr error
	deleteErr error
	permsErr  error

	listCalls   int
	createCalls int
	updates     []models.UpdateRoleData
	deleted     []string
	permCalls   [][]catalog.PermissionCode

	// beforeReturn runs inside a backend call, before its result is applied
	beforeReturn func()
}

func (f *fakeRoles) hook() {
	if f.beforeReturn != nil {
		f.beforeReturn()
	}
}

func (f *fakeRoles) List(context.Context) ([]models.Role, error) {
	f.listCalls++
	f.hook()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Roles(), nil
}

func (f *fakeRoles) Create(_ context.Context, data models.CreateRoleData) (models.Role, error) {
	f.createCalls++
	f.hook()
	if f.createErr != nil {
		return models.Role{}, f.createErr
	}
	r := models.Role{ID: "new", Name: data.Name, Status: data.Status, Permissions: data.Permissions}
	f.roles = append(f.roles, r)
	return r, nil
}

func (f *fakeRoles) Update(_ context.Context, id string, data models.UpdateRoleData) (models.Role, error) {
	f.updates = append(f.updates, data)
	f.hook()
	if f.updateErr != nil {
		return models.Role{}, f.updateErr
	}
	for i := range f.roles {
		if f.roles[i].ID == id {
			if data.Name != nil {
				f.roles[i].Name = *data.Name
			}
			if data.Status != nil {
				f.roles[i].Status = *data.Status
			}
			if data.Permissions != nil {
				f.roles[i].Permissions = data.Permissions
			}
			return f.roles[i], nil
		}
	}
	return models.Role{}, apperrors.Server(404, "Role tidak ditemukan")
}

func (f *fakeRoles) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	f.hook()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.roles {
		if f.roles[i].ID == id {
			f.roles = append(f.roles[:i:i], f.roles[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRoles) UpdatePermissions(_ context.Context, id string, perms []catalog.PermissionCode) (models.Role, error) {
	f.permCalls = append(f.permCalls, perms)
	f.hook()
	if f.permsErr != nil {
		return models.Role{}, f.permsErr
	}
	for i := range f.roles {
		if f.roles[i].ID == id {
			f.roles[i].Permissions = append([]catalog.PermissionCode(nil), perms...)
			return f.roles[i], nil
		}
	}
	return models.Role{}, apperrors.Server(404, "Role tidak ditemukan")
}

func (f *fakeRoles) Roles() []models.Role {
	out := make([]models.Role, len(f.roles))
	for i, r := range f.roles {
		out[i] = r.Clone()
	}
	return out
}

func (f *fakeRoles) Find(id string) (models.Role, bool) {
	for _, r := range f.roles {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return models.Role{}, false
}

type fakeUsers struct {
	byRole  map[string][]models.RoleUser
	err     error
	roleID  string
	current []models.RoleUser
	fetched []string
}

func (f *fakeUsers) FetchUsers(_ context.Context, roleID string) ([]models.RoleUser, error) {
	f.fetched = append(f.fetched, roleID)
	f.roleID = roleID
	if f.err != nil {
		f.current = nil
		return nil, f.err
	}
	f.current = f.byRole[roleID]
	return f.current, nil
}

func (f *fakeUsers) Users() (string, []models.RoleUser) { return f.roleID, f.current }

func (f *fakeUsers) Reset() {
	f.roleID = ""
	f.current = nil
}

/* ========== fixtures ========== */

func seedRoles() []models.Role {
	created := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return []models.Role{
		{ID: "r1", Name: "Admin", Status: "Aktif", IsSystemRole: true, UserCount: 1, CreatedAt: created,
			Permissions: catalog.SeedPermissions(catalog.RoleAdmin)},
		{ID: "r2", Name: "Finance", Status: "Aktif", UserCount: 2, CreatedAt: created,
			Permissions: []catalog.PermissionCode{catalog.ManageSalary}},
		{ID: "r3", Name: "Magang", Status: "Tidak Aktif", CreatedAt: created,
			Permissions: []catalog.PermissionCode{catalog.RecordAttendance}},
	}
}

type fixture struct {
	sess  *fakeSession
	roles *fakeRoles
	users *fakeUsers
	ctl   *Controller
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		sess:  &fakeSession{authed: true},
		roles: &fakeRoles{roles: seedRoles()},
		users: &fakeUsers{byRole: map[string][]models.RoleUser{
			"r2": {{ID: "u1", Name: "Budi", Email: "budi@example.com"}, {ID: "u2", Name: "Siti", Email: "siti@example.com"}},
		}},
	}
	opts.Logger = logger.Discard()
	f.ctl = New(f.sess, f.roles, f.users, opts)
	return f
}

func (f *fixture) mount(t *testing.T) {
	t.Helper()
	if err := f.ctl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
}

/* ========== tests ========== */

func TestMountAutoLoginsOnce(t *testing.T) {
	f := newFixture(t, Options{})
	f.sess.authed = false

	f.mount(t)

	if f.sess.autoCalls != 1 {
		t.Errorf("auto login calls = %d, want 1", f.sess.autoCalls)
	}
	if f.roles.listCalls != 1 {
		t.Errorf("list calls = %d, want 1", f.roles.listCalls)
	}
	snap := f.ctl.Snapshot()
	if snap.State.Mode != ModeList || len(snap.Roles) != 3 || !snap.Mounted {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestMountAuthFailureAndRetry(t *testing.T) {
	f := newFixture(t, Options{})
	f.sess.authed = false
	f.sess.autoErr = apperrors.Authentication("Email atau password salah", nil)

	err := f.ctl.Mount(context.Background())
	if !errors.Is(err, apperrors.ErrAuthentication) {
		t.Fatalf("Mount error = %v, want authentication error", err)
	}
	if f.roles.listCalls != 0 {
		t.Error("roles must not load without a session")
	}
	if f.ctl.Snapshot().AuthError == "" {
		t.Error("auth error must be exposed for the retry prompt")
	}

	f.sess.autoErr = nil
	if err := f.ctl.RetryAuth(context.Background()); err != nil {
		t.Fatalf("RetryAuth: %v", err)
	}
	if f.ctl.Snapshot().AuthError != "" {
		t.Error("successful retry must clear the auth error")
	}
	if f.roles.listCalls != 1 {
		t.Errorf("retry must reload roles, list calls = %d", f.roles.listCalls)
	}
}

func TestMountListFailureSurfaces(t *testing.T) {
	f := newFixture(t, Options{})
	f.roles.listErr = apperrors.BackendUnavailable("http://localhost:8000", errors.New("dial tcp: refused"))

	if err := f.ctl.Mount(context.Background()); !errors.Is(err, apperrors.ErrBackendUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if f.ctl.Snapshot().State.Error == "" {
		t.Error("list failure must be rendered inline")
	}
}

func TestViewUsesRolePermissionsAndFetchesUsers(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)

	if err := f.ctl.View(context.Background(), "r2"); err != nil {
		t.Fatalf("View: %v", err)
	}

	snap := f.ctl.Snapshot()
	if snap.State.Mode != ModeDetail || snap.Selected == nil || snap.Selected.ID != "r2" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if !reflect.DeepEqual(snap.State.Draft, []catalog.PermissionCode{catalog.ManageSalary}) {
		t.Errorf("draft = %v", snap.State.Draft)
	}
	if len(snap.Users) != 2 {
		t.Errorf("users = %v", snap.Users)
	}
	if !reflect.DeepEqual(f.users.fetched, []string{"r2"}) {
		t.Errorf("fetched = %v", f.users.fetched)
	}
}

func TestViewLegacyNameBaseline(t *testing.T) {
	f := newFixture(t, Options{LegacyNameBaseline: true})
	f.mount(t)

	if err := f.ctl.View(context.Background(), "r1"); err != nil {
		t.Fatal(err)
	}
	if !catalog.SameSet(f.ctl.Snapshot().State.Draft, catalog.SeedPermissions(catalog.RoleAdmin)) {
		t.Error("seed role must get the seed baseline")
	}

	f.ctl.Back()
	if err := f.ctl.View(context.Background(), "r2"); err != nil {
		t.Fatal(err)
	}
	if len(f.ctl.Snapshot().State.Draft) != 0 {
		t.Error("a custom role has no seed baseline in legacy mode")
	}
}

func TestViewUnknownRole(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)

	if err := f.ctl.View(context.Background(), "nope"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
	if f.ctl.Snapshot().State.Mode != ModeList {
		t.Error("must stay in list")
	}
}

func TestUsersOfAnotherRoleAreHidden(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	if err := f.ctl.View(context.Background(), "r3"); err != nil {
		t.Fatal(err)
	}

	// a stale fetch for another role lands after the selection changed
	f.users.roleID = "r2"
	f.users.current = f.users.byRole["r2"]

	if users := f.ctl.Snapshot().Users; users != nil {
		t.Errorf("users of r2 shown under r3: %v", users)
	}
}

func TestSavePermissions(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	ctx := context.Background()

	if err := f.ctl.View(ctx, "r2"); err != nil {
		t.Fatal(err)
	}
	if err := f.ctl.TogglePermission(catalog.ViewSalary); err != nil {
		t.Fatal(err)
	}
	if err := f.ctl.ToggleGroup("Leave Management"); err != nil {
		t.Fatal(err)
	}
	if !f.ctl.Snapshot().State.Dirty {
		t.Fatal("toggles must mark the draft dirty")
	}

	t.Run("failure keeps the draft dirty", func(t *testing.T) {
		f.roles.permsErr = apperrors.Server(500, "")
		err := f.ctl.SavePermissions(ctx)
		if !errors.Is(err, apperrors.ErrServer) {
			t.Fatalf("err = %v", err)
		}
		snap := f.ctl.Snapshot()
		if !snap.State.Dirty || snap.State.Error != "Terjadi kesalahan pada server (500)" {
			t.Errorf("state = %+v", snap.State)
		}
		f.roles.permsErr = nil
	})

	t.Run("success clears dirty", func(t *testing.T) {
		if err := f.ctl.SavePermissions(ctx); err != nil {
			t.Fatal(err)
		}
		snap := f.ctl.Snapshot()
		if snap.State.Dirty || snap.State.Error != "" {
			t.Errorf("state = %+v", snap.State)
		}
		want := []catalog.PermissionCode{catalog.ManageSalary, catalog.ViewSalary, catalog.ManageLeave, catalog.RequestLeave}
		if !reflect.DeepEqual(snap.Selected.Permissions, want) {
			t.Errorf("stored permissions = %v", snap.Selected.Permissions)
		}
	})
}

func TestSystemRoleIsReadOnly(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	ctx := context.Background()

	if err := f.ctl.View(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	if err := f.ctl.TogglePermission(catalog.ViewSalary); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("toggle on system role: err = %v", err)
	}
	if err := f.ctl.ToggleGroup("Salary Management"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("group toggle on system role: err = %v", err)
	}
	if err := f.ctl.SavePermissions(ctx); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("save on system role: err = %v", err)
	}
	if len(f.roles.permCalls) != 0 {
		t.Error("no permission update may be sent for a system role")
	}

	f.ctl.Back()
	if err := f.ctl.RequestDelete("r1"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("delete on system role: err = %v", err)
	}
	if f.ctl.Snapshot().State.Modal.Open {
		t.Error("modal must not open for a system role")
	}
}

func TestEditSystemRoleKeepsPermissions(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	ctx := context.Background()
	admin, _ := f.roles.Find("r1")

	if err := f.ctl.Edit("r1"); err != nil {
		t.Fatal(err)
	}
	err := f.ctl.SaveForm(ctx, FormData{Name: "Admin", Status: "Aktif", Permissions: []catalog.PermissionCode{catalog.ViewSalary}})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("changing a system role's permissions: err = %v", err)
	}
	if len(f.roles.updates) != 0 {
		t.Fatal("nothing may be sent")
	}

	if err := f.ctl.SaveForm(ctx, FormData{Name: "Administrator", Status: "Aktif", Permissions: admin.Permissions}); err != nil {
		t.Fatal(err)
	}
	if got := f.roles.updates[0]; got.Permissions != nil || *got.Name != "Administrator" {
		t.Errorf("update = %+v", got)
	}
}

func TestSaveFormCreate(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	ctx := context.Background()

	f.ctl.CreateNew()
	f.roles.createErr = apperrors.Server(422, "Nama role sudah digunakan")
	err := f.ctl.SaveForm(ctx, FormData{Name: "Finance", Status: "Aktif", Permissions: []catalog.PermissionCode{catalog.ManageSalary}})
	if err == nil {
		t.Fatal("expected error")
	}
	snap := f.ctl.Snapshot()
	if snap.State.Mode != ModeCreate || snap.State.Error != "Nama role sudah digunakan" {
		t.Fatalf("failure must keep the form open with the backend message: %+v", snap.State)
	}

	f.roles.createErr = nil
	if err := f.ctl.SaveForm(ctx, FormData{Name: "Payroll", Status: "Aktif", Permissions: []catalog.PermissionCode{catalog.ManageSalary}}); err != nil {
		t.Fatal(err)
	}
	snap = f.ctl.Snapshot()
	if snap.State.Mode != ModeList || snap.State.Error != "" {
		t.Errorf("success must return to list: %+v", snap.State)
	}
	if len(snap.Roles) != 4 || snap.Roles[3].Name != "Payroll" {
		t.Errorf("roles = %+v", snap.Roles)
	}
}

func TestSaveFormUpdate(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)

	if err := f.ctl.Edit("r3"); err != nil {
		t.Fatal(err)
	}
	err := f.ctl.SaveForm(context.Background(), FormData{
		Name:        "Magang Senior",
		Status:      "Aktif",
		Permissions: []catalog.PermissionCode{catalog.RecordAttendance, catalog.RequestLeave},
	})
	if err != nil {
		t.Fatal(err)
	}
	r, _ := f.roles.Find("r3")
	if r.Name != "Magang Senior" || r.Status != "Aktif" || len(r.Permissions) != 2 {
		t.Errorf("role = %+v", r)
	}
	if f.ctl.Snapshot().State.Mode != ModeList {
		t.Error("must return to list")
	}
}

func TestMutationGatedByAutoLogin(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	ctx := context.Background()

	// token cleared by a 401 somewhere else
	f.sess.authed = false
	f.sess.autoErr = apperrors.BackendUnavailable("http://localhost:8000", errors.New("refused"))

	f.ctl.CreateNew()
	err := f.ctl.SaveForm(ctx, FormData{Name: "Payroll", Status: "Aktif", Permissions: []catalog.PermissionCode{catalog.ManageSalary}})
	if !errors.Is(err, apperrors.ErrAuthentication) {
		t.Fatalf("err = %v, want authentication error", err)
	}
	if f.roles.createCalls != 0 {
		t.Error("request must not be sent without a session")
	}
	if f.sess.autoCalls != 1 {
		t.Errorf("auto login attempts = %d, want exactly 1", f.sess.autoCalls)
	}
	snap := f.ctl.Snapshot()
	if snap.State.Mode != ModeCreate || snap.State.Error == "" || snap.AuthError == "" {
		t.Errorf("snapshot = %+v", snap)
	}

	f.sess.autoErr = nil
	if err := f.ctl.SaveForm(ctx, FormData{Name: "Payroll", Status: "Aktif", Permissions: []catalog.PermissionCode{catalog.ManageSalary}}); err != nil {
		t.Fatalf("after auto login: %v", err)
	}
	if f.roles.createCalls != 1 {
		t.Error("request must go out once a session exists")
	}
}

func TestDeleteKeepOpenPolicy(t *testing.T) {
	f := newFixture(t, Options{DeletePolicy: DeleteKeepOpenOnFailure})
	f.mount(t)
	ctx := context.Background()

	if err := f.ctl.RequestDelete("r3"); err != nil {
		t.Fatal(err)
	}
	if m := f.ctl.Snapshot().State.Modal; !m.Open || m.RoleName != "Magang" {
		t.Fatalf("modal = %+v", m)
	}

	f.roles.deleteErr = apperrors.Server(500, "")
	if err := f.ctl.ConfirmDelete(ctx); err == nil {
		t.Fatal("expected error")
	}
	snap := f.ctl.Snapshot()
	if !snap.State.Modal.Open || snap.State.Error == "" {
		t.Errorf("failed delete must keep the modal open with the error: %+v", snap.State)
	}
	if len(snap.Roles) != 3 {
		t.Error("collection must be unchanged")
	}

	f.roles.deleteErr = nil
	if err := f.ctl.ConfirmDelete(ctx); err != nil {
		t.Fatal(err)
	}
	snap = f.ctl.Snapshot()
	if snap.State.Modal.Open || snap.State.SelectedID != "" || snap.State.Error != "" {
		t.Errorf("state = %+v", snap.State)
	}
	if len(snap.Roles) != 2 || snap.Roles[0].ID != "r1" || snap.Roles[1].ID != "r2" {
		t.Errorf("roles = %+v", snap.Roles)
	}
}

func TestDeleteOptimisticPolicy(t *testing.T) {
	f := newFixture(t, Options{DeletePolicy: DeleteCloseOptimistic})
	f.mount(t)

	if err := f.ctl.RequestDelete("r2"); err != nil {
		t.Fatal(err)
	}
	f.roles.deleteErr = apperrors.Server(409, "Role masih digunakan")
	if err := f.ctl.ConfirmDelete(context.Background()); err == nil {
		t.Fatal("the error must still be returned")
	}
	snap := f.ctl.Snapshot()
	if snap.State.Modal.Open || snap.State.SelectedID != "" {
		t.Errorf("modal must close: %+v", snap.State)
	}
	if snap.State.Error != "Role masih digunakan" {
		t.Errorf("error = %q", snap.State.Error)
	}
}

func TestCancelDelete(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)

	if err := f.ctl.RequestDelete("r2"); err != nil {
		t.Fatal(err)
	}
	f.ctl.CancelDelete()
	if err := f.ctl.ConfirmDelete(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(f.roles.deleted) != 0 {
		t.Error("confirm after cancel must not delete")
	}
}

func TestLateResponseAfterUnmountIsDropped(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	ctx := context.Background()

	if err := f.ctl.View(ctx, "r2"); err != nil {
		t.Fatal(err)
	}
	if err := f.ctl.TogglePermission(catalog.ViewSalary); err != nil {
		t.Fatal(err)
	}

	f.roles.beforeReturn = f.ctl.Unmount
	if err := f.ctl.SavePermissions(ctx); err != nil {
		t.Fatalf("the call itself succeeds: %v", err)
	}

	snap := f.ctl.Snapshot()
	if snap.Mounted {
		t.Fatal("controller should be unmounted")
	}
	if !snap.State.Dirty {
		t.Error("a response arriving after unmount must not touch the view state")
	}

	// further input on an unmounted console is ignored
	f.ctl.Back()
	if f.ctl.Snapshot().State.Mode != ModeDetail {
		t.Error("unmounted controller changed mode")
	}
}

func TestRemountIgnoresPreviousGeneration(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	ctx := context.Background()

	f.ctl.CreateNew()
	f.roles.beforeReturn = func() {
		f.roles.beforeReturn = nil
		f.ctl.Unmount()
		f.mount(t)
	}
	if err := f.ctl.SaveForm(ctx, FormData{Name: "Payroll", Status: "Aktif", Permissions: []catalog.PermissionCode{catalog.ManageSalary}}); err != nil {
		t.Fatal(err)
	}
	if f.ctl.Snapshot().State.Mode != ModeList || f.ctl.Snapshot().State.Error != "" {
		t.Errorf("state = %+v", f.ctl.Snapshot().State)
	}
}

func TestSnapshotResolvesSelectionById(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	if err := f.ctl.View(context.Background(), "r2"); err != nil {
		t.Fatal(err)
	}

	f.roles.roles[1].Name = "Finance & Pajak"
	if got := f.ctl.Snapshot().Selected.Name; got != "Finance & Pajak" {
		t.Errorf("selected name = %q; the selection must follow the collection", got)
	}

	f.roles.roles = f.roles.roles[:1]
	if f.ctl.Snapshot().Selected != nil {
		t.Error("a vanished role must not stay selected")
	}
}

func TestSaveResultDoesNotLeakIntoAnotherRole(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	ctx := context.Background()

	if err := f.ctl.View(ctx, "r2"); err != nil {
		t.Fatal(err)
	}
	if err := f.ctl.TogglePermission(catalog.ViewSalary); err != nil {
		t.Fatal(err)
	}

	// the user moves on to r3 while the save for r2 is in flight
	f.roles.beforeReturn = func() {
		f.roles.beforeReturn = nil
		f.ctl.Back()
		if err := f.ctl.View(ctx, "r3"); err != nil {
			t.Fatal(err)
		}
		if err := f.ctl.TogglePermission(catalog.PrintReports); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.ctl.SavePermissions(ctx); err != nil {
		t.Fatal(err)
	}

	snap := f.ctl.Snapshot()
	want := []catalog.PermissionCode{catalog.RecordAttendance, catalog.PrintReports}
	if snap.State.SelectedID != "r3" || !reflect.DeepEqual(snap.State.Draft, want) || !snap.State.Dirty {
		t.Errorf("r3 view = %+v, want draft %v still dirty", snap.State, want)
	}
	r2, _ := f.roles.Find("r2")
	if !reflect.DeepEqual(r2.Permissions, []catalog.PermissionCode{catalog.ManageSalary, catalog.ViewSalary}) {
		t.Errorf("r2 permissions = %v", r2.Permissions)
	}
}

func TestSaveFailureDoesNotLeakIntoAnotherRole(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	ctx := context.Background()

	if err := f.ctl.View(ctx, "r2"); err != nil {
		t.Fatal(err)
	}
	if err := f.ctl.TogglePermission(catalog.ViewSalary); err != nil {
		t.Fatal(err)
	}

	f.roles.permsErr = apperrors.Server(500, "")
	f.roles.beforeReturn = func() {
		f.roles.beforeReturn = nil
		f.ctl.Back()
		if err := f.ctl.View(ctx, "r3"); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.ctl.SavePermissions(ctx); err == nil {
		t.Fatal("the caller still gets the error")
	}
	if st := f.ctl.Snapshot().State; st.SelectedID != "r3" || st.Error != "" || st.Dirty {
		t.Errorf("r3 view = %+v", st)
	}
}

func TestFormResultDroppedAfterLeavingForm(t *testing.T) {
	payroll := FormData{Name: "Payroll", Status: "Aktif", Permissions: []catalog.PermissionCode{catalog.ManageSalary}}

	t.Run("saved create does not close a new form", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.mount(t)
		f.ctl.CreateNew()
		f.roles.beforeReturn = func() {
			f.roles.beforeReturn = nil
			f.ctl.Back()
			f.ctl.CreateNew()
		}
		if err := f.ctl.SaveForm(context.Background(), payroll); err != nil {
			t.Fatal(err)
		}
		if st := f.ctl.Snapshot().State; st.Mode != ModeCreate {
			t.Errorf("state = %+v, the second form must stay open", st)
		}
	})

	t.Run("failed update does not mark another form", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.mount(t)
		if err := f.ctl.Edit("r2"); err != nil {
			t.Fatal(err)
		}
		f.roles.updateErr = apperrors.Server(422, "Nama role sudah digunakan")
		f.roles.beforeReturn = func() {
			f.roles.beforeReturn = nil
			f.ctl.Back()
			if err := f.ctl.Edit("r3"); err != nil {
				t.Fatal(err)
			}
		}
		if err := f.ctl.SaveForm(context.Background(), payroll); err == nil {
			t.Fatal("expected error")
		}
		if st := f.ctl.Snapshot().State; st.Mode != ModeEdit || st.SelectedID != "r3" || st.Error != "" {
			t.Errorf("state = %+v", st)
		}
	})
}

func TestViewOutsideListKeepsCurrentUsers(t *testing.T) {
	f := newFixture(t, Options{})
	f.mount(t)
	ctx := context.Background()

	if err := f.ctl.View(ctx, "r2"); err != nil {
		t.Fatal(err)
	}
	if err := f.ctl.View(ctx, "r3"); err != nil {
		t.Fatal(err)
	}

	snap := f.ctl.Snapshot()
	if snap.State.SelectedID != "r2" || len(snap.Users) != 2 {
		t.Errorf("ignored view wiped the open detail: selected %s, users %v", snap.State.SelectedID, snap.Users)
	}
	if !reflect.DeepEqual(f.users.fetched, []string{"r2"}) {
		t.Errorf("fetched = %v", f.users.fetched)
	}
}

func TestViewUsersNeedSession(t *testing.T) {
	t.Run("auto login then fetch", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.mount(t)
		f.sess.authed = false

		if err := f.ctl.View(context.Background(), "r2"); err != nil {
			t.Fatal(err)
		}
		if f.sess.autoCalls != 1 || !reflect.DeepEqual(f.users.fetched, []string{"r2"}) {
			t.Errorf("auto login calls %d, fetched %v", f.sess.autoCalls, f.users.fetched)
		}
	})

	t.Run("auto login failure is reported", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.mount(t)
		f.sess.authed = false
		f.sess.autoErr = apperrors.Authentication("Email atau password salah", nil)

		err := f.ctl.View(context.Background(), "r2")
		if !errors.Is(err, apperrors.ErrAuthentication) {
			t.Fatalf("err = %v", err)
		}
		snap := f.ctl.Snapshot()
		if snap.State.Mode != ModeDetail || snap.AuthError == "" {
			t.Errorf("snapshot = %+v", snap)
		}
		if len(f.users.fetched) != 0 {
			t.Errorf("fetched without a session: %v", f.users.fetched)
		}
	})
}
