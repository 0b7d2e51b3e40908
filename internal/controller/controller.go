package controller

import (
	"context"
	"strings"
	"sync"

	"sikseb/internal/catalog"
	"sikseb/internal/models"
	"sikseb/internal/session"
	apperrors "sikseb/pkg/errors"
	"sikseb/pkg/logger"

	"github.com/sirupsen/logrus"
)

// SessionGate is the part of session.Store the console needs.
type SessionGate interface {
	IsAuthenticated(ctx context.Context) bool
	AutoLogin(ctx context.Context) (*session.Session, error)
}

// RoleRepository is the part of services.RoleService the console needs.
type RoleRepository interface {
	List(ctx context.Context) ([]models.Role, error)
	Create(ctx context.Context, data models.CreateRoleData) (models.Role, error)
	Update(ctx context.Context, id string, data models.UpdateRoleData) (models.Role, error)
	Delete(ctx context.Context, id string) error
	UpdatePermissions(ctx context.Context, id string, perms []catalog.PermissionCode) (models.Role, error)
	Roles() []models.Role
	Find(id string) (models.Role, bool)
}

// RoleUsersLookup is the part of services.RoleUsersService the console needs.
type RoleUsersLookup interface {
	FetchUsers(ctx context.Context, roleID string) ([]models.RoleUser, error)
	Users() (string, []models.RoleUser)
	Reset()
}

type Options struct {
	DeletePolicy DeletePolicy
	// LegacyNameBaseline seeds the detail draft from the seeder's table keyed
	// by role name instead of the role's own permissions.
	LegacyNameBaseline bool
	Logger             logrus.FieldLogger
}

// FormData is what the create/edit form submits.
type FormData struct {
	Name        string
	Status      string
	Permissions []catalog.PermissionCode
}

// Controller serialises state changes; backend calls run without the lock
// held, and their results are dropped once the console is unmounted.
type Controller struct {
	session SessionGate
	roles   RoleRepository
	users   RoleUsersLookup
	opts    Options
	log     logrus.FieldLogger

	mu         sync.Mutex
	state      State
	mounted    bool
	generation uint64
	visit      uint64 // bumped whenever the mode or the selection changes
	authErr    string
}

// ticket identifies the mount and the view a backend call was started from.
type ticket struct {
	gen   uint64
	visit uint64
}

func New(sess SessionGate, roles RoleRepository, users RoleUsersLookup, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger().WithField("component", "console")
	}
	return &Controller{
		session: sess,
		roles:   roles,
		users:   users,
		opts:    opts,
		log:     log,
	}
}

// ========== lifecycle ==========

// Mount establishes a session (auto-login when none is stored) and loads roles.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	c.mounted = true
	c.generation++
	gen := c.generation
	c.state = State{Mode: ModeList}
	c.mu.Unlock()

	if err := c.ensureSession(ctx); err != nil {
		return err
	}
	return c.refresh(ctx, gen)
}

// Unmount tears the console down; responses still in flight become no-ops.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounted = false
	c.generation++
}

// RetryAuth re-invokes auto-login after an authentication failure and reloads the list.
func (c *Controller) RetryAuth(ctx context.Context) error {
	gen, ok := c.current()
	if !ok {
		return nil
	}
	if _, err := c.session.AutoLogin(ctx); err != nil {
		authErr := apperrors.Authentication(apperrors.Message(err, "Auto login gagal"), err)
		c.setAuthErr(gen, authErr.Message)
		return authErr
	}
	c.setAuthErr(gen, "")
	return c.refresh(ctx, gen)
}

// Refresh reloads the role list.
func (c *Controller) Refresh(ctx context.Context) error {
	gen, ok := c.current()
	if !ok {
		return nil
	}
	return c.refresh(ctx, gen)
}

func (c *Controller) refresh(ctx context.Context, gen uint64) error {
	if _, err := c.roles.List(ctx); err != nil {
		c.dispatchIf(gen, Failed{Err: err.Error()})
		return err
	}
	c.dispatchIf(gen, ClearError{})
	return nil
}

// ========== navigation ==========

// View opens the detail of a role and fetches its users.
func (c *Controller) View(ctx context.Context, id string) error {
	role, ok := c.roles.Find(id)
	if !ok {
		return c.notFound(id)
	}

	baseline := role.Permissions
	if c.opts.LegacyNameBaseline {
		baseline = catalog.SeedPermissions(role.Name)
	}

	gen, ok := c.current()
	if !ok {
		return nil
	}
	if !c.dispatchIf(gen, View{ID: id, Baseline: baseline}) {
		return nil
	}

	c.users.Reset()
	if err := c.ensureSession(ctx); err != nil {
		c.log.WithError(err).WithField("role_id", id).Warn("role users skipped, no session")
		return err
	}
	if _, err := c.users.FetchUsers(ctx, id); err != nil {
		c.log.WithError(err).WithField("role_id", id).Warn("role users unavailable")
		return err
	}
	return nil
}

func (c *Controller) Edit(id string) error {
	if _, ok := c.roles.Find(id); !ok {
		return c.notFound(id)
	}
	c.dispatch(Edit{ID: id})
	return nil
}

func (c *Controller) CreateNew() {
	c.dispatch(CreateNew{})
}

// Back returns to the list and clears the selection.
func (c *Controller) Back() {
	c.dispatch(Back{})
	c.users.Reset()
}

// ========== detail ==========

func (c *Controller) TogglePermission(code catalog.PermissionCode) error {
	if err := c.editableDetail(); err != nil {
		return err
	}
	if !catalog.IsKnown(code) {
		return apperrors.Validation("permissions", "Permission tidak dikenal: "+string(code))
	}
	c.dispatch(TogglePermission{Code: code})
	return nil
}

func (c *Controller) ToggleGroup(name string) error {
	if err := c.editableDetail(); err != nil {
		return err
	}
	group, ok := catalog.GroupByName(name)
	if !ok {
		return apperrors.Validation("permissions", "Grup permission tidak dikenal: "+name)
	}
	c.dispatch(ToggleGroup{Group: group.Permissions})
	return nil
}

// SavePermissions stores the detail draft. The dirty flag is cleared only on success.
func (c *Controller) SavePermissions(ctx context.Context) error {
	st, t := c.begin()

	if st.Mode != ModeDetail {
		return apperrors.Validation("", "Tidak ada role yang sedang dibuka")
	}
	if role, ok := c.roles.Find(st.SelectedID); ok && role.IsSystemRole {
		return apperrors.Validation("permissions", "System Role - Tidak dapat diubah")
	}

	if err := c.ensureSession(ctx); err != nil {
		c.dispatchInView(t, PermissionsFailed{RoleID: st.SelectedID, Err: err.Error()})
		return err
	}

	role, err := c.roles.UpdatePermissions(ctx, st.SelectedID, st.Draft)
	if err != nil {
		c.dispatchInView(t, PermissionsFailed{RoleID: st.SelectedID, Err: err.Error()})
		return err
	}
	c.dispatchInView(t, PermissionsSaved{RoleID: st.SelectedID, Permissions: role.Permissions})
	return nil
}

// ========== create / edit ==========

// SaveForm creates or updates depending on the active mode and returns to
// the list on success; on failure the form stays open with the error.
func (c *Controller) SaveForm(ctx context.Context, data FormData) error {
	st, t := c.begin()

	if st.Mode != ModeCreate && st.Mode != ModeEdit {
		return apperrors.Validation("", "Form role tidak sedang dibuka")
	}

	if err := c.ensureSession(ctx); err != nil {
		c.dispatchInView(t, FormFailed{Err: err.Error()})
		return err
	}

	var err error
	if st.Mode == ModeCreate {
		_, err = c.roles.Create(ctx, models.CreateRoleData{
			Name:        data.Name,
			Status:      data.Status,
			Permissions: data.Permissions,
		})
	} else {
		name, status := data.Name, data.Status
		update := models.UpdateRoleData{Name: &name, Status: &status, Permissions: nonNil(data.Permissions)}
		// a system role keeps its permission set; only name and status go out
		if role, ok := c.roles.Find(st.SelectedID); ok && role.IsSystemRole {
			if !catalog.SameSet(role.Permissions, data.Permissions) {
				err := apperrors.Validation("permissions", "System Role - Tidak dapat diubah")
				c.dispatchInView(t, FormFailed{Err: err.Message})
				return err
			}
			update.Permissions = nil
		}
		_, err = c.roles.Update(ctx, st.SelectedID, update)
	}
	if err != nil {
		c.dispatchInView(t, FormFailed{Err: err.Error()})
		return err
	}
	c.dispatchInView(t, FormSaved{})
	return nil
}

// ========== delete ==========

// RequestDelete opens the confirmation modal. System roles cannot be deleted from the console.
func (c *Controller) RequestDelete(id string) error {
	role, ok := c.roles.Find(id)
	if !ok {
		return c.notFound(id)
	}
	if role.IsSystemRole {
		return apperrors.Validation("", "System Role - Tidak dapat dihapus")
	}
	c.dispatch(RequestDelete{ID: role.ID, Name: role.Name})
	return nil
}

func (c *Controller) CancelDelete() {
	c.dispatch(CancelDelete{})
}

// ConfirmDelete deletes the role named in the modal. What happens to the modal
// on failure follows Options.DeletePolicy; the error is returned either way.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	modal := c.state.Modal
	gen := c.generation
	c.mu.Unlock()

	if !modal.Open {
		return nil
	}

	fail := func(err error) error {
		c.dispatchIf(gen, DeleteFailed{Err: err.Error(), Policy: c.opts.DeletePolicy})
		return err
	}

	if err := c.ensureSession(ctx); err != nil {
		return fail(err)
	}
	if err := c.roles.Delete(ctx, modal.RoleID); err != nil {
		return fail(err)
	}
	c.dispatchIf(gen, DeleteSucceeded{})
	return nil
}

// ========== snapshot ==========

// Snapshot is everything a view needs to render.
type Snapshot struct {
	State     State
	Roles     []models.Role
	Selected  *models.Role
	Users     []models.RoleUser
	AuthError string
	Mounted   bool
}

// Snapshot re-resolves the selection by id against the current collection.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	st := c.state
	st.Draft = append([]catalog.PermissionCode(nil), st.Draft...)
	snap := Snapshot{State: st, AuthError: c.authErr, Mounted: c.mounted}
	c.mu.Unlock()

	snap.Roles = c.roles.Roles()
	if st.SelectedID != "" {
		for i := range snap.Roles {
			if snap.Roles[i].ID == st.SelectedID {
				r := snap.Roles[i]
				snap.Selected = &r
				break
			}
		}
	}
	if roleID, users := c.users.Users(); st.Mode == ModeDetail && roleID == st.SelectedID {
		snap.Users = users
	}
	return snap
}

// ========== internals ==========

// ensureSession auto-logs in once when no token is stored.
func (c *Controller) ensureSession(ctx context.Context) error {
	if c.session.IsAuthenticated(ctx) {
		return nil
	}
	c.log.Debug("no session, attempting auto login")

	gen, _ := c.current()
	if _, err := c.session.AutoLogin(ctx); err != nil {
		authErr := apperrors.Authentication("Autentikasi diperlukan. Silakan coba lagi. ("+apperrors.Message(err, "auto login gagal")+")", err)
		c.setAuthErr(gen, authErr.Message)
		return authErr
	}
	c.setAuthErr(gen, "")
	return nil
}

func (c *Controller) editableDetail() error {
	c.mu.Lock()
	st := c.state
	c.mu.Unlock()
	if st.Mode != ModeDetail {
		return apperrors.Validation("", "Tidak ada role yang sedang dibuka")
	}
	if role, ok := c.roles.Find(st.SelectedID); ok && role.IsSystemRole {
		return apperrors.Validation("permissions", "System Role - Tidak dapat diubah")
	}
	return nil
}

func (c *Controller) notFound(id string) error {
	err := apperrors.Validation("", "Role tidak ditemukan: "+strings.TrimSpace(id))
	c.dispatch(Failed{Err: err.Message})
	return err
}

func (c *Controller) current() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, c.mounted
}

// begin captures the state a backend call starts from.
func (c *Controller) begin() (State, ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, ticket{gen: c.generation, visit: c.visit}
}

func (c *Controller) dispatch(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return
	}
	c.apply(e)
}

// dispatchIf applies e only if the console is still mounted in generation gen.
// It reports whether e moved the console to another view.
func (c *Controller) dispatchIf(gen uint64, e Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted || c.generation != gen {
		c.log.WithField("event", e).Debug("dropping late response")
		return false
	}
	return c.apply(e)
}

// dispatchInView applies e only if the user is still on the view the call started from.
func (c *Controller) dispatchInView(t ticket, e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted || c.generation != t.gen || c.visit != t.visit {
		c.log.WithField("event", e).Debug("dropping response for a view that was left")
		return
	}
	c.apply(e)
}

// caller holds c.mu
func (c *Controller) apply(e Event) bool {
	prev := c.state
	c.state = Reduce(prev, e)
	if c.state.Mode != prev.Mode || c.state.SelectedID != prev.SelectedID {
		c.visit++
		return true
	}
	return false
}

func (c *Controller) setAuthErr(gen uint64, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted && c.generation == gen {
		c.authErr = msg
	}
}

func nonNil(p []catalog.PermissionCode) []catalog.PermissionCode {
	if p == nil {
		return []catalog.PermissionCode{}
	}
	return p
}
