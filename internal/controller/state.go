// Package controller drives the role console: a pure reducer over view
// states plus an orchestrator that turns user actions into backend calls.
package controller

import (
	"sikseb/internal/catalog"
)

// Mode is the active view. Exactly one is active at a time.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeCreate
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeDetail:
		return "detail"
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "list"
	}
}

// DeletePolicy decides what a failed delete does to the confirmation modal.
type DeletePolicy int

const (
	// DeleteKeepOpenOnFailure closes the modal only after the delete succeeded.
	DeleteKeepOpenOnFailure DeletePolicy = iota
	// DeleteCloseOptimistic closes the modal and clears the selection whatever the outcome.
	DeleteCloseOptimistic
)

// ParseDeletePolicy maps the config value; anything unknown keeps the modal open.
func ParseDeletePolicy(s string) DeletePolicy {
	if s == "optimistic" {
		return DeleteCloseOptimistic
	}
	return DeleteKeepOpenOnFailure
}

// Modal is the delete-confirmation modal, orthogonal to Mode.
type Modal struct {
	Open     bool
	RoleID   string
	RoleName string
}

// State is transient UI state. SelectedID is a reference into the role
// collection, never a copy of a role.
type State struct {
	Mode       Mode
	SelectedID string
	Modal      Modal

	// detail only
	Draft []catalog.PermissionCode
	Dirty bool

	Error string
}

// Event is an input to Reduce.
type Event interface {
	event()
}

type (
	// View opens the detail of a role with its permission baseline.
	View struct {
		ID       string
		Baseline []catalog.PermissionCode
	}
	Edit      struct{ ID string }
	CreateNew struct{}
	Back      struct{}

	TogglePermission struct{ Code catalog.PermissionCode }
	ToggleGroup      struct{ Group []catalog.PermissionCode }

	// PermissionsSaved carries the permission set the backend stored for RoleID.
	PermissionsSaved struct {
		RoleID      string
		Permissions []catalog.PermissionCode
	}
	PermissionsFailed struct {
		RoleID string
		Err    string
	}

	FormSaved  struct{}
	FormFailed struct{ Err string }

	RequestDelete struct {
		ID   string
		Name string
	}

	CancelDelete    struct{}
	DeleteSucceeded struct{}

	DeleteFailed struct {
		Err    string
		Policy DeletePolicy
	}

	// Failed records an error without changing the view.
	Failed     struct{ Err string }
	ClearError struct{}
)

func (View) event()              {}
func (Edit) event()              {}
func (CreateNew) event()         {}
func (Back) event()              {}
func (TogglePermission) event()  {}
func (ToggleGroup) event()       {}
func (PermissionsSaved) event()  {}
func (PermissionsFailed) event() {}
func (FormSaved) event()         {}
func (FormFailed) event()        {}
func (RequestDelete) event()     {}
func (CancelDelete) event()      {}
func (DeleteSucceeded) event()   {}
func (DeleteFailed) event()      {}
func (Failed) event()            {}
func (ClearError) event()        {}

// Reduce returns the state after e. Events that are not valid in the current
// mode leave the state untouched. Reduce never mutates s.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case View:
		if s.Mode != ModeList {
			return s
		}
		return State{
			Mode:       ModeDetail,
			SelectedID: ev.ID,
			Draft:      catalog.Normalize(ev.Baseline),
		}

	case Edit:
		if s.Mode != ModeList {
			return s
		}
		return State{Mode: ModeEdit, SelectedID: ev.ID}

	case CreateNew:
		if s.Mode != ModeList {
			return s
		}
		return State{Mode: ModeCreate}

	case Back:
		if s.Mode == ModeList {
			return s
		}
		return State{Mode: ModeList}

	case TogglePermission:
		if s.Mode != ModeDetail {
			return s
		}
		s.Draft = catalog.Toggle(s.Draft, ev.Code)
		s.Dirty = true
		return s

	case ToggleGroup:
		if s.Mode != ModeDetail {
			return s
		}
		s.Draft = catalog.ToggleGroup(s.Draft, ev.Group)
		s.Dirty = true
		return s

	case PermissionsSaved:
		if s.Mode != ModeDetail || s.SelectedID != ev.RoleID {
			return s
		}
		s.Draft = catalog.Normalize(ev.Permissions)
		s.Dirty = false
		s.Error = ""
		return s

	case PermissionsFailed:
		if s.Mode != ModeDetail || s.SelectedID != ev.RoleID {
			return s
		}
		s.Error = ev.Err
		return s

	case FormSaved:
		if s.Mode != ModeCreate && s.Mode != ModeEdit {
			return s
		}
		return State{Mode: ModeList}

	case FormFailed:
		if s.Mode != ModeCreate && s.Mode != ModeEdit {
			return s
		}
		s.Error = ev.Err
		return s

	case RequestDelete:
		if s.Mode != ModeList || s.Modal.Open {
			return s
		}
		s.SelectedID = ev.ID
		s.Modal = Modal{Open: true, RoleID: ev.ID, RoleName: ev.Name}
		s.Error = ""
		return s

	case CancelDelete:
		if !s.Modal.Open {
			return s
		}
		s.Modal = Modal{}
		return s

	case DeleteSucceeded:
		if !s.Modal.Open {
			return s
		}
		s.Modal = Modal{}
		s.SelectedID = ""
		s.Error = ""
		return s

	case DeleteFailed:
		if !s.Modal.Open {
			return s
		}
		s.Error = ev.Err
		if ev.Policy == DeleteCloseOptimistic {
			s.Modal = Modal{}
			s.SelectedID = ""
		}
		return s

	case Failed:
		s.Error = ev.Err
		return s

	case ClearError:
		s.Error = ""
		return s
	}
	return s
}
