package controller

import (
	"reflect"
	"testing"

	"sikseb/internal/catalog"
)

func TestReduceNavigation(t *testing.T) {
	list := State{Mode: ModeList}

	tests := []struct {
		name  string
		from  State
		event Event
		want  State
	}{
		{
			name:  "view opens detail with baseline",
			from:  list,
			event: View{ID: "r1", Baseline: []catalog.PermissionCode{catalog.ManageSalary, catalog.ManageSalary}},
			want:  State{Mode: ModeDetail, SelectedID: "r1", Draft: []catalog.PermissionCode{catalog.ManageSalary}},
		},
		{
			name:  "edit",
			from:  list,
			event: Edit{ID: "r2"},
			want:  State{Mode: ModeEdit, SelectedID: "r2"},
		},
		{
			name:  "create",
			from:  State{Mode: ModeList, Error: "old"},
			event: CreateNew{},
			want:  State{Mode: ModeCreate},
		},
		{
			name:  "back from detail clears selection and draft",
			from:  State{Mode: ModeDetail, SelectedID: "r1", Draft: []catalog.PermissionCode{catalog.ViewSalary}, Dirty: true},
			event: Back{},
			want:  State{Mode: ModeList},
		},
		{
			name:  "back from edit",
			from:  State{Mode: ModeEdit, SelectedID: "r1", Error: "x"},
			event: Back{},
			want:  State{Mode: ModeList},
		},
		{
			name:  "view outside list is ignored",
			from:  State{Mode: ModeEdit, SelectedID: "r1"},
			event: View{ID: "r2"},
			want:  State{Mode: ModeEdit, SelectedID: "r1"},
		},
		{
			name:  "create outside list is ignored",
			from:  State{Mode: ModeDetail, SelectedID: "r1"},
			event: CreateNew{},
			want:  State{Mode: ModeDetail, SelectedID: "r1"},
		},
		{
			name:  "back in list is a no-op",
			from:  State{Mode: ModeList, Error: "kept"},
			event: Back{},
			want:  State{Mode: ModeList, Error: "kept"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(tt.from, tt.event)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReduceDetailDraft(t *testing.T) {
	s := Reduce(State{Mode: ModeList}, View{ID: "r2", Baseline: []catalog.PermissionCode{catalog.ManageSalary}})
	if s.Dirty {
		t.Fatal("fresh detail must not be dirty")
	}

	s = Reduce(s, TogglePermission{Code: catalog.ViewSalary})
	s = Reduce(s, TogglePermission{Code: catalog.ManageSalary})
	if !s.Dirty {
		t.Fatal("toggle must set dirty")
	}
	if !reflect.DeepEqual(s.Draft, []catalog.PermissionCode{catalog.ViewSalary}) {
		t.Fatalf("draft = %v", s.Draft)
	}

	leave, _ := catalog.GroupByName("Leave Management")
	s = Reduce(s, ToggleGroup{Group: leave.Permissions})
	want := []catalog.PermissionCode{catalog.ViewSalary, catalog.ManageLeave, catalog.RequestLeave}
	if !reflect.DeepEqual(s.Draft, want) {
		t.Fatalf("draft after group = %v, want %v", s.Draft, want)
	}

	failed := Reduce(s, PermissionsFailed{RoleID: "r2", Err: "boom"})
	if !failed.Dirty || failed.Error != "boom" {
		t.Fatalf("failure must keep dirty and record error: %+v", failed)
	}
	if !reflect.DeepEqual(failed.Draft, want) {
		t.Fatal("failure must keep the draft")
	}

	saved := Reduce(failed, PermissionsSaved{RoleID: "r2", Permissions: []catalog.PermissionCode{catalog.ViewSalary, catalog.RequestLeave}})
	if saved.Dirty || saved.Error != "" {
		t.Fatalf("save must clear dirty and error: %+v", saved)
	}
	if !reflect.DeepEqual(saved.Draft, []catalog.PermissionCode{catalog.ViewSalary, catalog.RequestLeave}) {
		t.Fatalf("draft must follow the stored set, got %v", saved.Draft)
	}
}

func TestReducePermissionResultsForAnotherRoleIgnored(t *testing.T) {
	s := Reduce(State{Mode: ModeList}, View{ID: "r3", Baseline: []catalog.PermissionCode{catalog.RecordAttendance}})
	s = Reduce(s, TogglePermission{Code: catalog.PrintReports})

	tests := []struct {
		name  string
		event Event
	}{
		{"saved", PermissionsSaved{RoleID: "r2", Permissions: []catalog.PermissionCode{catalog.ManageSalary}}},
		{"failed", PermissionsFailed{RoleID: "r2", Err: "boom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reduce(s, tt.event); !reflect.DeepEqual(got, s) {
				t.Errorf("got %+v, want %+v", got, s)
			}
		})
	}
}

func TestReduceToggleOutsideDetailIgnored(t *testing.T) {
	s := State{Mode: ModeEdit, SelectedID: "r1"}
	if got := Reduce(s, TogglePermission{Code: catalog.ViewSalary}); !reflect.DeepEqual(got, s) {
		t.Errorf("got %+v", got)
	}
}

func TestReduceDoesNotAliasDraft(t *testing.T) {
	baseline := []catalog.PermissionCode{catalog.ManageSalary}
	s := Reduce(State{Mode: ModeList}, View{ID: "r1", Baseline: baseline})
	before := append([]catalog.PermissionCode(nil), s.Draft...)

	_ = Reduce(s, TogglePermission{Code: catalog.ViewSalary})
	if !reflect.DeepEqual(s.Draft, before) {
		t.Fatalf("Reduce mutated the previous state's draft: %v", s.Draft)
	}
	baseline[0] = catalog.PrintReports
	if s.Draft[0] != catalog.ManageSalary {
		t.Fatal("draft aliases the baseline")
	}
}

func TestReduceForm(t *testing.T) {
	s := Reduce(State{Mode: ModeList}, CreateNew{})

	s = Reduce(s, FormFailed{Err: "Nama role minimal 3 karakter"})
	if s.Mode != ModeCreate || s.Error != "Nama role minimal 3 karakter" {
		t.Fatalf("failure must stay in create with error: %+v", s)
	}

	s = Reduce(s, FormSaved{})
	if !reflect.DeepEqual(s, State{Mode: ModeList}) {
		t.Fatalf("save must return to a clean list: %+v", s)
	}

	if got := Reduce(State{Mode: ModeDetail}, FormSaved{}); got.Mode != ModeDetail {
		t.Error("FormSaved outside a form is ignored")
	}
}

func TestReduceDeleteModal(t *testing.T) {
	open := Reduce(State{Mode: ModeList, Error: "stale"}, RequestDelete{ID: "r3", Name: "Finance"})
	wantOpen := State{Mode: ModeList, SelectedID: "r3", Modal: Modal{Open: true, RoleID: "r3", RoleName: "Finance"}}
	if !reflect.DeepEqual(open, wantOpen) {
		t.Fatalf("open = %+v", open)
	}

	t.Run("second request while open is ignored", func(t *testing.T) {
		if got := Reduce(open, RequestDelete{ID: "r4", Name: "Other"}); !reflect.DeepEqual(got, open) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("request outside list is ignored", func(t *testing.T) {
		s := State{Mode: ModeDetail, SelectedID: "r1"}
		if got := Reduce(s, RequestDelete{ID: "r1"}); !reflect.DeepEqual(got, s) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("cancel closes", func(t *testing.T) {
		got := Reduce(open, CancelDelete{})
		if got.Modal.Open {
			t.Error("modal still open")
		}
	})

	t.Run("success closes and clears selection", func(t *testing.T) {
		got := Reduce(open, DeleteSucceeded{})
		if !reflect.DeepEqual(got, State{Mode: ModeList}) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("failure keeps the modal open by default", func(t *testing.T) {
		got := Reduce(open, DeleteFailed{Err: "Terjadi kesalahan pada server (500)", Policy: DeleteKeepOpenOnFailure})
		if !got.Modal.Open || got.SelectedID != "r3" {
			t.Errorf("modal closed on failure: %+v", got)
		}
		if got.Error == "" {
			t.Error("failure must surface an error")
		}
	})

	t.Run("optimistic failure closes but still reports", func(t *testing.T) {
		got := Reduce(open, DeleteFailed{Err: "Terjadi kesalahan pada server (500)", Policy: DeleteCloseOptimistic})
		if got.Modal.Open || got.SelectedID != "" {
			t.Errorf("modal must close: %+v", got)
		}
		if got.Error == "" {
			t.Error("failure must surface an error")
		}
	})
}

func TestParseDeletePolicy(t *testing.T) {
	if ParseDeletePolicy("optimistic") != DeleteCloseOptimistic {
		t.Error("optimistic not parsed")
	}
	for _, s := range []string{"", "keep-open", "whatever"} {
		if ParseDeletePolicy(s) != DeleteKeepOpenOnFailure {
			t.Errorf("%q should keep the modal open", s)
		}
	}
}
