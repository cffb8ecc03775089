package evaluation

import (
	"context"
	"testing"

	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/domain/user"
)

type fakeStore struct {
	employees   []employee.Employee
	evaluations []FullEvaluation
}

func (f *fakeStore) Employees() []employee.Employee  { return f.employees }
func (f *fakeStore) Evaluations() []FullEvaluation   { return f.evaluations }
func (f *fakeStore) SaveEmployees(_ context.Context, list []employee.Employee) error {
	f.employees = list
	return nil
}
func (f *fakeStore) SaveEvaluations(_ context.Context, list []FullEvaluation) error {
	f.evaluations = list
	return nil
}

func pendingFixture() *fakeStore {
	return &fakeStore{
		employees: []employee.Employee{
			{ID: "e1", Name: "Pedro", Department: "produccion", ManagerName: "m1"},
			{ID: "e2", Name: "Luisa", Notifications: []employee.Notification{{ID: "keep"}}},
		},
		evaluations: []FullEvaluation{
			{ID: "ev1", EmployeeID: "e1", Month: "enero", Year: "2024", BonusCondition: BonusPendingAuth},
		},
	}
}

func TestResolveApprovesAndNotifies(t *testing.T) {
	store := pendingFixture()
	w := NewWorkflow(store)
	approver := user.User{Username: "gerente1", Role: user.RoleGerente}

	if err := w.Resolve(context.Background(), "ev1", approver, BonusApproved); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	got := store.evaluations[0]
	if got.BonusCondition != BonusApproved {
		t.Fatalf("expected Approved, got %s", got.BonusCondition)
	}
	if got.AuthorizedBy != "gerente1" {
		t.Fatalf("expected authorizedBy gerente1, got %q", got.AuthorizedBy)
	}

	inbox := store.employees[0].Notifications
	if len(inbox) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(inbox))
	}
	if inbox[0].Type != NotificationTypeBonus || inbox[0].Read {
		t.Fatalf("expected unread bonus notification, got %+v", inbox[0])
	}

	other := store.employees[1].Notifications
	if len(other) != 1 || other[0].ID != "keep" {
		t.Fatal("other employee's inbox should be untouched")
	}
}

func TestResolveRejectsUnauthorizedRole(t *testing.T) {
	store := pendingFixture()
	w := NewWorkflow(store)

	for _, role := range []string{user.RoleSupervisor, user.RoleRRHH, user.RoleDirector} {
		err := w.Resolve(context.Background(), "ev1", user.User{Username: "x", Role: role}, BonusApproved)
		if err != ErrNotAuthorized {
			t.Fatalf("role %s: expected ErrNotAuthorized, got %v", role, err)
		}
	}
	if store.evaluations[0].BonusCondition != BonusPendingAuth {
		t.Fatal("evaluation must stay pending after rejected attempts")
	}
}

func TestResolveRequiresPendingState(t *testing.T) {
	store := pendingFixture()
	store.evaluations[0].BonusCondition = BonusApproved
	w := NewWorkflow(store)

	err := w.Resolve(context.Background(), "ev1", user.User{Username: "g", Role: user.RoleGerente}, BonusNotApproved)
	if err != ErrNotPending {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

func TestResolveUnknownEvaluation(t *testing.T) {
	w := NewWorkflow(pendingFixture())

	err := w.Resolve(context.Background(), "missing", user.User{Username: "g", Role: user.RoleGerente}, BonusApproved)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveRejectsPendingAsDecision(t *testing.T) {
	w := NewWorkflow(pendingFixture())

	err := w.Resolve(context.Background(), "ev1", user.User{Username: "g", Role: user.RoleGerente}, BonusPendingAuth)
	if err != ErrBadDecision {
		t.Fatalf("expected ErrBadDecision, got %v", err)
	}
}
