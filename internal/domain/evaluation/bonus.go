package evaluation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/domain/user"
)

const NotificationTypeBonus = "bonus"

var (
	ErrNotAuthorized = errors.New("role is not allowed to authorize bonuses")
	ErrNotFound      = errors.New("evaluation not found")
	ErrNotPending    = errors.New("evaluation is not pending authorization")
	ErrBadDecision   = errors.New("invalid bonus decision")
)

type Store interface {
	Employees() []employee.Employee
	Evaluations() []FullEvaluation
	SaveEmployees(ctx context.Context, list []employee.Employee) error
	SaveEvaluations(ctx context.Context, list []FullEvaluation) error
}

// Workflow resolves pending bonus authorizations against the shared
// collections.
type Workflow struct {
	store Store
	now   func() time.Time
}

func NewWorkflow(store Store) *Workflow {
	return &Workflow{store: store, now: time.Now}
}

// Resolve moves a PendingAuth evaluation to the given terminal decision,
// records who authorized it and drops an unread notification into the
// employee's inbox.
func (w *Workflow) Resolve(ctx context.Context, evaluationID string, approver user.User, decision string) error {
	if !user.CanApproveBonus(approver.Role) {
		return ErrNotAuthorized
	}
	switch decision {
	case BonusApproved, BonusNotApproved, BonusConditioned:
	default:
		return ErrBadDecision
	}

	evaluations := w.store.Evaluations()
	target := -1
	for i, e := range evaluations {
		if e.ID == evaluationID {
			target = i
			break
		}
	}
	if target == -1 {
		return ErrNotFound
	}
	if evaluations[target].BonusCondition != BonusPendingAuth {
		return ErrNotPending
	}

	evaluations[target].BonusCondition = decision
	evaluations[target].AuthorizedBy = approver.Username
	if err := w.store.SaveEvaluations(ctx, evaluations); err != nil {
		return err
	}

	employees := w.store.Employees()
	for i := range employees {
		if employees[i].ID != evaluations[target].EmployeeID {
			continue
		}
		employees[i].PushNotification(employee.Notification{
			ID:      uuid.NewString(),
			Type:    NotificationTypeBonus,
			Message: bonusMessage(decision, approver.Username),
			Date:    w.now().Format("2006-01-02"),
		})
		return w.store.SaveEmployees(ctx, employees)
	}
	return nil
}

func bonusMessage(decision, approver string) string {
	switch decision {
	case BonusApproved:
		return "Bono aprobado por " + approver
	case BonusConditioned:
		return "Bono condicionado por " + approver
	default:
		return "Bono no aprobado por " + approver
	}
}
