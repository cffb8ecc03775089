package cloud

import (
	"encoding/json"

	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/domain/evaluation"
	"vulcanhr/internal/domain/user"
)

// The cloud tables use snake_case columns while the in-memory model uses
// the app's JSON names. These records are the translation layer at that
// boundary; conversion must be exact in both directions. Optional fields
// travel as SQL NULL, never as empty-string look-alikes.

type employeeRecord struct {
	ID             string
	IDNumber       string
	Name           string
	Role           string
	Department     string
	ManagerName    *string
	LastEvaluation *string
	KPIs           []byte
	Notifications  []byte
}

func newEmployeeRecord(e employee.Employee) (employeeRecord, error) {
	kpis, err := marshalList(e.KPIs)
	if err != nil {
		return employeeRecord{}, err
	}
	notifications, err := marshalList(e.Notifications)
	if err != nil {
		return employeeRecord{}, err
	}
	return employeeRecord{
		ID:             e.ID,
		IDNumber:       e.IDNumber,
		Name:           e.Name,
		Role:           e.Role,
		Department:     e.Department,
		ManagerName:    nullIfEmpty(e.ManagerName),
		LastEvaluation: nullIfEmpty(e.LastEvaluation),
		KPIs:           kpis,
		Notifications:  notifications,
	}, nil
}

func (r employeeRecord) model() (employee.Employee, error) {
	e := employee.Employee{
		ID:             r.ID,
		IDNumber:       r.IDNumber,
		Name:           r.Name,
		Role:           r.Role,
		Department:     r.Department,
		ManagerName:    stringValue(r.ManagerName),
		LastEvaluation: stringValue(r.LastEvaluation),
	}
	if err := unmarshalList(r.KPIs, &e.KPIs); err != nil {
		return employee.Employee{}, err
	}
	if err := unmarshalList(r.Notifications, &e.Notifications); err != nil {
		return employee.Employee{}, err
	}
	return e, nil
}

type evaluationRecord struct {
	ID             string
	EmployeeID     string
	Month          string
	Year           string
	Criteria       []byte
	Observations   *string
	TotalPoints    int
	FinalAverage   float64
	BonusCondition string
	AuthorizedBy   *string
	SalaryIncrease *string
}

func newEvaluationRecord(e evaluation.FullEvaluation) (evaluationRecord, error) {
	criteria, err := marshalList(e.Criteria)
	if err != nil {
		return evaluationRecord{}, err
	}
	return evaluationRecord{
		ID:             e.ID,
		EmployeeID:     e.EmployeeID,
		Month:          e.Month,
		Year:           e.Year,
		Criteria:       criteria,
		Observations:   nullIfEmpty(e.Observations),
		TotalPoints:    e.TotalPoints,
		FinalAverage:   e.FinalAverage,
		BonusCondition: e.BonusCondition,
		AuthorizedBy:   nullIfEmpty(e.AuthorizedBy),
		SalaryIncrease: nullIfEmpty(e.SalaryIncrease),
	}, nil
}

func (r evaluationRecord) model() (evaluation.FullEvaluation, error) {
	e := evaluation.FullEvaluation{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		Month:          r.Month,
		Year:           r.Year,
		Observations:   stringValue(r.Observations),
		TotalPoints:    r.TotalPoints,
		FinalAverage:   r.FinalAverage,
		BonusCondition: r.BonusCondition,
		AuthorizedBy:   stringValue(r.AuthorizedBy),
		SalaryIncrease: stringValue(r.SalaryIncrease),
	}
	if err := unmarshalList(r.Criteria, &e.Criteria); err != nil {
		return evaluation.FullEvaluation{}, err
	}
	return e, nil
}

type userRecord struct {
	Username string
	Role     string
	Password *string
}

func newUserRecord(u user.User) userRecord {
	return userRecord{
		Username: u.Username,
		Role:     u.Role,
		Password: nullIfEmpty(u.Password),
	}
}

func (r userRecord) model() user.User {
	return user.User{
		Username: r.Username,
		Role:     r.Role,
		Password: stringValue(r.Password),
	}
}

func marshalList[T any](list []T) ([]byte, error) {
	if list == nil {
		list = []T{}
	}
	return json.Marshal(list)
}

func unmarshalList[T any](payload []byte, dst *[]T) error {
	if len(payload) == 0 {
		*dst = []T{}
		return nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return err
	}
	if *dst == nil {
		*dst = []T{}
	}
	return nil
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
