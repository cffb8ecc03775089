package employee

const (
	DepartmentProduccion     = "produccion"
	DepartmentMantenimiento  = "mantenimiento"
	DepartmentCalidad        = "calidad"
	DepartmentLogistica      = "logistica"
	DepartmentAdministracion = "administracion"
)

var Departments = []string{
	DepartmentProduccion,
	DepartmentMantenimiento,
	DepartmentCalidad,
	DepartmentLogistica,
	DepartmentAdministracion,
}

// KPI is one weighted indicator on an employee's scorecard. Weights across
// an employee's KPI set are expected to sum to 100 but are not enforced.
type KPI struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// Notification is an employee-scoped inbox message. The inbox is ordered
// newest first; appending prepends.
type Notification struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
	Date    string `json:"date"`
}

type Employee struct {
	ID             string         `json:"id"`
	IDNumber       string         `json:"idNumber"`
	Name           string         `json:"name"`
	Role           string         `json:"role"`
	Department     string         `json:"department"`
	ManagerName    string         `json:"managerName"`
	KPIs           []KPI          `json:"kpis"`
	LastEvaluation string         `json:"lastEvaluation"`
	Notifications  []Notification `json:"notifications"`
}

func ValidDepartment(tag string) bool {
	for _, d := range Departments {
		if d == tag {
			return true
		}
	}
	return false
}

// PushNotification prepends an unread message to the employee inbox.
func (e *Employee) PushNotification(n Notification) {
	e.Notifications = append([]Notification{n}, e.Notifications...)
}

// WeightedScore applies the KPI weights to their scores. Scores are on the
// 0-100 scale, weights are percentages.
func (e Employee) WeightedScore() float64 {
	var total float64
	for _, k := range e.KPIs {
		total += k.Score * k.Weight / 100
	}
	return total
}
