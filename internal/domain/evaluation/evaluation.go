package evaluation

// Bonus authorization states for a monthly evaluation.
const (
	BonusPendingAuth = "PendingAuth"
	BonusApproved    = "Approved"
	BonusNotApproved = "NotApproved"
	BonusConditioned = "Conditioned"
)

// Criterion is one scored technical item, on a 1-5 scale.
type Criterion struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// FullEvaluation is one monthly evaluation instance, keyed by
// (employeeId, month, year). At most one evaluation per employee per
// period: callers replace any prior matching record before inserting, the
// storage layer does not enforce it.
type FullEvaluation struct {
	ID             string      `json:"id"`
	EmployeeID     string      `json:"employeeId"`
	Month          string      `json:"month"`
	Year           string      `json:"year"`
	Criteria       []Criterion `json:"criteria"`
	Observations   string      `json:"observations"`
	TotalPoints    int         `json:"totalPuntos"`
	FinalAverage   float64     `json:"promedioFinal"`
	BonusCondition string      `json:"condicionBono"`
	AuthorizedBy   string      `json:"authorizedBy,omitempty"`
	SalaryIncrease string      `json:"incrementoSalarial,omitempty"`
}

func ValidBonusCondition(state string) bool {
	switch state {
	case BonusPendingAuth, BonusApproved, BonusNotApproved, BonusConditioned:
		return true
	}
	return false
}

// SamePeriod reports whether two evaluations cover the same employee and
// calendar period.
func (e FullEvaluation) SamePeriod(other FullEvaluation) bool {
	return e.EmployeeID == other.EmployeeID && e.Month == other.Month && e.Year == other.Year
}
