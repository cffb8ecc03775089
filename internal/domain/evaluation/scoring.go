package evaluation

import "math"

// Thresholds on the final average (1-5 scale) that route an evaluation
// into the bonus workflow.
const (
	bonusQualifyAverage   = 4.0
	bonusConditionAverage = 3.0
	raiseHighAverage      = 4.5
)

// Summary carries the arithmetic derived from a criteria set.
type Summary struct {
	TotalPoints  int
	FinalAverage float64
	Percentage   float64
}

// Score totals a criteria set: TotalPoints is the plain sum,
// FinalAverage the mean rounded to 2 decimals, Percentage the average
// expressed against the 5-point ceiling.
func Score(criteria []Criterion) Summary {
	if len(criteria) == 0 {
		return Summary{}
	}
	total := 0
	for _, c := range criteria {
		total += c.Score
	}
	avg := round2(float64(total) / float64(len(criteria)))
	return Summary{
		TotalPoints:  total,
		FinalAverage: avg,
		Percentage:   round2(avg / 5 * 100),
	}
}

// BonusCondition derives the initial authorization state from the final
// average: qualifying scores go to PendingAuth for the approver, middling
// ones are Conditioned, the rest are NotApproved outright.
func BonusCondition(finalAverage float64) string {
	switch {
	case finalAverage >= bonusQualifyAverage:
		return BonusPendingAuth
	case finalAverage >= bonusConditionAverage:
		return BonusConditioned
	default:
		return BonusNotApproved
	}
}

// SalaryIncrease recommends a raise bracket for high averages; empty
// string means no recommendation.
func SalaryIncrease(finalAverage float64) string {
	switch {
	case finalAverage >= raiseHighAverage:
		return "5%"
	case finalAverage >= bonusQualifyAverage:
		return "3%"
	default:
		return ""
	}
}

// Finalize fills the derived fields of an evaluation from its criteria.
func Finalize(e *FullEvaluation) {
	summary := Score(e.Criteria)
	e.TotalPoints = summary.TotalPoints
	e.FinalAverage = summary.FinalAverage
	if e.BonusCondition == "" {
		e.BonusCondition = BonusCondition(summary.FinalAverage)
	}
	if e.SalaryIncrease == "" {
		e.SalaryIncrease = SalaryIncrease(summary.FinalAverage)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
